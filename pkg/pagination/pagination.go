package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 100
	// MaxLimit caps how many rows a single page can return.
	MaxLimit = 1000
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points at the first row of the next page. Scope names the table the
// cursor was issued for so it cannot be replayed against another one.
type Cursor struct {
	Scope  string
	Offset int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%d", cursor.Scope, cursor.Offset)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components. An empty
// value yields a nil cursor.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	idx := strings.LastIndex(string(decoded), "|")
	if idx <= 0 {
		return nil, fmt.Errorf("invalid cursor format")
	}
	offset, err := strconv.Atoi(string(decoded[idx+1:]))
	if err != nil || offset < 0 {
		return nil, fmt.Errorf("invalid cursor offset")
	}
	return &Cursor{
		Scope:  string(decoded[:idx]),
		Offset: offset,
	}, nil
}

// Page is a half-open row window [Start, End) with the cursor of the page
// after it, empty on the last page.
type Page struct {
	Start      int
	End        int
	Limit      int
	NextCursor string
}

// Window resolves params against a result of total rows issued under scope.
func Window(scope string, total int, params Params) (Page, error) {
	limit := NormalizeLimit(params.Limit)
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return Page{}, err
	}
	start := 0
	if cursor != nil {
		if cursor.Scope != scope {
			return Page{}, fmt.Errorf("cursor issued for %q", cursor.Scope)
		}
		start = cursor.Offset
	}
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	page := Page{Start: start, End: end, Limit: limit}
	if end < total {
		page.NextCursor = EncodeCursor(Cursor{Scope: scope, Offset: end})
	}
	return page, nil
}
