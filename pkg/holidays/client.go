package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/angelmondragon/olist-etl/pkg/db/models"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
)

const (
	DefaultBaseURL = "https://date.nager.at/api/v3/PublicHolidays"
	DefaultCountry = "BR"

	defaultTimeout              = 10 * time.Second
	responseBodyReadLimit int64 = 1024
)

var yearRe = regexp.MustCompile(`^\d{4}$`)

// Client reads a country's public holiday calendar from a Nager.Date style
// feed: GET {baseURL}/{year}/{country} returning a JSON array.
type Client struct {
	httpClient *http.Client
	baseURL    string
	country    string
	timeout    time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the holiday feed base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithCountry overrides the ISO country code, BR by default.
func WithCountry(country string) Option {
	return func(c *Client) {
		trimmed := strings.ToUpper(strings.TrimSpace(country))
		if trimmed != "" {
			c.country = trimmed
		}
	}
}

// WithTimeout bounds every request of the default HTTP client. It has no
// effect when WithHTTPClient is used.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL: DefaultBaseURL,
		country: DefaultCountry,
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.timeout}
	}

	return client
}

type apiHoliday struct {
	Date        string `json:"date"`
	LocalName   string `json:"localName"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	Fixed       bool   `json:"fixed"`
	Global      bool   `json:"global"`
	LaunchYear  *int   `json:"launchYear"`
}

// Fetch downloads the holiday calendar of year. Any transport failure or
// non-2xx status is a TRANSPORT_ERROR; nothing is retried. Dates are
// truncated to the calendar day and the first holiday of a given day wins.
func (c *Client) Fetch(ctx context.Context, year string) ([]models.Holiday, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "holiday client not configured")
	}
	year = strings.TrimSpace(year)
	if !yearRe.MatchString(year) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("year %q must have 4 digits", year))
	}

	endpoint := c.buildURL(year)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "build holidays request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "execute holidays request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "holidays request failed").
			WithDetails(map[string]any{"url": endpoint, "status": resp.StatusCode})
	}

	var payload []apiHoliday
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSourceLoad, err, "decode holidays response")
	}

	holidays := make([]models.Holiday, 0, len(payload))
	seen := make(map[time.Time]struct{}, len(payload))
	for i, h := range payload {
		if strings.TrimSpace(h.Date) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeSchema, fmt.Sprintf("holiday %d has no date", i))
		}
		day, err := ParseDay(h.Date)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeSourceLoad, err, fmt.Sprintf("holiday %d", i))
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		holidays = append(holidays, models.Holiday{
			Date:        day,
			LocalName:   h.LocalName,
			Name:        h.Name,
			CountryCode: h.CountryCode,
			Fixed:       h.Fixed,
			Global:      h.Global,
			LaunchYear:  h.LaunchYear,
		})
	}

	return holidays, nil
}

var dayLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateTime,
}

// ParseDay parses an ISO date or date-time, with or without an offset, and
// keeps only its calendar day as UTC midnight. The wall-clock date wins over
// the offset.
func ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func (c *Client) buildURL(year string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	return fmt.Sprintf("%s/%s/%s", trimmed, url.PathEscape(year), url.PathEscape(c.country))
}
