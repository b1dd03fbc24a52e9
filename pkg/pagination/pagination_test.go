package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor(Cursor{Scope: "revenue_per_state", Offset: 20})
	cursor, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor.Scope != "revenue_per_state" || cursor.Offset != 20 {
		t.Fatalf("unexpected cursor %+v", cursor)
	}

	if cursor, err := ParseCursor("  "); err != nil || cursor != nil {
		t.Fatalf("expected nil cursor for blank input, got %+v %v", cursor, err)
	}
	for _, bad := range []string{"%%%", EncodeCursor(Cursor{Scope: "x", Offset: -1}), "bm9waXBl"} {
		if _, err := ParseCursor(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestWindowWalksAllRows(t *testing.T) {
	params := Params{Limit: 2}
	var seen []int
	for i := 0; i < 10; i++ {
		page, err := Window("t", 5, params)
		if err != nil {
			t.Fatalf("window: %v", err)
		}
		for row := page.Start; row < page.End; row++ {
			seen = append(seen, row)
		}
		if page.NextCursor == "" {
			break
		}
		params.Cursor = page.NextCursor
	}
	if len(seen) != 5 || seen[0] != 0 || seen[4] != 4 {
		t.Fatalf("unexpected rows %v", seen)
	}
}

func TestWindowRejectsForeignCursor(t *testing.T) {
	cursor := EncodeCursor(Cursor{Scope: "a", Offset: 1})
	if _, err := Window("b", 5, Params{Cursor: cursor}); err == nil {
		t.Fatal("expected cursor scope mismatch to fail")
	}
	page, err := Window("a", 0, Params{Cursor: EncodeCursor(Cursor{Scope: "a", Offset: 9})})
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if page.Start != 0 || page.End != 0 || page.NextCursor != "" {
		t.Fatalf("unexpected page %+v", page)
	}
}
