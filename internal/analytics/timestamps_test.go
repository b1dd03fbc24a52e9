package analytics

import (
	"testing"
	"time"
)

func TestParseTimestampFormats(t *testing.T) {
	want := time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC)
	for _, raw := range []string{"2017-10-02 10:56:33", "2017-10-02T10:56:33Z", "2017-10-02T10:56:33-03:00", "2017-10-02T10:56:33", "2017-10-02T10:56:33.000"} {
		got, err := ParseTimestamp(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q: expected %v, got %v", raw, want, got)
		}
	}

	day, err := ParseTimestamp("2017-10-02")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !day.Equal(TruncateDay(want)) {
		t.Fatalf("expected %v, got %v", TruncateDay(want), day)
	}

	if _, err := ParseTimestamp("02/10/2017"); err == nil {
		t.Fatal("expected invalid layout to fail")
	}
}

func TestOffsetTimestampsKeepWallClockDay(t *testing.T) {
	late, err := ParseTimestamp("2017-03-05T23:10:00-03:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if late.Day() != 5 || late.Hour() != 23 {
		t.Fatalf("expected wall clock 2017-03-05 23:10, got %v", late)
	}
	if EpochMillis(late) != 1488672000000 {
		t.Fatalf("expected the 2017-03-05 day bucket, got %d", EpochMillis(late))
	}

	early, err := ParseTimestamp("2017-03-06T01:00:00+02:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := CalendarDaysBetween(late, early); got != 1 {
		t.Fatalf("expected 1 calendar day between wall-clock dates, got %d", got)
	}
}

func TestTruncateDayRoundTrip(t *testing.T) {
	withTime := time.Date(2017, 3, 5, 23, 59, 59, 999, time.UTC)
	withoutTime := time.Date(2017, 3, 5, 0, 0, 0, 0, time.UTC)
	if !TruncateDay(withTime).Equal(TruncateDay(withoutTime)) {
		t.Fatalf("expected same day, got %v and %v", TruncateDay(withTime), TruncateDay(withoutTime))
	}
	if EpochMillis(withTime) != 1488672000000 {
		t.Fatalf("unexpected epoch millis %d", EpochMillis(withTime))
	}
}

func TestDayDifferences(t *testing.T) {
	start := time.Date(2017, 1, 1, 18, 0, 0, 0, time.UTC)
	end := time.Date(2017, 1, 3, 6, 0, 0, 0, time.UTC)

	if got := DaysBetween(start, end); got != 1.5 {
		t.Fatalf("expected 1.5 days, got %v", got)
	}
	if got := CalendarDaysBetween(start, end); got != 2 {
		t.Fatalf("expected 2 calendar days, got %d", got)
	}
	if got := CalendarDaysBetween(end, start); got != -2 {
		t.Fatalf("expected -2 calendar days, got %d", got)
	}
	if MonthLabel(time.September) != "Sep" {
		t.Fatalf("unexpected month label %q", MonthLabel(time.September))
	}
}
