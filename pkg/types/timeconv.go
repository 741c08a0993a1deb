package types

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the literal form the service uses for date-time values.
const DateTimeLayout = "2006-01-02 15:04:05"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// looser canonical forms tried after DateTimeLayout; the bool marks layouts
// that carry their own zone offset.
var fallbackLayouts = []struct {
	layout string
	zoned  bool
}{
	{"2006-01-02 15:04:05.999999999", false},
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02 15:04:05.999999999Z07:00", true},
	{dateLayout, false},
	{"15:04:05.999999999", false},
}

// parseTemporal turns a decoded cell into an instant. Integers are epoch
// milliseconds. Strings are read as a wall clock in UTC, or in loc when
// set; strings with an explicit offset keep their instant and are moved
// to loc.
func parseTemporal(v Value, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch v.kind {
	case KindInt:
		return time.UnixMilli(v.i).In(loc), nil
	case KindFloat:
		return time.UnixMilli(int64(v.f)).In(loc), nil
	case KindString:
		t, zoned, err := parseWallClock(strings.TrimSpace(v.s))
		if err != nil {
			return time.Time{}, err
		}
		if zoned {
			return t.In(loc), nil
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
	}
	return time.Time{}, fmt.Errorf("%s value is not a date-time", v.kind)
}

func parseWallClock(s string) (time.Time, bool, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.UTC)
	if err == nil {
		return t, false, nil
	}
	for _, l := range fallbackLayouts {
		if t, ferr := time.ParseInLocation(l.layout, s, time.UTC); ferr == nil {
			return t, l.zoned, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("cannot parse %q as date-time: %w", s, err)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func clockOf(t time.Time) time.Time {
	return time.Date(0, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func formatTime(t time.Time) string {
	if t.Year() == 0 && t.Month() == time.January && t.Day() == 1 {
		return t.Format("15:04:05.999999999")
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format("2006-01-02 15:04:05.999999999")
}
