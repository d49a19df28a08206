package isotime

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const (
	_clock = `(?<clock>[0-2]\d:?[0-5]\d:?[0-5]\d|23:59:60|235960)`
	_frac  = `(?<frac>\.\d+)?`
	_zone  = `(?<zone>z|[+-]\d{2}:\d{2})?`
)

var (
	dateRe     = regexp2.MustCompile(`^(?<y>\d{4})-?(?<m>[0-1]\d)-?(?<d>[0-3]\d)\z`, regexp2.IgnoreCase)
	timeRe     = regexp2.MustCompile(`^`+_clock+_frac+_zone+`\z`, regexp2.IgnoreCase)
	dateTimeRe = regexp2.MustCompile(`^(?<y>\d{4})-?(?<m>[0-1]\d)-?(?<d>[0-3]\d)[t\s]?`+_clock+_frac+_zone+`\z`, regexp2.IgnoreCase)
	durationRe = regexp2.MustCompile(
		`^(?<sign>-?)P(?=\d|T\d)(?:(?<w>\d+)W)?(?:(?<d>\d+)D)?(?:T(?:(?<h>\d+)H)?(?:(?<mi>\d+)M)?(?:(?<s>\d+(?:\.\d+)?)S)?)?\z`,
		regexp2.IgnoreCase)
)

// match runs re against s and returns the named groups that participated.
func match(re *regexp2.Regexp, s string) (map[string]string, bool) {
	m, err := re.FindStringMatch(s)
	if err != nil || m == nil {
		return nil, false
	}
	out := make(map[string]string)
	for _, g := range m.Groups() {
		if len(g.Captures) > 0 {
			out[g.Name] = g.String()
		}
	}
	return out, true
}

// ParseDate parses YYYY-MM-DD or YYYYMMDD.
func ParseDate(s string) (Date, error) {
	g, ok := match(dateRe, s)
	if !ok {
		return Date{}, &FormatError{Layout: "date", Value: s}
	}
	d := Date{Year: atoi(g["y"]), Month: time.Month(atoi(g["m"])), Day: atoi(g["d"])}
	if !d.IsValid() {
		return Date{}, &FormatError{Layout: "date", Value: s}
	}
	return d, nil
}

// ParseTime parses a time of day such as 20:20:10, 202010.5 or
// 20:20:10.000001+02:00.
func ParseTime(s string) (Time, error) {
	g, ok := match(timeRe, s)
	if !ok {
		return Time{}, &FormatError{Layout: "time", Value: s}
	}
	t, ok := clockOf(g)
	if !ok {
		return Time{}, &FormatError{Layout: "time", Value: s}
	}
	return t, nil
}

// ParseDateTime parses a date and a time separated by "T", a space or
// nothing. Values without a zone designator are read as UTC.
func ParseDateTime(s string) (time.Time, error) {
	g, ok := match(dateTimeRe, s)
	if !ok {
		return time.Time{}, &FormatError{Layout: "datetime", Value: s}
	}
	d := Date{Year: atoi(g["y"]), Month: time.Month(atoi(g["m"])), Day: atoi(g["d"])}
	clock, ok := clockOf(g)
	if !ok || !d.IsValid() {
		return time.Time{}, &FormatError{Layout: "datetime", Value: s}
	}
	loc := clock.Zone
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, clock.Hour, clock.Minute, clock.Second, clock.Nanosecond, loc), nil
}

// ParseDuration parses a day-time duration: weeks, days, hours, minutes and
// fractional seconds, with an optional leading minus sign. Years and months
// are not supported. Values outside the time.Duration range are rejected.
func ParseDuration(s string) (time.Duration, error) {
	g, ok := match(durationRe, s)
	if !ok {
		return 0, &FormatError{Layout: "duration", Value: s}
	}
	whole, frac, _ := strings.Cut(g["s"], ".")
	parts := []struct {
		digits string
		unit   time.Duration
	}{
		{g["w"], 7 * 24 * time.Hour},
		{g["d"], 24 * time.Hour},
		{g["h"], time.Hour},
		{g["mi"], time.Minute},
		{whole, time.Second},
		{fracDigits(frac), 1},
	}
	var total int64
	for _, p := range parts {
		if !addScaled(&total, p.digits, int64(p.unit)) {
			return 0, &FormatError{Layout: "duration", Value: s}
		}
	}
	d := time.Duration(total)
	if g["sign"] == "-" {
		d = -d
	}
	return d, nil
}

// addScaled adds digits*unit to total, reporting false on overflow.
func addScaled(total *int64, digits string, unit int64) bool {
	if digits == "" {
		return true
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > (math.MaxInt64-*total)/unit {
		return false
	}
	*total += n * unit
	return true
}

// clockOf builds a Time from the clock/frac/zone groups.
func clockOf(g map[string]string) (Time, bool) {
	digits := strings.ReplaceAll(g["clock"], ":", "")
	t := Time{Hour: atoi(digits[0:2]), Minute: atoi(digits[2:4]), Second: atoi(digits[4:6])}
	if t.Hour > 23 {
		return Time{}, false
	}
	// Leap seconds are accepted on input but cannot be represented.
	if t.Second == 60 {
		t.Second = 59
	}
	if frac := g["frac"]; frac != "" {
		t.Nanosecond = fractionNanos(frac[1:])
	}
	if zone := g["zone"]; zone != "" {
		loc, ok := zoneOf(zone)
		if !ok {
			return Time{}, false
		}
		t.Zone = loc
	}
	return t, true
}

func zoneOf(z string) (*time.Location, bool) {
	if strings.EqualFold(z, "z") {
		return time.UTC, true
	}
	h, m := atoi(z[1:3]), atoi(z[4:6])
	if h > 23 || m > 59 {
		return nil, false
	}
	off := h*3600 + m*60
	if off == 0 {
		return time.UTC, true
	}
	if z[0] == '-' {
		off = -off
	}
	return time.FixedZone("", off), true
}

// fractionNanos converts the digits after the decimal point into
// nanoseconds, truncating beyond nanosecond precision.
func fractionNanos(digits string) int {
	return atoi(fracDigits(digits))
}

// fracDigits pads or truncates fraction digits to nine, or returns "" for
// an empty fraction.
func fracDigits(digits string) string {
	if digits == "" {
		return ""
	}
	if len(digits) > 9 {
		digits = digits[:9]
	}
	return digits + strings.Repeat("0", 9-len(digits))
}

// atoi is only called on regexp-validated digit runs.
func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
