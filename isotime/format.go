package isotime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDate renders d as YYYY-MM-DD.
func FormatDate(d Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// FormatTime renders t as HH:MM:SS with an optional fraction and zone.
func FormatTime(t Time) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	b.WriteString(fraction(t.Nanosecond))
	if off, ok := t.Offset(); ok {
		b.WriteString(offset(off))
	}
	return b.String()
}

// FormatDateTime renders t as YYYY-MM-DDTHH:MM:SS[.f](Z|±HH:MM).
func FormatDateTime(t time.Time) string {
	_, off := t.Zone()
	return t.Format("2006-01-02T15:04:05") + fraction(t.Nanosecond()) + offset(off)
}

// FormatDuration renders d as [-]P[nW][nD][T[nH][nM][n[.f]S]]. The zero
// duration is PT0S.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	b := &strings.Builder{}
	// Work on the unsigned magnitude so that the minimum duration does not overflow.
	u := uint64(d)
	if d < 0 {
		b.WriteByte('-')
		u = uint64(-(d + 1)) + 1
	}
	b.WriteByte('P')

	const (
		week = uint64(7 * 24 * time.Hour)
		day  = uint64(24 * time.Hour)
	)
	if w := u / week; w > 0 {
		b.WriteString(strconv.FormatUint(w, 10) + "W")
	}
	u %= week
	if dd := u / day; dd > 0 {
		b.WriteString(strconv.FormatUint(dd, 10) + "D")
	}
	u %= day
	if u == 0 {
		return b.String()
	}
	b.WriteByte('T')
	if h := u / uint64(time.Hour); h > 0 {
		b.WriteString(strconv.FormatUint(h, 10) + "H")
	}
	u %= uint64(time.Hour)
	if m := u / uint64(time.Minute); m > 0 {
		b.WriteString(strconv.FormatUint(m, 10) + "M")
	}
	u %= uint64(time.Minute)
	if u > 0 {
		b.WriteString(strconv.FormatUint(u/uint64(time.Second), 10))
		if ns := u % uint64(time.Second); ns > 0 {
			b.WriteString(strings.TrimRight(fmt.Sprintf(".%09d", ns), "0"))
		}
		b.WriteByte('S')
	}
	return b.String()
}

// fraction renders microsecond-aligned values with six digits and anything
// finer with nine.
func fraction(ns int) string {
	switch {
	case ns == 0:
		return ""
	case ns%1000 == 0:
		return fmt.Sprintf(".%06d", ns/1000)
	default:
		return fmt.Sprintf(".%09d", ns)
	}
}

func offset(seconds int) string {
	if seconds == 0 {
		return "Z"
	}
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}
