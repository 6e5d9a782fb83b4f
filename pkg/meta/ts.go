package meta

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TS is a signed timestamp with sub-millisecond precision, used for stream
// durations, offsets and filter parameters. The zero value is a zero duration.
//
// TS is a plain value type: it compares with ==, orders with < and works as a
// map key.
type TS time.Duration

// Millis builds a TS from integer milliseconds.
func Millis(ms int64) TS {
	return TS(time.Duration(ms) * time.Millisecond)
}

// Seconds builds a TS from float seconds.
func Seconds(s float64) TS {
	return TS(math.Round(s * float64(time.Second)))
}

// FromDuration builds a TS from a native duration.
func FromDuration(d time.Duration) TS {
	return TS(d)
}

// ParseTS parses a colon-delimited clock string ("HH:MM:SS.ffffff") into a TS.
// Any number of colon groups is accepted; groups accumulate right-to-left as
// sexagesimal digits, so "1:02:03" and "62:03" denote the same value. A single
// group is plain seconds. A leading "-" negates the whole value.
func ParseTS(s string) (TS, error) {
	src := strings.TrimSpace(s)
	if src == "" {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	negative := false
	if src[0] == '+' || src[0] == '-' {
		negative = src[0] == '-'
		src = src[1:]
	}

	groups := strings.Split(src, ":")
	var total float64
	scale := 1.0
	for i := len(groups) - 1; i >= 0; i-- {
		group := groups[i]
		if group == "" {
			return 0, fmt.Errorf("invalid timestamp %q: empty group", s)
		}
		// Only the seconds group may carry a fraction.
		if i != len(groups)-1 && strings.Contains(group, ".") {
			return 0, fmt.Errorf("invalid timestamp %q: fraction outside seconds", s)
		}
		value, err := strconv.ParseFloat(group, 64)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("invalid timestamp %q: bad group %q", s, group)
		}
		total += value * scale
		scale *= 60
	}

	if negative {
		total = -total
	}
	return Seconds(total), nil
}

// Add returns ts + other.
func (ts TS) Add(other TS) TS { return ts + other }

// Sub returns ts - other.
func (ts TS) Sub(other TS) TS { return ts - other }

// Neg returns -ts.
func (ts TS) Neg() TS { return -ts }

// Abs returns the absolute value of ts.
func (ts TS) Abs() TS {
	if ts < 0 {
		return -ts
	}
	return ts
}

// MulFloat scales ts by a dimensionless factor.
func (ts TS) MulFloat(k float64) TS {
	return TS(math.Round(float64(ts) * k))
}

// DivFloat divides ts by a dimensionless factor.
func (ts TS) DivFloat(k float64) TS {
	return TS(math.Round(float64(ts) / k))
}

// Ratio divides ts by another TS, yielding a dimensionless ratio.
func (ts TS) Ratio(other TS) float64 {
	return float64(ts) / float64(other)
}

// Floordiv divides ts by another TS, yielding the floored integer quotient.
func (ts TS) Floordiv(other TS) int64 {
	return int64(math.Floor(float64(ts) / float64(other)))
}

// Mod returns the remainder of ts divided by another TS, as a TS, with the
// sign convention matching Floordiv (ts == other*Floordiv + Mod).
func (ts TS) Mod(other TS) TS {
	return ts - other.MulFloat(float64(ts.Floordiv(other)))
}

// Seconds returns ts as float seconds.
func (ts TS) Seconds() float64 {
	return time.Duration(ts).Seconds()
}

// Millis returns ts as integer milliseconds, rounded.
func (ts TS) Millis() int64 {
	return int64(math.Round(float64(ts) / float64(time.Millisecond)))
}

// Duration returns ts as a native duration.
func (ts TS) Duration() time.Duration {
	return time.Duration(ts)
}

// String renders ts as "H:MM:SS" with a fractional seconds part trimmed of
// trailing zeros, e.g. "0:00:06.74". Negative values carry a leading "-".
func (ts TS) String() string {
	var sb strings.Builder
	n := time.Duration(ts)
	if n < 0 {
		sb.WriteByte('-')
		n = -n
	}

	hours := n / time.Hour
	n -= hours * time.Hour
	minutes := n / time.Minute
	n -= minutes * time.Minute
	seconds := n / time.Second
	nanos := n - seconds*time.Second

	fmt.Fprintf(&sb, "%d:%02d:%02d", hours, minutes, seconds)
	if nanos > 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sb.String()
}

// MarshalJSON serializes ts as its numeric seconds value.
func (ts TS) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(ts.Seconds(), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts either a numeric seconds value or a clock string.
func (ts *TS) UnmarshalJSON(b []byte) error {
	var seconds float64
	if err := json.Unmarshal(b, &seconds); err == nil {
		*ts = Seconds(seconds)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s", string(b))
	}
	parsed, err := ParseTS(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
