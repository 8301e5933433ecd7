// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// DateKind identifies which representation a DateLike value carries.
type DateKind int

const (
	// DateAbsent marks a missing or null date.
	DateAbsent DateKind = iota
	// DateString marks a textual date that still has to be parsed.
	DateString
	// DateTime marks a native time.Time value.
	DateTime
	// DateEpoch marks a number already expressed in epoch milliseconds.
	DateEpoch
	// DateInvalid marks a present value that cannot be a date, such as a
	// number outside the int64 range or a boolean. Text holds the raw JSON.
	DateInvalid
)

// String returns a short name for the kind, used in diagnostics.
func (k DateKind) String() string {
	switch k {
	case DateString:
		return "string"
	case DateTime:
		return "time"
	case DateEpoch:
		return "epoch"
	case DateInvalid:
		return "invalid"
	default:
		return "absent"
	}
}

// DateLike is one of the heterogeneous date representations found in Suwatte
// backups. The zero value is an absent date.
type DateLike struct {
	Kind  DateKind
	Text  string
	Time  time.Time
	Epoch int64
}

// DateFromString wraps a textual date.
func DateFromString(s string) DateLike { return DateLike{Kind: DateString, Text: s} }

// DateFromTime wraps a native time value.
func DateFromTime(t time.Time) DateLike { return DateLike{Kind: DateTime, Time: t} }

// DateFromEpoch wraps a number of epoch milliseconds.
func DateFromEpoch(ms int64) DateLike { return DateLike{Kind: DateEpoch, Epoch: ms} }

// IsAbsent reports whether no date was supplied.
func (d DateLike) IsAbsent() bool { return d.Kind == DateAbsent }

// String renders the raw value for log messages.
func (d DateLike) String() string {
	switch d.Kind {
	case DateString:
		return fmt.Sprintf("%q", d.Text)
	case DateTime:
		return d.Time.UTC().Format(time.RFC3339)
	case DateEpoch:
		return fmt.Sprintf("%d", d.Epoch)
	case DateInvalid:
		return d.Text
	default:
		return "<absent>"
	}
}

// UnmarshalJSON accepts null, a string, or a number. Fractional epoch values
// are truncated toward zero. Any other well-formed value, including a number
// outside the int64 range, decodes as DateInvalid.
func (d *DateLike) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = DateLike{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DateFromString(s)
		return nil
	case '{', '[', 't', 'f':
		if !json.Valid(data) {
			return fmt.Errorf("malformed date value %s", data)
		}
		*d = invalidDate(data)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*d = DateFromEpoch(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		*d = invalidDate(data)
		return nil
	}
	*d = DateFromEpoch(int64(f))
	return nil
}

func invalidDate(raw []byte) DateLike {
	return DateLike{Kind: DateInvalid, Text: string(raw)}
}

// MarshalJSON writes the value back in the form it was read.
func (d DateLike) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DateString:
		return json.Marshal(d.Text)
	case DateTime:
		return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
	case DateEpoch:
		return json.Marshal(d.Epoch)
	case DateInvalid:
		if json.Valid([]byte(d.Text)) {
			return []byte(d.Text), nil
		}
		return json.Marshal(d.Text)
	default:
		return []byte("null"), nil
	}
}
