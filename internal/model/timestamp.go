package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// TextLayout is the layout used when a parsed instant is rendered as text.
const TextLayout = "2006-01-02T15:04:05"

// Timestamp holds a fixture timestamp. Fixtures carry either RFC3339 instants,
// naive ISO-8601 strings (read as UTC) or unix seconds; anything else is kept
// as an opaque string. The original text is re-emitted unchanged.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// ParseTimestamp never fails: unparseable input yields an opaque Timestamp.
func ParseTimestamp(input string) Timestamp {
	input = strings.TrimSpace(input)
	ts := Timestamp{Raw: input}
	if input == "" {
		return ts
	}
	if isDigits(input) {
		if secs, err := strconv.ParseInt(input, 10, 64); err == nil {
			ts.Time = time.Unix(secs, 0).UTC()
		}
		return ts
	}
	for _, layout := range timestampLayouts {
		if tm, err := time.Parse(layout, input); err == nil {
			ts.Time = tm.UTC()
			return ts
		}
	}
	return ts
}

// NewTimestamp builds a Timestamp from an instant, rendered as naive UTC text.
func NewTimestamp(tm time.Time) Timestamp {
	tm = tm.UTC()
	return Timestamp{Time: tm, Raw: tm.Format(TextLayout)}
}

// Valid reports whether the timestamp resolved to an instant.
func (t Timestamp) Valid() bool {
	return !t.Time.IsZero()
}

// Text returns the stored text form.
func (t Timestamp) Text() string {
	if t.Raw != "" {
		return t.Raw
	}
	if t.Valid() {
		return t.Time.Format(TextLayout)
	}
	return ""
}

func (t Timestamp) String() string {
	return t.Text()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Text())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTimestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = ParseTimestamp(n.String())
	return nil
}

func isDigits(input string) bool {
	for i, r := range input {
		if r == '-' && i == 0 && len(input) > 1 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
