package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", raw)
}

// Date is an optional due date in a create request. null and "" mean unset.
type Date struct {
	Time *time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	t, err := decodeDate(data)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// NullableDate tells apart a field that was omitted (Set false) from one that
// was sent as null or "" (Set true, Time nil), which clears the due date.
type NullableDate struct {
	Set  bool
	Time *time.Time
}

func (d *NullableDate) UnmarshalJSON(data []byte) error {
	t, err := decodeDate(data)
	if err != nil {
		return err
	}
	d.Set = true
	d.Time = t
	return nil
}

func decodeDate(data []byte) (*time.Time, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dueDate must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
