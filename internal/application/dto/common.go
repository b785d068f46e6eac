package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateOnly is a calendar date serialized as YYYY-MM-DD
type DateOnly struct {
	time.Time
}

const dateOnlyLayout = "2006-01-02"

// ParseDateOnly parses a YYYY-MM-DD string
func ParseDateOnly(s string) (DateOnly, error) {
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return DateOnly{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return DateOnly{Time: t}, nil
}

// NewDateOnly wraps a time.Time as a DateOnly
func NewDateOnly(t time.Time) DateOnly {
	return DateOnly{Time: t}
}

// String returns the YYYY-MM-DD representation
func (d DateOnly) String() string {
	return d.Format(dateOnlyLayout)
}

// MarshalJSON implements json.Marshaler
func (d DateOnly) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateOnlyLayout))
}

// UnmarshalJSON implements json.Unmarshaler
func (d *DateOnly) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDateOnly(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Optional carries a JSON field together with its presence in the payload,
// so a partial update can tell "field absent" apart from "field present but
// null". Absent fields are left untouched; explicit null clears nullable
// attributes.
type Optional[T any] struct {
	// Set is true when the field appeared in the payload at all
	Set bool
	// Valid is true when the field carried a non-null value
	Valid bool
	Value T
}

// Some returns a present, non-null Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns a present but explicitly null Optional
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for fields
// present in the payload, which is what makes Set reliable.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
