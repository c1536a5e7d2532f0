package sml

import (
	"fmt"
	"time"
)

// Sample holds the last text seen for every field. A single Sample is
// used for a whole export: values are never cleared, so a field missing
// from one sample block keeps the value of an earlier block.
type Sample struct {
	values [fieldCount][]byte
}

// Set overwrites the value of f. It is a no-op for FieldNone.
func (s *Sample) Set(f Field, data []byte) {
	if f == FieldNone || f >= fieldCount {
		return
	}
	s.values[f] = append(s.values[f][:0], data...)
}

// Value returns the current text of f.
func (s *Sample) Value(f Field) string {
	if f >= fieldCount {
		return ""
	}
	return string(s.values[f])
}

// IsPeriodic reports whether the sample type is exactly "periodic".
func (s *Sample) IsPeriodic() bool { return string(s.values[FieldSampleType]) == "periodic" }

// HasCadence reports whether a non-empty cadence has been seen.
func (s *Sample) HasCadence() bool { return len(s.values[FieldCadence]) > 0 }

var localTimeLayouts = [...]string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// LocalTime parses the device-local date and time. The result carries no
// zone information and is returned in time.UTC.
func (s *Sample) LocalTime() (time.Time, error) {
	v := s.Value(FieldLocalTime)
	if v == "" {
		return time.Time{}, &FieldError{Field: FieldLocalTime, Err: ErrEmptyValue}
	}
	var err error
	for _, layout := range localTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &FieldError{Field: FieldLocalTime, Err: err}
}

// Reset clears every value so the Sample can be reused for another export.
func (s *Sample) Reset() {
	for i := range s.values {
		s.values[i] = s.values[i][:0]
	}
}

const (
	ErrEmptyValue = errorString("empty value")
	ErrOutOfRange = errorString("value out of range")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// FieldError reports the field whose conversion failed.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }
