package sml_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ctm/moves-still-count/internal/sml"
)

func TestSampleCarriesValuesOver(t *testing.T) {
	var s sml.Sample
	s.Set(sml.FieldHeartRate, []byte("1.2"))
	s.Set(sml.FieldSampleType, []byte("periodic"))

	// Next block only brings a new sample type.
	s.Set(sml.FieldSampleType, []byte("gps-base"))
	if s.IsPeriodic() {
		t.Fatalf("expected non periodic")
	}
	if v := s.Value(sml.FieldHeartRate); v != "1.2" {
		t.Fatalf("expected hr to be kept, got: %q", v)
	}

	s.Set(sml.FieldNone, []byte("ignored"))
	s.Set(sml.FieldSampleType, []byte("periodic"))
	if !s.IsPeriodic() {
		t.Fatalf("expected periodic")
	}

	s.Reset()
	if v := s.Value(sml.FieldHeartRate); v != "" {
		t.Fatalf("expected empty value after reset, got: %q", v)
	}
}

func TestIsPeriodicIsCaseSensitive(t *testing.T) {
	var s sml.Sample
	s.Set(sml.FieldSampleType, []byte("Periodic"))
	if s.IsPeriodic() {
		t.Fatalf("expected non periodic")
	}
}

func TestHasCadence(t *testing.T) {
	var s sml.Sample
	if s.HasCadence() {
		t.Fatalf("expected no cadence")
	}
	s.Set(sml.FieldCadence, []byte("1.4"))
	if !s.HasCadence() {
		t.Fatalf("expected cadence")
	}
}

func TestLocalTime(t *testing.T) {
	tt := []struct {
		name     string
		value    string
		expected time.Time
		err      error
	}{
		{
			name:     "space separated",
			value:    "2021-03-05 10:00:00",
			expected: time.Date(2021, 3, 5, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "T separated with fraction",
			value:    "2021-03-05T10:00:00.250",
			expected: time.Date(2021, 3, 5, 10, 0, 0, 250e6, time.UTC),
		},
		{
			name:  "empty",
			value: "",
			err:   sml.ErrEmptyValue,
		},
		{
			name:  "garbage",
			value: "yesterday",
			err:   &time.ParseError{},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var s sml.Sample
			s.Set(sml.FieldLocalTime, []byte(tc.value))
			lt, err := s.LocalTime()

			if tc.err != nil {
				var fieldErr *sml.FieldError
				if !errors.As(err, &fieldErr) || fieldErr.Field != sml.FieldLocalTime {
					t.Fatalf("expected local time field error, got: %v", err)
				}
				var parseErr *time.ParseError
				if !errors.Is(err, tc.err) && !errors.As(err, &parseErr) {
					t.Fatalf("expected error: %v, got: %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !lt.Equal(tc.expected) {
				t.Fatalf("expected: %v, got: %v", tc.expected, lt)
			}
		})
	}
}
