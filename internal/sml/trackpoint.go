package sml

import (
	"fmt"
	"math"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"

	"github.com/ctm/moves-still-count/internal/gpx/schema"
)

var (
	kelvinOffset = decimal.RequireFromString("273.16") // triple point of water, as the watch exports it
	perMinute    = decimal.NewFromInt(60)
	maxUint16    = decimal.NewFromInt(math.MaxUint16)
)

// TrackPoint converts the current values to a track point:
//   - latitude and longitude from radians to degrees
//   - hr and cadence from per second to per minute, absent when empty
//   - temperature from kelvin to celsius
//   - sea level pressure from pascal to millibar
//
// The first failing field is reported as a *FieldError.
func (s *Sample) TrackPoint() (schema.TrackPoint, error) {
	var (
		p   schema.TrackPoint
		err error
	)

	if p.Cadence, err = s.perMinute(FieldCadence); err != nil {
		return p, err
	}
	if p.HeartRate, err = s.perMinute(FieldHeartRate); err != nil {
		return p, err
	}
	if p.Lat, err = s.degrees(FieldLatitude); err != nil {
		return p, err
	}
	if p.Lon, err = s.degrees(FieldLongitude); err != nil {
		return p, err
	}
	if p.Time, err = s.utc(); err != nil {
		return p, err
	}

	kelvin, err := s.decimal(FieldTemperature)
	if err != nil {
		return p, err
	}
	p.Temperature = kelvin.Sub(kelvinOffset)

	if p.Distance, err = s.decimal(FieldDistance); err != nil {
		return p, err
	}
	if p.Altitude, err = s.decimal(FieldAltitude); err != nil {
		return p, err
	}

	pascal, err := s.decimal(FieldSeaLevelPressure)
	if err != nil {
		return p, err
	}
	if p.SeaLevelPressure, err = toUint16(pascal.Shift(-2).Round(0)); err != nil {
		return p, &FieldError{Field: FieldSeaLevelPressure, Err: err}
	}

	if p.Speed, err = s.decimal(FieldSpeed); err != nil {
		return p, err
	}
	if p.VerticalSpeed, err = s.decimal(FieldVerticalSpeed); err != nil {
		return p, err
	}

	return p, nil
}

func (s *Sample) decimal(f Field) (decimal.Decimal, error) {
	v := s.values[f]
	if len(v) == 0 {
		return decimal.Decimal{}, &FieldError{Field: f, Err: ErrEmptyValue}
	}
	d, err := decimal.NewFromString(string(v))
	if err != nil {
		return decimal.Decimal{}, &FieldError{Field: f, Err: err}
	}
	return d, nil
}

func (s *Sample) degrees(f Field) (float64, error) {
	d, err := s.decimal(f)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64() * 180 / math.Pi, nil
}

// perMinute converts a per second rate, leaving it unset when there is no value.
func (s *Sample) perMinute(f Field) (omit.Val[uint16], error) {
	if len(s.values[f]) == 0 {
		return omit.Val[uint16]{}, nil
	}
	d, err := s.decimal(f)
	if err != nil {
		return omit.Val[uint16]{}, err
	}
	v, err := toUint16(d.Mul(perMinute).Round(0))
	if err != nil {
		return omit.Val[uint16]{}, &FieldError{Field: f, Err: err}
	}
	return omit.From(v), nil
}

func (s *Sample) utc() (time.Time, error) {
	v := s.values[FieldUTC]
	if len(v) == 0 {
		return time.Time{}, &FieldError{Field: FieldUTC, Err: ErrEmptyValue}
	}
	t, err := time.Parse(time.RFC3339, string(v))
	if err != nil {
		return time.Time{}, &FieldError{Field: FieldUTC, Err: err}
	}
	return t.UTC(), nil
}

func toUint16(d decimal.Decimal) (uint16, error) {
	if d.IsNegative() || d.GreaterThan(maxUint16) {
		return 0, fmt.Errorf("%s: %w", d, ErrOutOfRange)
	}
	return uint16(d.IntPart()), nil
}
