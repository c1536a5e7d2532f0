package gpx

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ctm/moves-still-count/internal/gpx/schema"
)

// Summary describes the track points of a GPX document.
type Summary struct {
	Creator      string        `yaml:"creator"`
	Points       int           `yaml:"points"`
	Start        time.Time     `yaml:"start,omitempty"`
	End          time.Time     `yaml:"end,omitempty"`
	Duration     time.Duration `yaml:"duration"`
	MinHeartRate uint16        `yaml:"minHeartRate,omitempty"`
	MaxHeartRate uint16        `yaml:"maxHeartRate,omitempty"`
	Distance     string        `yaml:"distance,omitempty"` // last recorded gpxdata:distance, in m
}

// Summarize computes a Summary of every track point in g.
func Summarize(g *schema.GPX) Summary {
	points := g.TrackPoints()
	s := Summary{
		Creator: g.Creator,
		Points:  len(points),
	}
	if len(points) == 0 {
		return s
	}

	times := lo.FilterMap(points, func(p schema.TrackPoint, _ int) (time.Time, bool) {
		return p.Time, !p.Time.IsZero()
	})
	if len(times) > 0 {
		s.Start = lo.MinBy(times, func(a, b time.Time) bool { return a.Before(b) })
		s.End = lo.MaxBy(times, func(a, b time.Time) bool { return a.After(b) })
		s.Duration = s.End.Sub(s.Start)
	}

	heartRates := lo.FilterMap(points, func(p schema.TrackPoint, _ int) (uint16, bool) {
		return p.HeartRate.Get()
	})
	if len(heartRates) > 0 {
		s.MinHeartRate = lo.Min(heartRates)
		s.MaxHeartRate = lo.Max(heartRates)
	}

	// Distance is only written alongside cadence.
	distances := lo.FilterMap(points, func(p schema.TrackPoint, _ int) (decimal.Decimal, bool) {
		return p.Distance, p.Cadence.IsValue()
	})
	if len(distances) > 0 {
		s.Distance = distances[len(distances)-1].String()
	}

	return s
}
