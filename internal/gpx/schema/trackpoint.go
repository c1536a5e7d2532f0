package schema

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"

	"github.com/ctm/moves-still-count/internal/xmltokenizer"
)

// TrackPoint is a single validated fix, as written to a trkpt element.
// Physical quantities are kept in decimal form so unit conversions stay exact.
type TrackPoint struct {
	Lat, Lon         float64 // degrees
	Time             time.Time
	HeartRate        omit.Val[uint16] // beats per minute
	Cadence          omit.Val[uint16] // steps per minute
	Temperature      decimal.Decimal  // °C
	Distance         decimal.Decimal  // m
	Altitude         decimal.Decimal  // m
	SeaLevelPressure uint16           // millibar
	Speed            decimal.Decimal  // m/s
	VerticalSpeed    decimal.Decimal  // m/s
}

func (p *TrackPoint) reset() {
	*p = TrackPoint{Lat: math.NaN(), Lon: math.NaN()}
}

func (p *TrackPoint) UnmarshalToken(tok TokenReader, se *xmltokenizer.Token) error {
	p.reset()

	var err error
	if v, ok := se.Attr("lat"); ok {
		if p.Lat, err = strconv.ParseFloat(string(v), 64); err != nil {
			return fmt.Errorf("lat: %w", err)
		}
	}
	if v, ok := se.Attr("lon"); ok {
		if p.Lon, err = strconv.ParseFloat(string(v), 64); err != nil {
			return fmt.Errorf("lon: %w", err)
		}
	}
	if se.SelfClosing {
		return nil
	}

	for {
		token, err := tok.Token()
		if err != nil {
			return fmt.Errorf("trkpt: %w", err)
		}

		if token.IsEndElementOf(se) {
			return nil
		}
		if token.IsEndElement {
			continue
		}

		switch string(token.Name.Local) {
		case "ele":
			if p.Altitude, err = decimal.NewFromString(string(token.Data)); err != nil {
				return fmt.Errorf("ele: %w", err)
			}
		case "time":
			if p.Time, err = time.Parse(time.RFC3339, string(token.Data)); err != nil {
				return fmt.Errorf("time: %w", err)
			}
		case "extensions":
			if token.SelfClosing {
				continue
			}
			se := xmltokenizer.GetToken().Copy(token)
			err = p.unmarshalExtensions(tok, se)
			xmltokenizer.PutToken(se)
			if err != nil {
				return fmt.Errorf("extensions: %w", err)
			}
		}
	}
}

// unmarshalExtensions reads both the gpxtpx:TrackPointExtension children
// and the gpxdata elements placed directly under extensions.
func (p *TrackPoint) unmarshalExtensions(tok TokenReader, se *xmltokenizer.Token) error {
	for {
		token, err := tok.Token()
		if err != nil {
			return err
		}

		if token.IsEndElementOf(se) {
			return nil
		}
		if token.IsEndElement || len(token.Data) == 0 {
			continue
		}

		data := string(token.Data)
		switch local := string(token.Name.Local); local {
		case "hr":
			v, err := strconv.ParseUint(data, 10, 16)
			if err != nil {
				return fmt.Errorf("%s: %w", local, err)
			}
			p.HeartRate = omit.From(uint16(v))
		case "cadence":
			v, err := strconv.ParseUint(data, 10, 16)
			if err != nil {
				return fmt.Errorf("%s: %w", local, err)
			}
			p.Cadence = omit.From(uint16(v))
		case "seaLevelPressure":
			v, err := strconv.ParseUint(data, 10, 16)
			if err != nil {
				return fmt.Errorf("%s: %w", local, err)
			}
			p.SeaLevelPressure = uint16(v)
		case "temp":
			err = parseDecimal(&p.Temperature, local, data)
		case "distance":
			err = parseDecimal(&p.Distance, local, data)
		case "altitude":
			err = parseDecimal(&p.Altitude, local, data)
		case "speed":
			err = parseDecimal(&p.Speed, local, data)
		case "verticalSpeed":
			err = parseDecimal(&p.VerticalSpeed, local, data)
		}
		if err != nil {
			return err
		}
	}
}

func parseDecimal(dst *decimal.Decimal, name, s string) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = v
	return nil
}
