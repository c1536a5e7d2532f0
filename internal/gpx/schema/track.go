package schema

import (
	"fmt"

	"github.com/ctm/moves-still-count/internal/xmltokenizer"
)

type Track struct {
	Name          string
	TrackSegments []TrackSegment
}

func (t *Track) UnmarshalToken(tok TokenReader, se *xmltokenizer.Token) error {
	for {
		token, err := tok.Token()
		if err != nil {
			return err
		}

		if token.IsEndElementOf(se) {
			return nil
		}
		if token.IsEndElement {
			continue
		}

		switch string(token.Name.Local) {
		case "name":
			t.Name = string(token.Data)
		case "trkseg":
			var trkseg TrackSegment
			if token.SelfClosing {
				t.TrackSegments = append(t.TrackSegments, trkseg)
				continue
			}
			se := xmltokenizer.GetToken().Copy(token)
			err = trkseg.UnmarshalToken(tok, se)
			xmltokenizer.PutToken(se)
			if err != nil {
				return err
			}
			t.TrackSegments = append(t.TrackSegments, trkseg)
		}
	}
}

type TrackSegment struct {
	TrackPoints []TrackPoint
}

func (t *TrackSegment) UnmarshalToken(tok TokenReader, se *xmltokenizer.Token) error {
	for {
		token, err := tok.Token()
		if err != nil {
			return err
		}

		if token.IsEndElementOf(se) {
			return nil
		}
		if token.IsEndElement {
			continue
		}

		switch string(token.Name.Local) {
		case "trkpt":
			var trkpt TrackPoint
			se := xmltokenizer.GetToken().Copy(token)
			err = trkpt.UnmarshalToken(tok, se)
			xmltokenizer.PutToken(se)
			if err != nil {
				return fmt.Errorf("trkpt[%d]: %w", len(t.TrackPoints), err)
			}
			t.TrackPoints = append(t.TrackPoints, trkpt)
		}
	}
}
