package schema

import (
	"fmt"

	"github.com/ctm/moves-still-count/internal/xmltokenizer"
)

// TokenReader is implemented by xmltokenizer.Tokenizer and xmltokenizer.Decoder.
type TokenReader interface {
	Token() (xmltokenizer.Token, error)
}

// GPX is GPX schema (simplified to what the converter writes).
type GPX struct {
	Creator string
	Version string
	Tracks  []Track
}

// TrackPoints returns every track point of every track and segment in document order.
func (g *GPX) TrackPoints() []TrackPoint {
	var points []TrackPoint
	for i := range g.Tracks {
		for j := range g.Tracks[i].TrackSegments {
			points = append(points, g.Tracks[i].TrackSegments[j].TrackPoints...)
		}
	}
	return points
}

func (g *GPX) UnmarshalToken(tok TokenReader, se *xmltokenizer.Token) error {
	for i := range se.Attrs {
		attr := &se.Attrs[i]
		switch string(attr.Name.Local) {
		case "creator":
			g.Creator = string(attr.Value)
		case "version":
			g.Version = string(attr.Value)
		}
	}
	if se.SelfClosing {
		return nil
	}

	for {
		token, err := tok.Token()
		if err != nil {
			return fmt.Errorf("gpx: %w", err)
		}

		if token.IsEndElementOf(se) {
			return nil
		}
		if token.IsEndElement {
			continue
		}

		switch string(token.Name.Local) {
		case "trk":
			var track Track
			if token.SelfClosing {
				g.Tracks = append(g.Tracks, track)
				continue
			}
			se := xmltokenizer.GetToken().Copy(token)
			err = track.UnmarshalToken(tok, se)
			xmltokenizer.PutToken(se)
			if err != nil {
				return fmt.Errorf("track: %w", err)
			}
			g.Tracks = append(g.Tracks, track)
		}
	}
}
