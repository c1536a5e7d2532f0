package gpx

import (
	"errors"
	"fmt"
	"io"

	"github.com/ctm/moves-still-count/internal/gpx/schema"
	"github.com/ctm/moves-still-count/internal/xmltokenizer"
)

// ErrNotGPX is returned by Unmarshal when the document has no gpx root element.
const ErrNotGPX = errorString("document has no gpx element")

type errorString string

func (e errorString) Error() string { return string(e) }

// Unmarshal reads a GPX document from r. Elements outside of the
// schema subset are skipped; nesting is verified by the decoder.
func Unmarshal(r io.Reader) (schema.GPX, error) {
	dec := xmltokenizer.NewDecoder(r)
	var gpx schema.GPX
	for {
		token, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return gpx, ErrNotGPX
		}
		if err != nil {
			return gpx, err
		}

		if token.IsEndElement || string(token.Name.Local) != "gpx" {
			continue
		}

		se := xmltokenizer.GetToken().Copy(token)
		err = gpx.UnmarshalToken(dec, se)
		xmltokenizer.PutToken(se)
		if err != nil {
			return gpx, err
		}
		break
	}

	// Drain the rest so trailing garbage is still reported.
	for {
		if _, err := dec.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return gpx, nil
			}
			return gpx, fmt.Errorf("after gpx: %w", err)
		}
	}
}
