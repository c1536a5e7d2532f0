package xmltokenizer

import (
	"errors"
	"fmt"
	"io"
)

const (
	ErrMismatchedEndElement = errorString("end element does not match start element")
	ErrUnexpectedEndElement = errorString("end element without start element")
	ErrUnclosedElement      = errorString("unexpected end of input, element not closed")
	ErrNoRootElement        = errorString("no root element found")
)

// Decoder wraps a Tokenizer and verifies that elements are properly nested.
// Tokens are passed through unchanged.
type Decoder struct {
	tok     *Tokenizer
	open    [][]byte // full names of the open elements, reused across Reset
	depth   int
	sawRoot bool
	err     error
}

// NewDecoder creates new Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{tok: new(Tokenizer)}
	d.Reset(r, opts...)
	return d
}

// Reset resets the Decoder to read from r, maintaining its storage.
func (d *Decoder) Reset(r io.Reader, opts ...Option) {
	d.tok.Reset(r, opts...)
	d.depth = 0
	d.sawRoot = false
	d.err = nil
}

// Depth returns the number of currently open elements.
func (d *Decoder) Depth() int { return d.depth }

// Token returns the next token. io.EOF is only returned once every
// element has been closed; a truncated or badly nested document yields
// an error wrapping one of the Err* values instead.
func (d *Decoder) Token() (Token, error) {
	if d.err != nil {
		return Token{}, d.err
	}

	token, err := d.tok.Token()
	if errors.Is(err, io.EOF) {
		switch {
		case d.depth > 0:
			err = fmt.Errorf("<%s>: %w", d.open[d.depth-1], ErrUnclosedElement)
		case !d.sawRoot:
			err = ErrNoRootElement
		}
	}
	if err != nil {
		d.err = err
		return Token{}, err
	}

	if !token.IsElement() {
		return token, nil
	}

	switch {
	case token.IsEndElement:
		if d.depth == 0 {
			d.err = fmt.Errorf("byte pos %d: </%s>: %w",
				d.tok.Offset(), token.Name.Full, ErrUnexpectedEndElement)
			return Token{}, d.err
		}
		if expected := d.open[d.depth-1]; string(expected) != string(token.Name.Full) {
			d.err = fmt.Errorf("byte pos %d: expected </%s>, got </%s>: %w",
				d.tok.Offset(), expected, token.Name.Full, ErrMismatchedEndElement)
			return Token{}, d.err
		}
		d.depth--
	case token.SelfClosing:
		d.sawRoot = true
	default:
		d.push(token.Name.Full)
	}

	return token, nil
}

func (d *Decoder) push(name []byte) {
	d.sawRoot = true
	if d.depth < len(d.open) {
		d.open[d.depth] = append(d.open[d.depth][:0], name...)
	} else {
		d.open = append(d.open, append([]byte(nil), name...))
	}
	d.depth++
}
