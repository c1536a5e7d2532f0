package xmltokenizer

import (
	"bytes"
	"errors"
	"io"
)

var (
	commentStart = []byte("<!--")
	commentEnd   = []byte("-->")
	procInstEnd  = []byte("?>")
	cdataStart   = []byte("<![CDATA[")
	cdataEnd     = []byte("]]>")
)

// span holds offsets relative to mark. The markup ends at tag, the char
// data that follows it ends at text and the next token starts at next.
type span struct {
	tag, text, next int
	raw             bool // "<?" or "<!" markup, reported as is
}

// skipText advances mark to the next '<'. Text outside of an element
// that follows a tag is never part of a token.
func (t *Tokenizer) skipText() error {
	for {
		if i := bytes.IndexByte(t.buf[t.mark:], '<'); i >= 0 {
			t.mark += i
			return nil
		}
		t.mark = len(t.buf)
		if err := t.fill(); err != nil {
			return err
		}
	}
}

// scan finds the extent of the token starting at mark.
func (t *Tokenizer) scan() (s span, err error) {
	c, err := t.peek(1)
	if err != nil {
		return s, unexpected(err)
	}

	switch c {
	case '?':
		s.tag, err = t.indexFrom(2, procInstEnd)
	case '!':
		var comment bool
		if comment, err = t.hasPrefix(0, commentStart); err != nil {
			return s, err
		}
		if comment {
			s.tag, err = t.indexFrom(len(commentStart), commentEnd)
		} else {
			s.tag, err = t.tagEnd(2)
		}
	default:
		if s.tag, err = t.tagEnd(1); err != nil {
			return s, err
		}
		s.text, s.next, err = t.charData(s.tag)
		return s, err
	}

	s.raw = true
	s.text, s.next = s.tag, s.tag
	return s, err
}

// peek returns the byte at offset i from mark.
func (t *Tokenizer) peek(i int) (byte, error) {
	for t.mark+i >= len(t.buf) {
		if err := t.fill(); err != nil {
			return 0, err
		}
	}
	return t.buf[t.mark+i], nil
}

// hasPrefix reports whether the input at offset i from mark starts with p.
// Running out of input is not an error, the caller finds out on its next read.
func (t *Tokenizer) hasPrefix(i int, p []byte) (bool, error) {
	for t.mark+i+len(p) > len(t.buf) {
		if err := t.fill(); err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
	}
	return bytes.Equal(t.buf[t.mark+i:t.mark+i+len(p)], p), nil
}

// indexFrom returns the offset just past the first term found at or
// after offset i. Comments and processing instructions end this way,
// whatever '<' or '>' they hold.
func (t *Tokenizer) indexFrom(i int, term []byte) (int, error) {
	for {
		if j := bytes.Index(t.buf[t.mark+i:], term); j >= 0 {
			return i + j + len(term), nil
		}
		// A term may be split across reads.
		i = max(i, len(t.buf)-t.mark-len(term)+1)
		if err := t.fill(); err != nil {
			return 0, unexpected(err)
		}
	}
}

// tagEnd returns the offset just past the '>' closing the tag at mark.
// A '>' inside a quoted value or a DOCTYPE internal subset does not count.
func (t *Tokenizer) tagEnd(i int) (int, error) {
	var quote byte
	var depth int
	for ; ; i++ {
		if t.mark+i >= len(t.buf) {
			if err := t.fill(); err != nil {
				return 0, unexpected(err)
			}
		}
		switch c := t.buf[t.mark+i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == '>' && depth <= 0:
			return i + 1, nil
		}
	}
}

// charData collects the text following the tag that ends at offset i,
// up to the next markup that is not a CDATA section. CDATA sections are
// unwrapped in place, so the text ends at or before the next token.
func (t *Tokenizer) charData(i int) (text, next int, err error) {
	text = i
	for {
		rest := t.buf[t.mark+i:]
		j := bytes.IndexByte(rest, '<')
		if j < 0 {
			text += copy(t.buf[t.mark+text:], rest)
			i += len(rest)
			if err = t.fill(); err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				return text, i, err
			}
			continue
		}
		text += copy(t.buf[t.mark+text:], rest[:j])
		i += j

		var cdata bool
		if cdata, err = t.hasPrefix(i, cdataStart); err != nil || !cdata {
			return text, i, err
		}
		var end int
		if end, err = t.indexFrom(i+len(cdataStart), cdataEnd); err != nil {
			return text, i, err
		}
		text += copy(t.buf[t.mark+text:], t.buf[t.mark+i+len(cdataStart):t.mark+end-len(cdataEnd)])
		i = end
	}
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// parseTag fills the token from an element tag such as <Sample>,
// </gpxtpx:hr> or <trkpt lat="60.1" lon="24.9"/>.
func (t *Tokenizer) parseTag(b []byte) error {
	b = b[1 : len(b)-1]
	if len(b) > 0 && b[0] == '/' {
		t.token.IsEndElement = true
		b = b[1:]
	}
	if n := len(b); n > 0 && b[n-1] == '/' {
		t.token.SelfClosing = true
		b = b[:n-1]
	}

	t.token.Name, b = splitName(b)
	if len(t.token.Name.Full) == 0 {
		return errMalformedTag
	}

	for {
		if b = trimPrefix(b); len(b) == 0 {
			return nil
		}
		var attr Attr
		attr.Name, b = splitName(b)
		b = trimPrefix(b)
		if len(attr.Name.Full) == 0 || len(b) == 0 || b[0] != '=' {
			return errMalformedTag
		}
		b = trimPrefix(b[1:])
		if len(b) == 0 || (b[0] != '"' && b[0] != '\'') {
			return errMalformedTag
		}
		end := bytes.IndexByte(b[1:], b[0]) + 1
		if end == 0 {
			return errMalformedTag
		}
		attr.Value = trim(b[1:end])
		t.token.Attrs = append(t.token.Attrs, attr)
		b = b[end+1:]
	}
}

// splitName reads a name up to whitespace or '=' and splits it at the colon.
func splitName(b []byte) (Name, []byte) {
	var i int
	for i < len(b) && !isSpace(b[i]) && b[i] != '=' {
		i++
	}
	name := Name{Local: b[:i:i], Full: b[:i:i]}
	if c := bytes.IndexByte(name.Full, ':'); c >= 0 {
		name.Prefix, name.Local = name.Full[:c:c], name.Full[c+1:]
	}
	return name, b[i:]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func trim(b []byte) []byte {
	return trimSuffix(trimPrefix(b))
}

func trimPrefix(b []byte) []byte {
	for len(b) > 0 && isSpace(b[0]) {
		b = b[1:]
	}
	return b
}

func trimSuffix(b []byte) []byte {
	for len(b) > 0 && isSpace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return b
}
