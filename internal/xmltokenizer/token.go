package xmltokenizer

import (
	"bytes"
	"sync"
)

var pool = sync.Pool{New: func() any { return new(Token) }}

// GetToken takes a Token from a shared pool. Callers use it to hold a
// start element while decoding its children, then hand it to PutToken.
func GetToken() *Token { return pool.Get().(*Token) }

// PutToken returns t to the pool. t must not be used afterwards.
func PutToken(t *Token) { pool.Put(t) }

// Token is one piece of markup together with the text that follows it:
//   - <?xml version="1.0" encoding="utf-8"?>
//   - <Latitude>0.6353</Latitude>, the text belongs to the start element
//   - <Cadence><![CDATA[ 1.4 ]]></Cadence>, CDATA is unwrapped
//   - <gpxtpx:TrackPointExtension />
//   - </Sample>
//   - <!-- Ambit3 Peak -->
//
// Data is trimmed and whitespace-only text is reported as nil.
type Token struct {
	Name         Name   // Empty for "<?" and "<!" markup.
	Attrs        []Attr // Nil when the tag has none.
	Data         []byte // Text following the tag, or the whole markup for "<?" and "<!".
	SelfClosing  bool   // Set by "/>" and for "<?" and "<!" markup.
	IsEndElement bool   // Set by "</".
}

// IsElement reports whether t is a start, end or self-closing element
// rather than a declaration, comment or directive.
func (t *Token) IsElement() bool { return len(t.Name.Full) > 0 }

// IsEndElementOf reports whether t closes the start element se.
func (t *Token) IsEndElementOf(se *Token) bool {
	return t.IsEndElement && bytes.Equal(t.Name.Full, se.Name.Full)
}

// Attr returns the value of the attribute whose local name is local.
func (t *Token) Attr(local string) ([]byte, bool) {
	for i := range t.Attrs {
		if string(t.Attrs[i].Name.Local) == local {
			return t.Attrs[i].Value, true
		}
	}
	return nil, false
}

// Copy copies src into t, reusing t's storage, and returns t. The copy
// owns all of its bytes so it outlives the next Token call.
func (t *Token) Copy(src Token) *Token {
	t.Name.copy(src.Name)
	if cap(t.Attrs) < len(src.Attrs) {
		t.Attrs = append(t.Attrs[:cap(t.Attrs)], make([]Attr, len(src.Attrs)-cap(t.Attrs))...)
	}
	t.Attrs = t.Attrs[:len(src.Attrs)]
	for i := range src.Attrs {
		t.Attrs[i].Name.copy(src.Attrs[i].Name)
		t.Attrs[i].Value = append(t.Attrs[i].Value[:0], src.Attrs[i].Value...)
	}
	t.Data = append(t.Data[:0], src.Data...)
	t.SelfClosing = src.SelfClosing
	t.IsEndElement = src.IsEndElement
	return t
}

// Attr represents an XML attribute.
type Attr struct {
	Name  Name
	Value []byte
}

// Name is an XML name split at its colon. Namespaces are not resolved.
type Name struct {
	Prefix []byte
	Local  []byte
	Full   []byte // "prefix:local"
}

// copy keeps Prefix and Local as views into the copied Full.
func (n *Name) copy(src Name) {
	n.Full = append(n.Full[:0], src.Full...)
	n.Prefix, n.Local = nil, n.Full
	if p := len(src.Prefix); p > 0 || len(src.Full) > len(src.Local) {
		n.Prefix, n.Local = n.Full[:p:p], n.Full[len(n.Full)-len(src.Local):]
	}
}
