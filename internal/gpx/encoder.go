package gpx

import (
	"bufio"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
)

// frame tracks what has been written inside an open element.
type frame struct {
	name   string
	markup bool // a child element was written
	text   bool // character data was written
}

// encoder is a push-style XML emitter. The '>' of a start tag is
// deferred until the next event so an element that receives no content
// can be closed as <name />. Errors are sticky, the first one is
// returned by flush.
type encoder struct {
	w       *bufio.Writer
	newline string
	indent  string
	stack   []frame
	pending bool // a start tag is waiting for its '>'
	started bool // something was written at document level
	err     error
}

func newEncoder(w io.Writer, newline, indent string) *encoder {
	return &encoder{
		w:       bufio.NewWriter(w),
		newline: newline,
		indent:  indent,
	}
}

func (e *encoder) writeString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *encoder) declaration() {
	e.writeString(`<?xml version="1.0" encoding="utf-8" standalone="no"?>`)
	e.started = true
}

func (e *encoder) closePending() {
	if e.pending {
		e.writeString(">")
		e.pending = false
	}
}

func (e *encoder) lineBreak(level int) {
	e.writeString(e.newline)
	for i := 0; i < level; i++ {
		e.writeString(e.indent)
	}
}

type attr struct{ name, value string }

func (e *encoder) start(name string, attrs ...attr) {
	e.closePending()

	if n := len(e.stack); n > 0 {
		if top := &e.stack[n-1]; !top.text {
			e.lineBreak(n)
		}
		e.stack[n-1].markup = true
	} else if e.started {
		e.lineBreak(0)
	}

	e.writeString("<")
	e.writeString(name)
	for _, a := range attrs {
		e.writeString(" ")
		e.writeString(a.name)
		e.writeString(`="`)
		e.writeString(attrEscaper.Replace(a.value))
		e.writeString(`"`)
	}
	e.pending = true
	e.started = true
	e.stack = append(e.stack, frame{name: name})
}

func (e *encoder) text(s string) {
	if s == "" {
		return
	}
	e.closePending()
	e.writeString(textEscaper.Replace(s))
	if n := len(e.stack); n > 0 {
		e.stack[n-1].text = true
	}
}

func (e *encoder) end() {
	n := len(e.stack)
	if n == 0 {
		return
	}
	top := e.stack[n-1]
	e.stack = e.stack[:n-1]

	if e.pending {
		e.writeString(" />")
		e.pending = false
		return
	}
	if top.markup && !top.text {
		e.lineBreak(n - 1)
	}
	e.writeString("</")
	e.writeString(top.name)
	e.writeString(">")
}

// element writes <name>text</name>.
func (e *encoder) element(name, text string) {
	e.start(name)
	e.text(text)
	e.end()
}

func (e *encoder) depth() int { return len(e.stack) }

func (e *encoder) flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.w.Flush()
	return e.err
}
