package xmltokenizer

import (
	"errors"
	"fmt"
	"io"
)

type errorString string

func (e errorString) Error() string { return string(e) }

const (
	errAutoGrowBufferExceedMaxLimit = errorString("auto grow buffer exceed max limit")
	errMalformedTag                 = errorString("malformed tag")
)

const (
	defaultReadBufferSize      = 4 << 10
	autoGrowBufferMaxLimitSize = 1000 << 10
	defaultAttrsBufferSize     = 16
)

// Tokenizer splits an XML stream into tokens. It does not verify that
// elements are properly nested, see Decoder for that.
//
// Input is held in a sliding window: bytes before mark belong to tokens
// already returned and are dropped on the next read. A single token,
// including the char data that follows it, must fit in the window.
type Tokenizer struct {
	r       io.Reader
	n       int64 // bytes read from r
	options options
	buf     []byte
	mark    int   // start of the token being scanned
	start   int64 // input offset of the last token returned
	err     error // read error, io.EOF once r is drained
	failed  error // returned by every call after a failure
	token   Token
}

type options struct {
	readBufferSize             int
	autoGrowBufferMaxLimitSize int
	attrsBufferSize            int
}

func defaultOptions() options {
	return options{
		readBufferSize:             defaultReadBufferSize,
		autoGrowBufferMaxLimitSize: autoGrowBufferMaxLimitSize,
		attrsBufferSize:            defaultAttrsBufferSize,
	}
}

// Option is Tokenizer option.
type Option func(o *options)

// WithReadBufferSize sets how many bytes are requested from the
// io.Reader per read. Default: 4096.
func WithReadBufferSize(size int) Option {
	if size <= 0 {
		size = defaultReadBufferSize
	}
	return func(o *options) { o.readBufferSize = size }
}

// WithAutoGrowBufferMaxLimitSize caps the window, and so the largest
// token, at size bytes. Default: 1 MB.
func WithAutoGrowBufferMaxLimitSize(size int) Option {
	if size <= 0 {
		size = autoGrowBufferMaxLimitSize
	}
	return func(o *options) { o.autoGrowBufferMaxLimitSize = size }
}

// WithAttrBufferSize sets the initial Attrs capacity. Default: 16.
func WithAttrBufferSize(size int) Option {
	if size <= 0 {
		size = defaultAttrsBufferSize
	}
	return func(o *options) { o.attrsBufferSize = size }
}

// New creates new XML tokenizer.
func New(r io.Reader, opts ...Option) *Tokenizer {
	t := new(Tokenizer)
	t.Reset(r, opts...)
	return t
}

// Reset resets the Tokenizer to read from r, keeping its buffers.
func (t *Tokenizer) Reset(r io.Reader, opts ...Option) {
	t.r, t.err, t.failed = r, nil, nil
	t.n, t.mark, t.start = 0, 0, 0

	t.options = defaultOptions()
	for i := range opts {
		opts[i](&t.options)
	}
	if t.options.readBufferSize > t.options.autoGrowBufferMaxLimitSize {
		t.options.autoGrowBufferMaxLimitSize = t.options.readBufferSize
	}

	if cap(t.token.Attrs) < t.options.attrsBufferSize {
		t.token.Attrs = make([]Attr, 0, t.options.attrsBufferSize)
	}
	if cap(t.buf) < t.options.readBufferSize {
		t.buf = make([]byte, 0, t.options.readBufferSize)
	}
	t.buf = t.buf[:0]
}

// InputOffset returns the number of bytes read from the underlying reader so far.
func (t *Tokenizer) InputOffset() int64 { return t.n }

// Offset returns the input offset of the '<' that starts the last token.
func (t *Tokenizer) Offset() int64 { return t.start }

// Token returns either a valid token or an error. The returned token
// is only valid before the next Token call. Once an error other than
// io.EOF is returned, every following call returns it again.
func (t *Tokenizer) Token() (token Token, err error) {
	if t.failed != nil {
		return token, t.failed
	}
	if err = t.skipText(); err != nil {
		return token, t.fail(err)
	}
	t.start = t.offset()

	s, err := t.scan()
	if err != nil {
		return token, t.fail(err)
	}

	t.clearToken()
	b := t.buf[t.mark:]
	if s.raw {
		t.token.Data = b[:s.tag:s.tag]
		t.token.SelfClosing = true
	} else {
		if err = t.parseTag(b[:s.tag:s.tag]); err != nil {
			return token, t.fail(err)
		}
		t.token.Data = trim(b[s.tag:s.text:s.text])
	}
	t.mark += s.next

	token = t.token
	if len(token.Attrs) == 0 {
		token.Attrs = nil
	}
	if len(token.Data) == 0 {
		token.Data = nil
	}
	return token, nil
}

func (t *Tokenizer) fail(err error) error {
	if !errors.Is(err, io.EOF) {
		err = fmt.Errorf("byte pos %d: %w", t.offset(), err)
	}
	t.failed = err
	return err
}

// offset returns the input offset of mark.
func (t *Tokenizer) offset() int64 {
	return t.n - int64(len(t.buf)) + int64(t.mark)
}

// fill drops the bytes before mark and appends at least one byte read
// from r, growing the window when it is full.
func (t *Tokenizer) fill() error {
	if t.err != nil {
		return t.err
	}
	if t.mark > 0 {
		n := copy(t.buf, t.buf[t.mark:])
		t.buf = t.buf[:n]
		t.mark = 0
	}

	want := len(t.buf) + t.options.readBufferSize
	if want > cap(t.buf) {
		limit := t.options.autoGrowBufferMaxLimitSize
		if want > limit {
			t.err = fmt.Errorf("could not grow buffer to %d, max limit is set to %d: %w",
				want, limit, errAutoGrowBufferExceedMaxLimit)
			return t.err
		}
		buf := make([]byte, len(t.buf), min(max(want, 2*cap(t.buf)), limit))
		copy(buf, t.buf)
		t.buf = buf
	}

	n, err := io.ReadAtLeast(t.r, t.buf[len(t.buf):want], 1)
	t.buf = t.buf[:len(t.buf)+n]
	t.n += int64(n)
	if err != nil {
		t.err = err
	}
	return err
}

func (t *Tokenizer) clearToken() {
	t.token.Name = Name{}
	t.token.Attrs = t.token.Attrs[:0]
	t.token.Data = nil
	t.token.SelfClosing = false
	t.token.IsEndElement = false
}
