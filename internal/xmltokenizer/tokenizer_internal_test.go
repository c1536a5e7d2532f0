package xmltokenizer

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOptions(t *testing.T) {
	tt := []struct {
		name            string
		options         []Option
		expectedOptions options
	}{
		{
			name:            "defaults",
			expectedOptions: defaultOptions(),
		},
		{
			name: "non-positive sizes fall back to defaults",
			options: []Option{
				WithReadBufferSize(0),
				WithAttrBufferSize(-1),
				WithAutoGrowBufferMaxLimitSize(-8),
			},
			expectedOptions: defaultOptions(),
		},
		{
			name: "max limit is raised to the read size",
			options: []Option{
				WithReadBufferSize(8 << 10),
				WithAutoGrowBufferMaxLimitSize(2 << 10),
				WithAttrBufferSize(2),
			},
			expectedOptions: options{
				readBufferSize:             8 << 10,
				autoGrowBufferMaxLimitSize: 8 << 10,
				attrsBufferSize:            2,
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			tok := New(nil, tc.options...)
			if diff := cmp.Diff(tok.options, tc.expectedOptions,
				cmp.AllowUnexported(options{}),
			); diff != "" {
				t.Fatal(diff)
			}
			if cap(tok.buf) != tc.expectedOptions.readBufferSize {
				t.Fatalf("expected cap(buf): %d, got: %d", tc.expectedOptions.readBufferSize, cap(tok.buf))
			}
		})
	}
}

func drain(tok *Tokenizer) error {
	for {
		if _, err := tok.Token(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func TestWindowGrowth(t *testing.T) {
	longComment := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		"<!--" + strings.Repeat(" Moveslink2 export ", 300) + "-->\n" +
		"<sml></sml>"

	tt := []struct {
		name        string
		opts        []Option
		expectedCap int
		err         error
	}{
		{
			name:        "grows to hold the comment",
			opts:        []Option{WithReadBufferSize(5)},
			expectedCap: 10240,
		},
		{
			name: "growth stops at the max limit",
			opts: []Option{
				WithReadBufferSize(5),
				WithAutoGrowBufferMaxLimitSize(6000),
			},
			expectedCap: 6000,
		},
		{
			name: "token larger than the max limit",
			opts: []Option{
				WithReadBufferSize(5),
				WithAutoGrowBufferMaxLimitSize(1024),
			},
			err: errAutoGrowBufferExceedMaxLimit,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			tok := New(strings.NewReader(longComment), tc.opts...)
			err := drain(tok)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected error: %v, got: %v", tc.err, err)
			}
			if tc.err == nil && cap(tok.buf) != tc.expectedCap {
				t.Fatalf("expected cap(buf): %d, got: %d", tc.expectedCap, cap(tok.buf))
			}
		})
	}
}

func TestSkippedTextIsNotBuffered(t *testing.T) {
	xml := strings.Repeat("exported by Moveslink2\n", 1000) + "<sml/>"

	tok := New(strings.NewReader(xml),
		WithReadBufferSize(16),
		WithAutoGrowBufferMaxLimitSize(64),
	)

	token, err := tok.Token()
	if err != nil {
		t.Fatal(err)
	}
	if string(token.Name.Full) != "sml" || !token.SelfClosing {
		t.Fatalf("expected <sml/>, got: %+v", token)
	}
	if tok.Offset() != int64(len(xml)-len("<sml/>")) {
		t.Fatalf("expected offset: %d, got: %d", len(xml)-len("<sml/>"), tok.Offset())
	}
	if cap(tok.buf) > 64 {
		t.Fatalf("expected cap(buf) <= 64, got: %d", cap(tok.buf))
	}
}

func TestMalformedTag(t *testing.T) {
	tt := []struct {
		name string
		xml  string
		err  error
	}{
		{name: "empty tag", xml: "<sml><></sml>", err: errMalformedTag},
		{name: "empty end tag", xml: "<sml></>", err: errMalformedTag},
		{name: "attribute without value", xml: `<sml><trkpt lat></trkpt></sml>`, err: errMalformedTag},
		{name: "unquoted value", xml: `<sml><trkpt lat=60.1></trkpt></sml>`, err: errMalformedTag},
		{name: "unterminated value", xml: `<sml><trkpt lat="60.1></trkpt></sml>`, err: io.ErrUnexpectedEOF},
		{name: "unterminated comment", xml: `<sml><!-- a > b </sml>`, err: io.ErrUnexpectedEOF},
		{name: "unterminated cdata", xml: `<sml><HR><![CDATA[72</HR></sml>`, err: io.ErrUnexpectedEOF},
		{name: "lone angle bracket", xml: `<sml><`, err: io.ErrUnexpectedEOF},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			tok := New(strings.NewReader(tc.xml))
			err := drain(tok)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected error: %v, got: %v", tc.err, err)
			}
			// Failures are sticky.
			if _, again := tok.Token(); again != err {
				t.Fatalf("expected: %v, got: %v", err, again)
			}
		})
	}
}

type fnReader func(b []byte) (n int, err error)

func (f fnReader) Read(b []byte) (n int, err error) { return f(b) }

func TestReadError(t *testing.T) {
	errBroken := errors.New("broken pipe")
	r := io.MultiReader(strings.NewReader("<sml><Sample>"), fnReader(func([]byte) (int, error) {
		return 0, errBroken
	}))

	if err := drain(New(r)); !errors.Is(err, errBroken) {
		t.Fatalf("expected error: %v, got: %v", errBroken, err)
	}
}

func TestReset(t *testing.T) {
	tok := New(strings.NewReader(sampleDocument), WithReadBufferSize(8))
	if err := drain(tok); err != nil {
		t.Fatal(err)
	}
	grown := cap(tok.buf)

	tok.Reset(strings.NewReader("<sml><Sample/></sml>"), WithReadBufferSize(4))
	if len(tok.buf) != 0 || cap(tok.buf) != grown {
		t.Fatalf("expected len: 0, cap: %d, got: len: %d, cap: %d", grown, len(tok.buf), cap(tok.buf))
	}
	if tok.mark != 0 || tok.n != 0 || tok.err != nil || tok.failed != nil {
		t.Fatalf("expected zeroed state, got: mark: %d, n: %d, err: %v, failed: %v",
			tok.mark, tok.n, tok.err, tok.failed)
	}

	var names []string
	for {
		token, err := tok.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, string(token.Name.Full))
	}
	if diff := cmp.Diff(names, []string{"sml", "Sample", "sml"}); diff != "" {
		t.Fatal(diff)
	}
	if tok.InputOffset() != int64(len("<sml><Sample/></sml>")) {
		t.Fatalf("expected offset: %d, got: %d", len("<sml><Sample/></sml>"), tok.InputOffset())
	}
}

const sampleDocument = `<?xml version="1.0" encoding="utf-8"?>
<sml>
  <Sample>
    <UTC>2021-03-05T18:00:00.000Z</UTC>
    <SampleType>periodic</SampleType>
  </Sample>
</sml>
`
