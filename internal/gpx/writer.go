package gpx

import (
	"io"
	"strconv"

	"github.com/ctm/moves-still-count/internal/gpx/schema"
)

const (
	NamespaceGPX     = "http://www.topografix.com/GPX/1/1"
	NamespaceGPXData = "http://www.cluetrust.com/XML/GPXDATA/1/0"
	NamespaceGPXTPX  = "http://www.garmin.com/xmlschemas/TrackPointExtension/v1"
	NamespaceXSI     = "http://www.w3.org/2001/XMLSchema-instance"

	schemaLocation = NamespaceGPX + " http://www.topografix.com/GPX/1/1/gpx.xsd " +
		NamespaceGPXData + " http://www.cluetrust.com/Schemas/gpxdata10.xsd " +
		NamespaceGPXTPX + " http://www.garmin.com/xmlschemas/TrackPointExtensionv1.xsd"

	timeLayout = "2006-01-02T15:04:05.000Z"
)

const (
	defaultCreator       = "Movescount - http://www.movescount.com"
	defaultTrackName     = "Move"
	defaultLineSeparator = "\r\n"
	defaultIndent        = "  "
)

type options struct {
	creator       string
	trackName     string
	lineSeparator string
	indent        string
}

func defaultOptions() options {
	return options{
		creator:       defaultCreator,
		trackName:     defaultTrackName,
		lineSeparator: defaultLineSeparator,
		indent:        defaultIndent,
	}
}

// Option is Writer's option.
type Option func(o *options)

// WithCreator directs Writer to use this creator attribute.
func WithCreator(creator string) Option {
	return func(o *options) { o.creator = creator }
}

// WithTrackName directs Writer to use this name for the single track.
func WithTrackName(name string) Option {
	return func(o *options) { o.trackName = name }
}

// WithLineSeparator directs Writer to end lines with sep. Default "\r\n".
func WithLineSeparator(sep string) Option {
	return func(o *options) { o.lineSeparator = sep }
}

// WithIndent directs Writer to indent one nesting level with indent. Default two spaces.
func WithIndent(indent string) Option {
	return func(o *options) { o.indent = indent }
}

// Writer writes a GPX document holding one track with one segment.
// The header is written on the first WriteHeader or WriteTrackPoint call
// and the document is completed by Close. Writer does not close the
// underlying io.Writer.
type Writer struct {
	options options
	enc     *encoder
	opened  bool
	closed  bool
}

// NewWriter creates new Writer writing to w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	o := defaultOptions()
	for i := range opts {
		opts[i](&o)
	}
	return &Writer{
		options: o,
		enc:     newEncoder(w, o.lineSeparator, o.indent),
	}
}

// WriteHeader writes the declaration and opens gpx, trk and trkseg.
// Calling it more than once is a no-op.
func (w *Writer) WriteHeader() error {
	if w.opened {
		return w.enc.err
	}
	w.opened = true

	e := w.enc
	e.declaration()
	e.start("gpx",
		attr{"xmlns", NamespaceGPX},
		attr{"xmlns:gpxdata", NamespaceGPXData},
		attr{"xmlns:gpxtpx", NamespaceGPXTPX},
		attr{"xmlns:xsi", NamespaceXSI},
		attr{"version", "1.1"},
		attr{"creator", w.options.creator},
		attr{"xsi:schemaLocation", schemaLocation},
	)
	e.start("trk")
	e.element("name", w.options.trackName)
	e.start("trkseg")
	return e.err
}

// WriteTrackPoint writes p as a trkpt element. Cadence, distance and the
// gpxdata altitude are only written when p has a cadence.
func (w *Writer) WriteTrackPoint(p *schema.TrackPoint) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}

	e := w.enc
	e.start("trkpt",
		attr{"lat", formatFloat(p.Lat)},
		attr{"lon", formatFloat(p.Lon)},
	)
	e.element("ele", p.Altitude.String())
	e.element("time", p.Time.UTC().Format(timeLayout))

	e.start("extensions")
	e.start("gpxtpx:TrackPointExtension")
	if hr, ok := p.HeartRate.Get(); ok {
		e.element("gpxtpx:hr", strconv.FormatUint(uint64(hr), 10))
	}
	e.end()

	cadence, hasCadence := p.Cadence.Get()
	if hasCadence {
		e.element("gpxdata:cadence", strconv.FormatUint(uint64(cadence), 10))
	}
	e.element("gpxdata:temp", p.Temperature.String())
	if hasCadence {
		e.element("gpxdata:distance", p.Distance.String())
		e.element("gpxdata:altitude", p.Altitude.String())
	}
	e.element("gpxdata:seaLevelPressure", strconv.FormatUint(uint64(p.SeaLevelPressure), 10))
	e.element("gpxdata:speed", p.Speed.String())
	e.element("gpxdata:verticalSpeed", p.VerticalSpeed.String())
	e.end() // extensions

	e.end() // trkpt
	return e.err
}

// Close closes trkseg, trk and gpx and flushes the output.
// Close on a Writer that never wrote its header only flushes.
func (w *Writer) Close() error {
	if w.closed {
		return w.enc.err
	}
	w.closed = true
	for w.opened && w.enc.depth() > 0 {
		w.enc.end()
	}
	return w.enc.flush()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
