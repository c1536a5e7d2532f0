// Package convert turns Moveslink2 exports into GPX files.
package convert

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/ctm/moves-still-count/internal/gpx"
	"github.com/ctm/moves-still-count/internal/sml"
	"github.com/ctm/moves-still-count/internal/xmltokenizer"
	"github.com/ctm/moves-still-count/log"
)

const ErrNoPeriodicSamples = errorString("no periodic samples found")

type errorString string

func (e errorString) Error() string { return string(e) }

// Result describes a finished conversion.
type Result struct {
	Path       string // output file
	Points     int    // track points written
	Suppressed int    // periodic samples held back by the emission policy
	Dropped    int    // periodic samples that failed to convert
}

// Option configures a Converter.
type Option func(c *Converter)

// WithFs directs Converter to read and write through fs. Default: the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *Converter) { c.fs = fs }
}

// WithOutputDir directs Converter to place gpx files in dir. Default: the working directory.
func WithOutputDir(dir string) Option {
	return func(c *Converter) { c.outputDir = dir }
}

// WithLogger directs Converter to report dropped samples and finished files to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithKeepGoing directs ConvertFiles to continue after a failed file.
func WithKeepGoing(keepGoing bool) Option {
	return func(c *Converter) { c.keepGoing = keepGoing }
}

// WithWriterOptions is passed to every gpx.Writer.
func WithWriterOptions(opts ...gpx.Option) Option {
	return func(c *Converter) { c.writerOpts = append(c.writerOpts, opts...) }
}

// Converter converts exports one at a time. It is not safe for concurrent use.
type Converter struct {
	fs         afero.Fs
	outputDir  string
	logger     *log.Logger
	keepGoing  bool
	writerOpts []gpx.Option

	dec    *xmltokenizer.Decoder
	sample sml.Sample
}

// New creates a Converter writing to the working directory of the
// OS filesystem and logging to log.Default() unless options say otherwise.
func New(opts ...Option) *Converter {
	c := &Converter{
		fs:        afero.NewOsFs(),
		outputDir: ".",
	}
	for i := range opts {
		opts[i](c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// Filename returns the name of the gpx file for an export recorded at localTime.
func Filename(localTime time.Time) string {
	return fmt.Sprintf("Move_%04d_%02d_%02d_%02d_%02d_%02d_Running.gpx",
		localTime.Year(), localTime.Month(), localTime.Day(),
		localTime.Hour(), localTime.Minute(), localTime.Second())
}

// output is the lazily created gpx file of a single conversion.
type output struct {
	path string
	file afero.File
	w    *gpx.Writer
}

// Convert reads an export from r and writes its periodic samples to a gpx
// file named after the local time at the first periodic sample. Samples
// failing conversion are logged and skipped; any other error is fatal and
// removes the partially written file.
func (c *Converter) Convert(r io.Reader) (res Result, err error) {
	if c.dec == nil {
		c.dec = xmltokenizer.NewDecoder(r)
	} else {
		c.dec.Reset(r)
	}
	c.sample.Reset()

	var out *output
	defer func() {
		if err != nil && out != nil {
			out.file.Close()
			if rerr := c.fs.Remove(out.path); rerr != nil {
				c.logger.Warn("could not remove partial output",
					log.String("path", out.path), log.ErrorField(rerr))
			}
		}
	}()

	var (
		policy emissionPolicy
		active sml.Field
	)
	for {
		token, err := c.dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read: %w", err)
		}
		if !token.IsElement() {
			continue
		}

		if !token.IsEndElement {
			active = sml.Route(token.Name.Local)
		}

		if (token.IsEndElement || token.SelfClosing) &&
			string(token.Name.Local) == "Sample" && c.sample.IsPeriodic() {
			open, emit := policy.boundary()
			if open {
				if out, err = c.create(); err != nil {
					return res, err
				}
				res.Path = out.path
			}
			if emit {
				if err = c.emit(out.w, &res); err != nil {
					return res, err
				}
			} else {
				res.Suppressed++
			}
		}

		if len(token.Data) > 0 && active != sml.FieldNone {
			c.sample.Set(active, token.Data)
			policy.observe(c.sample.HasCadence())
		}
	}

	if out == nil {
		return res, ErrNoPeriodicSamples
	}
	if err = out.w.Close(); err != nil {
		return res, fmt.Errorf("write %s: %w", out.path, err)
	}
	if err = out.file.Close(); err != nil {
		return res, fmt.Errorf("close %s: %w", out.path, err)
	}
	return res, nil
}

func (c *Converter) create() (*output, error) {
	localTime, err := c.sample.LocalTime()
	if err != nil {
		return nil, fmt.Errorf("output name: %w", err)
	}

	if err = c.fs.MkdirAll(c.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	path := filepath.Join(c.outputDir, Filename(localTime))
	f, err := c.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	out := &output{path: path, file: f, w: gpx.NewWriter(f, c.writerOpts...)}
	if err = out.w.WriteHeader(); err != nil {
		return out, fmt.Errorf("write %s: %w", path, err)
	}
	return out, nil
}

func (c *Converter) emit(w *gpx.Writer, res *Result) error {
	p, err := c.sample.TrackPoint()
	if err != nil {
		res.Dropped++
		fields := []log.Field{
			log.String("utc", c.sample.Value(sml.FieldUTC)),
			log.ErrorField(err),
		}
		var fieldErr *sml.FieldError
		if errors.As(err, &fieldErr) {
			fields = append(fields, log.String("field", fieldErr.Field.String()))
		}
		c.logger.Warn("dropping sample", fields...)
		return nil
	}

	if err = w.WriteTrackPoint(&p); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	res.Points++
	return nil
}
