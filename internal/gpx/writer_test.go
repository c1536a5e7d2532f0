package gpx_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/ctm/moves-still-count/internal/gpx"
	"github.com/ctm/moves-still-count/internal/gpx/schema"
)

const header = `<?xml version="1.0" encoding="utf-8" standalone="no"?>` + "\r\n" +
	`<gpx xmlns="http://www.topografix.com/GPX/1/1"` +
	` xmlns:gpxdata="http://www.cluetrust.com/XML/GPXDATA/1/0"` +
	` xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1"` +
	` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` +
	` version="1.1" creator="Movescount - http://www.movescount.com"` +
	` xsi:schemaLocation="http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd` +
	` http://www.cluetrust.com/XML/GPXDATA/1/0 http://www.cluetrust.com/Schemas/gpxdata10.xsd` +
	` http://www.garmin.com/xmlschemas/TrackPointExtension/v1 http://www.garmin.com/xmlschemas/TrackPointExtensionv1.xsd">`

func lines(l ...string) string { return strings.Join(l, "\r\n") }

func scenarioPoint() schema.TrackPoint {
	return schema.TrackPoint{
		Time:             time.Date(2021, 3, 5, 18, 0, 0, 0, time.UTC),
		HeartRate:        omit.From[uint16](72),
		Temperature:      decimal.RequireFromString("26.84"),
		Distance:         decimal.NewFromInt(100),
		Altitude:         decimal.RequireFromString("12.5"),
		SeaLevelPressure: 1013,
		Speed:            decimal.RequireFromString("2.75"),
		VerticalSpeed:    decimal.RequireFromString("-0.1"),
	}
}

func TestWriter(t *testing.T) {
	withCadence := scenarioPoint()
	withCadence.Lat, withCadence.Lon = 36.4, -108.86
	withCadence.HeartRate = omit.Val[uint16]{}
	withCadence.Cadence = omit.From[uint16](84)
	withCadence.Time = withCadence.Time.Add(1500 * time.Millisecond)

	tt := []struct {
		name     string
		points   []schema.TrackPoint
		expected string
	}{
		{
			name:   "no track points",
			points: nil,
			expected: lines(
				header,
				"  <trk>",
				"    <name>Move</name>",
				"    <trkseg />",
				"  </trk>",
				"</gpx>",
			),
		},
		{
			name:   "heart rate without cadence",
			points: []schema.TrackPoint{scenarioPoint()},
			expected: lines(
				header,
				"  <trk>",
				"    <name>Move</name>",
				"    <trkseg>",
				`      <trkpt lat="0" lon="0">`,
				"        <ele>12.5</ele>",
				"        <time>2021-03-05T18:00:00.000Z</time>",
				"        <extensions>",
				"          <gpxtpx:TrackPointExtension>",
				"            <gpxtpx:hr>72</gpxtpx:hr>",
				"          </gpxtpx:TrackPointExtension>",
				"          <gpxdata:temp>26.84</gpxdata:temp>",
				"          <gpxdata:seaLevelPressure>1013</gpxdata:seaLevelPressure>",
				"          <gpxdata:speed>2.75</gpxdata:speed>",
				"          <gpxdata:verticalSpeed>-0.1</gpxdata:verticalSpeed>",
				"        </extensions>",
				"      </trkpt>",
				"    </trkseg>",
				"  </trk>",
				"</gpx>",
			),
		},
		{
			name:   "cadence without heart rate",
			points: []schema.TrackPoint{withCadence},
			expected: lines(
				header,
				"  <trk>",
				"    <name>Move</name>",
				"    <trkseg>",
				`      <trkpt lat="36.4" lon="-108.86">`,
				"        <ele>12.5</ele>",
				"        <time>2021-03-05T18:00:01.500Z</time>",
				"        <extensions>",
				"          <gpxtpx:TrackPointExtension />",
				"          <gpxdata:cadence>84</gpxdata:cadence>",
				"          <gpxdata:temp>26.84</gpxdata:temp>",
				"          <gpxdata:distance>100</gpxdata:distance>",
				"          <gpxdata:altitude>12.5</gpxdata:altitude>",
				"          <gpxdata:seaLevelPressure>1013</gpxdata:seaLevelPressure>",
				"          <gpxdata:speed>2.75</gpxdata:speed>",
				"          <gpxdata:verticalSpeed>-0.1</gpxdata:verticalSpeed>",
				"        </extensions>",
				"      </trkpt>",
				"    </trkseg>",
				"  </trk>",
				"</gpx>",
			),
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := gpx.NewWriter(&buf)
			if err := w.WriteHeader(); err != nil {
				t.Fatalf("header: %v", err)
			}
			for i := range tc.points {
				if err := w.WriteTrackPoint(&tc.points[i]); err != nil {
					t.Fatalf("trkpt[%d]: %v", i, err)
				}
			}
			if err := w.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			if diff := cmp.Diff(buf.String(), tc.expected); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestWriterOptions(t *testing.T) {
	var buf bytes.Buffer
	w := gpx.NewWriter(&buf,
		gpx.WithCreator(`a & "b"`),
		gpx.WithTrackName("Run <1>"),
		gpx.WithLineSeparator("\n"),
		gpx.WithIndent("\t"),
	)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written without header, got: %q", buf.String())
	}

	buf.Reset()
	w = gpx.NewWriter(&buf,
		gpx.WithCreator(`a & "b"`),
		gpx.WithTrackName("Run <1>"),
		gpx.WithLineSeparator("\n"),
		gpx.WithIndent("\t"),
	)
	p := scenarioPoint()
	if err := w.WriteTrackPoint(&p); err != nil { // header is implied
		t.Fatalf("trkpt: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out := buf.String()
	for _, expected := range []string{
		`creator="a &amp; &quot;b&quot;"`,
		"\n\t<trk>\n\t\t<name>Run &lt;1&gt;</name>\n",
		"\n\t\t\t<trkpt ",
		"\n</gpx>",
	} {
		if !strings.Contains(out, expected) {
			t.Fatalf("expected output to contain %q, got:\n%s", expected, out)
		}
	}
	if strings.Contains(out, "\r") {
		t.Fatalf("unexpected carriage return in output")
	}
	if strings.HasSuffix(out, "\n") {
		t.Fatalf("unexpected trailing newline")
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriterError(t *testing.T) {
	errDiskFull := errors.New("disk full")
	w := gpx.NewWriter(failingWriter{err: errDiskFull})
	p := scenarioPoint()

	// Buffered, the error surfaces on flush at the latest.
	err := w.WriteTrackPoint(&p)
	if err == nil {
		err = w.Close()
	}
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected error: %v, got: %v", errDiskFull, err)
	}
	if err := w.Close(); !errors.Is(err, errDiskFull) {
		t.Fatalf("expected sticky error: %v, got: %v", errDiskFull, err)
	}
}
