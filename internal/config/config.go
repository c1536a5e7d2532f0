package config

import "time"

// this holds the resolved configuration values from CLI
var (
	LogLevel   string        // sets the log level (zap log level values)
	LogFormat  string        // text vs json
	OutputDir  string        // directory receiving the gpx files
	KeepGoing  bool          // convert the remaining files after a failure
	Creator    string        // gpx creator attribute, empty keeps the default
	TrackName  string        // gpx track name, empty keeps the default
	Extensions []string      // file extensions picked up by watch
	SettleTime time.Duration // quiet period before a watched file is converted
	Format     string        // output format of summary (text, yaml)
)
