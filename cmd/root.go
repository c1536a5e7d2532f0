package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ctm/moves-still-count/internal/config"
	"github.com/ctm/moves-still-count/internal/convert"
	"github.com/ctm/moves-still-count/internal/gpx"
	"github.com/ctm/moves-still-count/log"
)

const envPrefix = "MOVES"

// Version is set at build time.
var Version = "dev"

// NewRootCmd creates the moves command and its subcommands.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "moves [files...]",
		Short: "Convert Moveslink2 exports to GPX",
		Long: `Converts the .sml and .xml files written by Moveslink2 to GPX files
that can be uploaded to Strava and friends. One file named after the local
start time of the move is written per export.`,
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig(cmd, v, cfgFile)
			bindFlags(cmd, v)
			setupLogger(cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return convertFiles(args)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.moves.yml)")
	cmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format (json, text)")
	cmd.PersistentFlags().StringVarP(&config.OutputDir,
		"output-dir",
		"o",
		".",
		"directory receiving the gpx files")
	cmd.PersistentFlags().StringVar(&config.Creator,
		"creator",
		"",
		"creator attribute of the gpx files (default \"Movescount - http://www.movescount.com\")")
	cmd.PersistentFlags().StringVar(&config.TrackName,
		"track-name",
		"",
		"name of the track in the gpx files (default \"Move\")")

	cmd.Flags().BoolVar(&config.KeepGoing,
		"keep-going",
		false,
		"convert the remaining files when one fails")

	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewSummaryCmd())
	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	err := NewRootCmd().Execute()
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".moves")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", v.ConfigFileUsed())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --log-level to MOVES_LOG_LEVEL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not bind env var %s: %v\n", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if s, ok := val.([]any); ok {
				val = strings.Join(lo.Map(s, func(x any, _ int) string { return fmt.Sprint(x) }), ",")
			}
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not set flag value for %s: %v\n", f.Name, err)
			}
		}
	})
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLogger(w io.Writer) {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(w,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(w,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
}

func newConverter() *convert.Converter {
	var writerOpts []gpx.Option
	if config.Creator != "" {
		writerOpts = append(writerOpts, gpx.WithCreator(config.Creator))
	}
	if config.TrackName != "" {
		writerOpts = append(writerOpts, gpx.WithTrackName(config.TrackName))
	}
	return convert.New(
		convert.WithOutputDir(config.OutputDir),
		convert.WithKeepGoing(config.KeepGoing),
		convert.WithLogger(log.Default()),
		convert.WithWriterOptions(writerOpts...),
	)
}

func convertFiles(paths []string) error {
	_, err := newConverter().ConvertFiles(paths)
	return err
}
