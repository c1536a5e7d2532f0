package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ctm/moves-still-count/internal/config"
	"github.com/ctm/moves-still-count/internal/gpx"
)

// NewSummaryCmd creates the summary command, reading back gpx files.
func NewSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary file...",
		Short: "print a summary of converted gpx files",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			switch config.Format {
			case "text", "yaml":
				return nil
			}
			return fmt.Errorf("unknown format %q", config.Format)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSummaries(cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().StringVar(&config.Format,
		"format",
		"text",
		"output format (text, yaml)")
	return cmd
}

type fileSummary struct {
	File        string `yaml:"file"`
	gpx.Summary `yaml:",inline"`
}

func summarize(path string) (fileSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileSummary{}, err
	}
	defer f.Close()

	g, err := gpx.Unmarshal(f)
	if err != nil {
		return fileSummary{}, fmt.Errorf("%s: %w", path, err)
	}
	return fileSummary{File: path, Summary: gpx.Summarize(&g)}, nil
}

func printSummaries(w io.Writer, paths []string) error {
	summaries := make([]fileSummary, 0, len(paths))
	for _, path := range paths {
		s, err := summarize(path)
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
	}

	if config.Format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summaries); err != nil {
			return err
		}
		return enc.Close()
	}

	for _, s := range summaries {
		fmt.Fprintf(w, "%s\n", s.File)
		fmt.Fprintf(w, "  points:   %d\n", s.Points)
		if s.Points == 0 {
			continue
		}
		fmt.Fprintf(w, "  start:    %s\n", s.Start.Format(time.RFC3339))
		fmt.Fprintf(w, "  end:      %s\n", s.End.Format(time.RFC3339))
		fmt.Fprintf(w, "  duration: %s\n", s.Duration)
		if s.MaxHeartRate > 0 {
			fmt.Fprintf(w, "  hr:       %d-%d bpm\n", s.MinHeartRate, s.MaxHeartRate)
		}
		if s.Distance != "" {
			fmt.Fprintf(w, "  distance: %s m\n", s.Distance)
		}
	}
	return nil
}
