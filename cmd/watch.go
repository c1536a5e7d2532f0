package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctm/moves-still-count/internal/config"
	"github.com/ctm/moves-still-count/internal/watch"
	"github.com/ctm/moves-still-count/log"
)

// NewWatchCmd creates the watch command, converting exports as they
// are written into a directory until interrupted.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch dir",
		Short: "convert exports as Moveslink2 writes them into dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watch.New(args[0], newConverter(),
				watch.WithExtensions(config.Extensions...),
				watch.WithSettleTime(config.SettleTime),
				watch.WithLogger(log.Default().Named("watch")),
			)
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringSliceVar(&config.Extensions,
		"extensions",
		[]string{".sml", ".xml"},
		"file extensions to convert")
	cmd.Flags().DurationVar(&config.SettleTime,
		"settle",
		2*time.Second,
		"time a file must stay unchanged before it is converted")
	return cmd
}
