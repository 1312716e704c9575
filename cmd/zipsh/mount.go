package main

import (
	"os"
	"os/signal"
	"syscall"

	zipfs "zipsh/internal/fs"

	"github.com/spf13/cobra"
)

func newMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount <config.json> <mountpoint>",
		Short: "Serve the archive's contents as a read-only FUSE filesystem",
		Long: `mount unpacks the configured archive and exposes it read-only at the
given mount point until interrupted. The archive itself is never rewritten.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, ws, err := openWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			defer ws.Discard()

			if err := zipfs.NewFS(ws).Serve(ctx, args[1]); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			logger.Info("Clean shutdown complete")
			return nil
		},
	}
}
