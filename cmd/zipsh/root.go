package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"zipsh/internal/archive"
	"zipsh/internal/config"
	"zipsh/internal/logging"
	"zipsh/internal/shell"
	"zipsh/internal/state"

	"github.com/spf13/cobra"
)

// Version is set via -ldflags.
var Version = "dev"

var (
	logger = logging.GetLogger()

	// closeWorkspace repacks the archive when a session ends.
	closeWorkspace = (*archive.Workspace).Close
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "zipsh <config.json>",
		Short: "A shell over the contents of a zip archive",
		Long: `zipsh unpacks the archive named in the configuration file and offers
ls, cd, cat, echo and exit on its contents. Changes are packed back into
the archive when the session ends.

The configuration file is JSON with three fields:
  vfs_path        path of the zip archive
  log_path        CSV file receiving one row per executed command
  startup_script  script inside the archive run before the prompt`,
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				logger.SetLevel(logging.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runShell(cmd, args[0])
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
	cmd.AddCommand(newMountCmd())
	return cmd
}

// openWorkspace loads the configuration and unpacks its archive. An
// invalid archive is reported on stdout the way the shell reports it.
func openWorkspace(cmd *cobra.Command, configPath string) (*config.Config, *archive.Workspace, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, &ExitError{Code: 1, Err: err}
	}

	ws, err := archive.Open(cfg.VFSPath)
	if err != nil {
		if errors.Is(err, archive.ErrInvalidArchive) {
			logger.Debug("Archive rejected: %v", err)
			fmt.Fprintln(cmd.OutOrStdout(), "Invalid VFS archive.")
			return nil, nil, &ExitError{Code: 1}
		}
		return nil, nil, &ExitError{Code: 1, Err: err}
	}
	return cfg, ws, nil
}

func runShell(cmd *cobra.Command, configPath string) (err error) {
	// Stays registered until the archive is repacked.
	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, ws, err := openWorkspace(cmd, configPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeWorkspace(ws); closeErr != nil && err == nil {
			err = &ExitError{Code: 1, Err: fmt.Errorf("saving archive: %w", closeErr)}
		}
	}()

	journal, err := state.NewJournal(cfg.LogPath)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	engine := shell.NewEngine(shell.Config{
		Index:   ws.Index(),
		Files:   ws.Scratch(),
		Reindex: ws.Refresh,
		Journal: journal,
		Output:  cmd.OutOrStdout(),
	})

	if engine.RunStartup(cfg.StartupScript) {
		return nil
	}
	return engine.Interact(ctx, cmd.InOrStdin())
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
