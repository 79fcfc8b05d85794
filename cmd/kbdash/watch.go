package main

import (
	"context"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/foundry-zero/kbdash/internal/logger"
)

func newWatchCmd(stdout io.Writer) *cobra.Command {
	var flags compileFlags
	cmd := &cobra.Command{
		Use:   "watch file.yaml",
		Short: "Recompile a dashboard file every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logger.New().With("component", "watch")
			path := args[0]
			recompile := func() {
				if err := compileFile(path, flags, stdout); err != nil {
					log.Error("compile failed", "file", path, "err", err)
					return
				}
				log.Info("compiled", "file", path)
			}

			recompile()
			if err := watchFile(ctx, path, log, recompile); err != nil {
				return exitWith(2, err)
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

// watchFile calls onChange each time path is written or replaced until ctx
// is done. The parent directory is watched so that editors that save by
// rename are still seen.
func watchFile(ctx context.Context, path string, log *logger.Logger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create file watcher")
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}
	log.Debug("watching", "file", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			log.Info("dashboard/fileChanged", "file", abs, "op", ev.Op.String())
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		}
	}
}
