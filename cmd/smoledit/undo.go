package main

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/smol-dev/smoledit/pkg/backup"
	"github.com/smol-dev/smoledit/pkg/log"
)

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "restore the files of the most recently applied batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runUndo(rt)
		},
	}
}

func runUndo(rt *runtime) error {
	// A fresh process starts with an empty undo stack; seed it from the most
	// recent on-disk manifest so undo works across invocations.
	manifest, err := rt.store.LoadLatest()
	if err != nil {
		if errors.Is(err, backup.ErrUndoNotAvailable) {
			rt.logger.Warning("Nothing to undo.")
			return nil
		}
		return err
	}

	rt.undo.Record(manifest.BatchID, manifest.Records)
	records, err := rt.undo.UndoLast(rt.ctx)
	if err != nil {
		return errors.Errorf("undoing batch %s: %w", manifest.BatchID, err)
	}
	if err := manifest.MarkUndone(); err != nil {
		return err
	}

	rt.logger.Newline()
	for _, rec := range records {
		rt.logger.LogFileOutcome(rt.ctx, log.FileOutcome{Path: rec.RelPath, Restored: true})
	}
	rt.logger.Newline()
	rt.logger.Success("batch restored")
	return nil
}
