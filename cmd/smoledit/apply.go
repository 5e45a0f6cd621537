package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/smol-dev/smoledit/pkg/edit"
	"github.com/smol-dev/smoledit/pkg/log"
)

func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <edits.json>",
		Short: "apply an edit batch (use - to read from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runApply(rt, args[0])
		},
	}
}

func runApply(rt *runtime, source string) error {
	var data []byte
	var err error
	if source == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return errors.Errorf("reading edit batch: %w", err)
	}

	batch, err := edit.ParseBatch(data)
	if err != nil {
		return err
	}
	if len(batch.Edits) == 0 {
		rt.logger.Warning("Batch contains no edits.")
		return nil
	}

	rt.logger.Header(fmt.Sprintf("applying %d edit(s) to %d file(s)", len(batch.Edits), len(batch.Paths())))

	eng, err := rt.engine()
	if err != nil {
		return err
	}
	report, err := eng.Apply(rt.ctx, batch)
	if err != nil {
		return err
	}

	rt.logger.Newline()
	for _, outcome := range report.Outcomes {
		line := log.FileOutcome{Path: outcome.Path}
		switch {
		case outcome.Applied():
			line.Applied = true
		case outcome.Failed():
			line.Failed = true
			line.Reason = outcome.Reason.Error()
		default:
			line.Skipped = true
			line.Reason = outcome.Reason.Error()
		}
		rt.logger.LogFileOutcome(rt.ctx, line)
	}
	rt.logger.Newline()

	if report.BackupDir != "" {
		rt.logger.Infof("backup: %s", report.BackupDir)
	}
	if failed := report.FailedCount(); failed > 0 {
		return errors.Errorf("%d file(s) failed", failed)
	}
	rt.logger.Success(fmt.Sprintf("%d file(s) applied, %d skipped",
		report.AppliedCount(), len(report.Outcomes)-report.AppliedCount()))
	return nil
}
