package main

import (
	"github.com/spf13/cobra"
)

func newBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "list recorded batch backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runBackups(rt)
		},
	}
}

func runBackups(rt *runtime) error {
	manifests, err := rt.store.List()
	if err != nil {
		return err
	}
	if len(manifests) == 0 {
		rt.logger.Warning("No backups recorded.")
		return nil
	}

	for _, m := range manifests {
		status := ""
		if m.Undone {
			status = " (undone)"
		}
		rt.logger.Infof("%s  %s  %d file(s)%s",
			m.CreatedAt.Format("2006-01-02 15:04:05"), m.BatchID, len(m.Records), status)
		for _, rec := range m.Records {
			rt.logger.Infof("    %s", rec.RelPath)
		}
	}
	return nil
}
