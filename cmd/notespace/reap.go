package main

import (
	"fmt"

	"github.com/codey22/notespace/internal/db"
	"github.com/codey22/notespace/internal/jobs"
	"github.com/codey22/notespace/internal/note"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newReapCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "reap",
		Short: "Delete expired empty notes once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, gdb, err := openStore(v)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close(gdb)
				_ = log.Sync()
			}()

			reaper := &jobs.Reaper{
				ID:    "reap-once",
				Notes: &note.Service{DB: gdb},
				TTL:   cfg.NoteTTL,
				Log:   log,
			}
			n, err := reaper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d notes\n", n)
			return nil
		},
	}
}
