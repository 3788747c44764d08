package main

import (
	"fmt"

	"github.com/codey22/notespace/internal/note"

	"github.com/spf13/cobra"
)

func newSlugCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "slug [candidate...]",
		Short: "Generate slugs, or check candidates against the slug rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				var bad int
				for _, s := range args {
					verdict := "valid"
					if !note.ValidSlug(s) {
						verdict = "invalid"
						bad++
					}
					fmt.Fprintf(out, "%s\t%s\n", s, verdict)
				}
				if bad > 0 {
					return fmt.Errorf("%d of %d slugs invalid", bad, len(args))
				}
				return nil
			}

			if count < 1 {
				return fmt.Errorf("count must be positive")
			}
			for i := 0; i < count; i++ {
				s, err := note.GenerateSlug()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of slugs to generate")
	return cmd
}
