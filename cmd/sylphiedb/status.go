package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracked schema version of every migration set, per scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, mgr, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		ctx := cmd.Context()
		for _, transient := range []bool{false, true} {
			scope := "persistent"
			if transient {
				scope = "transient"
			}
			rows, err := mgr.ListTracking(ctx, transient)
			if err != nil {
				return err
			}
			fmt.Printf("%s scope:\n", scope)
			if len(rows) == 0 {
				fmt.Println("  (no migration sets tracked)")
				continue
			}
			for _, r := range rows {
				fmt.Printf("  %-48s version %d\n", r.Name, r.Version)
			}
		}
		return nil
	},
}
