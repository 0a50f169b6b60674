package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sylphie-project/sylphiedb"
)

var newIDCmd = &cobra.Command{
	Use:   "new-id",
	Short: "Generate a fresh unique id for a new migration set",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sylphiedb.NewMigrationSetID())
		return nil
	},
}
