package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sylphie-project/sylphiedb"
	"github.com/sylphie-project/sylphiedb/internal/common"
)

var rootCmd = &cobra.Command{
	Use:   "sylphiedb",
	Short: "Inspect and operate a sylphiedb database pair",
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", "")
	v.SetDefault("db", "sylphie.db")
	v.SetDefault("transient_db", "")

	// Environment variables support: SYLPHIEDB_CONFIG, SYLPHIEDB_DB, ...
	v.SetEnvPrefix("SYLPHIEDB")
	v.AutomaticEnv()

	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to a yaml config file")
	rootCmd.PersistentFlags().String("db", v.GetString("db"), "path to the persistent database file")
	rootCmd.PersistentFlags().String("transient-db", v.GetString("transient_db"), "path to the transient database file (default a scratch file removed on close)")

	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = v.BindPFlag("transient_db", rootCmd.PersistentFlags().Lookup("transient-db"))

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(kvCmd)
	rootCmd.AddCommand(newIDCmd)
}

// openDatabase resolves the effective configuration and opens the database
// pair. Flags override the config file.
func openDatabase() (*sylphiedb.Database, *sylphiedb.MigrationManager, error) {
	v := viper.GetViper()

	var doc ConfigDoc
	if path := strings.TrimSpace(v.GetString("config")); path != "" {
		if err := doc.Load(path); err != nil {
			return nil, nil, err
		}
		doc.ConfigureLogging()
	}
	if doc.Database.Path == "" {
		doc.Database.Path = v.GetString("db")
	}
	if doc.Database.TransientPath == "" {
		doc.Database.TransientPath = v.GetString("transient_db")
	}

	return sylphiedb.Open(doc.Database)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		common.LogError("command execution failed", err)
		os.Exit(1)
	}
}
