package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sylphie-project/sylphiedb"
)

var (
	kvStoreName string
	kvTransient bool
)

var kvCmd = &cobra.Command{
	Use:   "kv",
	Short: "Read and write a named keyed store with string keys and values",
}

func openKVStore(ctx context.Context) (*sylphiedb.Database, *sylphiedb.KVStore[string, string], error) {
	database, mgr, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}
	class := sylphiedb.Persistent
	if kvTransient {
		class = sylphiedb.Transient
	}
	store, err := sylphiedb.NewKVStore(ctx, database, mgr, kvStoreName, class,
		sylphiedb.StringKey{}, sylphiedb.StringValue{})
	if err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	return database, store, nil
}

var kvGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, store, err := openKVStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		value, ok, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("key %q not found in store %s", args[0], kvStoreName)
		}
		fmt.Println(value)
		return nil
	},
}

var kvSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value under a key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, store, err := openKVStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		return store.Set(ctx, args[0], args[1])
	},
}

var kvDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, store, err := openKVStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		return store.Delete(ctx, args[0])
	},
}

func init() {
	kvCmd.PersistentFlags().StringVar(&kvStoreName, "store", "default", "name of the keyed store")
	kvCmd.PersistentFlags().BoolVar(&kvTransient, "transient", false, "operate on the transient scope")
	kvCmd.AddCommand(kvGetCmd)
	kvCmd.AddCommand(kvSetCmd)
	kvCmd.AddCommand(kvDeleteCmd)
}
