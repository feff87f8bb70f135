package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skvithalani/dotty/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the pickled-unit disk cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenPickleCache("dotty")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache cleaned")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
}
