package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:               "pingcard",
	Short:             "pingcard keeps a live server ping status card published to a chat channel.",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: prepareCommand,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, renderCmd, deleteCardCmd, migrateCmd)
}
