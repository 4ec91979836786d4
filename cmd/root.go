// Package cmd holds the command line entry points of the service.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "bjj-tournament",
	Short:         "Registration service for a jiu-jitsu tournament",
	Long:          `Serves the public registration site and the admin console API for adults and minors registrations.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
