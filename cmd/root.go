package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/zMap/cmd/mm"
	"github.com/spf13/cobra"
)

const (
	Version = "1.2.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "zmap",
		Short: "expiring multimap on top of Redis sorted sets",
		Long: fmt.Sprintf(`zMap (v%s)

A multimap with per-value expiration, backed by Redis sorted sets.
Each key holds a set of values, every value silently disappears once
its time-to-live has elapsed and idle keys vanish on their own.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of zMap",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zMap v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(mm.MultiMapCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
