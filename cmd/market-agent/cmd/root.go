package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"

	// serverURL is where the client commands find a running server.
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "market-agent",
	Short: "Multi-agent market monitoring and reporting",
	Long: `market-agent runs a pipeline of LLM-backed agents that collect market
data, write a daily report, analyze it in depth and draft social posts
that wait for human approval before publication.

Run "market-agent serve" to start the HTTP server, then drive workflows
with the workflow and agent subcommands (or the HTTP API directly).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080",
		"base URL of a running market-agent server")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("market-agent {{.Version}}\n")
}
