package commands

import (
	"github.com/spf13/cobra"
)

var (
	// addr is the listen address for the web server.
	addr string

	// dbPath is the path to the SQLite diary database.
	dbPath string
)

// rootCmd is the base command for the daemon.
var rootCmd = &cobra.Command{
	Use:   "elucidated",
	Short: "Elucidate dream interpretation web server",
	Long: `Elucidated serves the Elucidate dream questionnaire: a six-step
wizard that collects a dream narrative, sends it to a text-generation
service, and renders the interpretation.

Configuration comes from flags plus the environment:

  ELUCIDATE_OPENAI_API_KEY  API credential for the generation service
                            (falls back to OPENAI_API_KEY)
  ELUCIDATE_SECRET_KEY      secret for session cookie signing`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&addr, "addr", ":8080",
		"Web server listen address",
	)
	rootCmd.PersistentFlags().StringVar(
		&dbPath, "db", "",
		"Path to SQLite diary database (default: ~/.elucidate/elucidate.db)",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
