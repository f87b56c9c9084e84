package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"gradewatch/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	dataDir    string
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gradewatch",
	Short: "Watch a grades portal and post every new grade to a webhook",
	Long: `gradewatch logs into a grades portal behind an SSO gateway, scans every
reporting period of the results view and posts each grade it has never
reported before to a Discord webhook.

It keeps two files in the data directory:
  - grades_history.json  every grade already reported
  - auth_state.json      the browser session (cookies + local storage)

Configuration comes from flags, environment variables (HP_URL,
DISCORD_WEBHOOK_URL, HP_USERNAME, HP_PASSWORD, ...), a .env file and an
optional YAML file, in that order of priority.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColor(false)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.gradewatch.yaml or ~/.config/gradewatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding history and session files")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.SetVersionTemplate(`gradewatch {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
