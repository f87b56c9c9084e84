package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gradewatch/pkg/auth"
	"gradewatch/pkg/config"
	"gradewatch/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage gradewatch configuration.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - .env file
  - Configuration file, then its .local override
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with every option at its default",
	Long: `Write a configuration file with every option at its default value.

The file is created as '.gradewatch.yaml' in the current directory unless
--config names another path. Secrets (password, session seed, passphrase)
are never written; keep them in the environment.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the configuration is complete",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".gradewatch.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	cfg := config.DefaultConfig()
	cfg.Portal.URL = "https://portal.example.edu/hp/etudiant"
	cfg.Webhook.URL = "https://discord.com/api/webhooks/ID/TOKEN"
	if err := cfg.Save(path); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Set portal.url and webhook.url")
	fmt.Println("2. Export HP_USERNAME and HP_PASSWORD, or run 'gradewatch auth login'")
	fmt.Println("3. Run 'gradewatch config validate', then 'gradewatch run --once'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(configFile, globalFlags(nil))
	if err != nil {
		return err
	}

	display := *cfg
	masked := auth.SanitizeAccount(&auth.Account{Username: cfg.Portal.Username, Password: cfg.Portal.Password})
	display.Portal.Password = masked.Password
	display.Email.Password = auth.SanitizeAccount(&auth.Account{Password: cfg.Email.Password}).Password
	if display.Webhook.URL != "" {
		display.Webhook.URL = maskWebhook(display.Webhook.URL)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(configFile, globalFlags(nil))
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration is invalid", err)
		return errors.New("configuration validation failed")
	}

	if warnings := cfg.Warnings(); len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Portal:         %s\n", cfg.Portal.URL)
	fmt.Printf("  Interval:       %s\n", cfg.Schedule.Interval)
	fmt.Printf("  Headless:       %t\n", cfg.Browser.Headless)
	fmt.Printf("  History file:   %s\n", cfg.HistoryPath())
	fmt.Printf("  Session file:   %s\n", cfg.SessionPath())
	fmt.Printf("  Credentials:    %t\n", cfg.HasCredentials())
	fmt.Printf("  E-mail mirror:  %t\n", cfg.Email.Enabled())
	fmt.Printf("  Log level:      %s (%s)\n", cfg.Logging.Level, cfg.Logging.Timezone)
	return nil
}

// maskWebhook hides the token part of a webhook URL
func maskWebhook(url string) string {
	if len(url) <= 12 {
		return "***"
	}
	return url[:len(url)-12] + "************"
}
