package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gradewatch/pkg/models"
	"gradewatch/pkg/notify"
	"gradewatch/pkg/ui"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Webhook utilities",
}

var notifyTestError bool

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Post a sample message to the webhook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false, nil)
		if err != nil {
			return err
		}
		if a.cfg.Webhook.URL == "" {
			return errors.New("webhook URL is required (DISCORD_WEBHOOK_URL or --config)")
		}

		d := notify.NewDiscord(&a.cfg.Webhook, a.log)
		branding := notify.Branding{
			Username:      a.cfg.Webhook.Username,
			ErrorUsername: a.cfg.Webhook.ErrorUsername,
			Footer:        a.cfg.Webhook.Footer,
			ErrorFooter:   a.cfg.Webhook.ErrorFooter,
		}

		kind, payload := "test", notify.GradePayload(models.GradeRecord{
			Subject:      "Test gradewatch",
			Date:         "aujourd'hui",
			Grade:        "20/20",
			ClassAverage: models.NoClassAverage,
		}, branding)
		if notifyTestError {
			kind, payload = "test-error", notify.ErrorPayload("Message de test envoyé par gradewatch", branding)
		}

		status, err := d.Send(cmd.Context(), kind, payload)
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Webhook answered %d", status))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)

	notifyTestCmd.Flags().BoolVar(&notifyTestError, "error", false, "send the error message layout instead")
}
