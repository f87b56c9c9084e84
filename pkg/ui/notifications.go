package ui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"gradewatch/pkg/models"
	"gradewatch/pkg/notify"
)

// NotificationSender shows one desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name=gradewatch", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("gradewatch").Show($toast)
	`, xmlEscape(title), xmlEscape(message))

	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}

// PlatformSender returns the sender for the current OS, or nil
func PlatformSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	case "windows":
		return &WindowsNotificationSender{}
	default:
		return nil
	}
}

// DesktopNotifier mirrors grade and error notifications as desktop popups
type DesktopNotifier struct {
	sender NotificationSender
}

var _ notify.Notifier = (*DesktopNotifier)(nil)

// NewDesktopNotifier returns nil when sender is nil so the result can be
// passed straight to notify.Multi.
func NewDesktopNotifier(sender NotificationSender) notify.Notifier {
	if sender == nil {
		return nil
	}
	return &DesktopNotifier{sender: sender}
}

// NotifyGrade shows the subject and grade. Errors are ignored as the
// webhook remains the notification of record.
func (n *DesktopNotifier) NotifyGrade(_ context.Context, rec models.GradeRecord) {
	message := fmt.Sprintf("%s : %s (%s)", rec.Subject, rec.Grade, rec.Date)
	_ = n.sender.Send("Nouvelle note", message)
}

// NotifyError shows a cycle failure
func (n *DesktopNotifier) NotifyError(_ context.Context, message string) {
	_ = n.sender.Send("gradewatch : erreur", message)
}
