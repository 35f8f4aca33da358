package notification

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"civictrack/config"
)

// Kind identifies the lifecycle event a notification announces.
type Kind string

const (
	KindSubmitted     Kind = "complaint_submitted"
	KindAssigned      Kind = "complaint_assigned"
	KindResolved      Kind = "complaint_resolved"
	KindStatusChanged Kind = "status_changed"
)

// Event is one outbound notification. Data carries the template fields:
// complaint_id, category, status, department and similar display values.
type Event struct {
	Kind      Kind
	Recipient string
	Data      map[string]string
}

// Notifier delivers lifecycle notifications. Delivery is strictly
// fire-and-forget: no lifecycle operation ever fails because a notification
// could not be sent, so Notify returns nothing.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// EmailNotifier sends lifecycle emails over SMTP. When disabled it only
// logs, which is also the development default.
type EmailNotifier struct {
	cfg config.EmailConfig
}

// NewEmailNotifier creates an email notifier from configuration.
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// Notify formats and sends the event. The SMTP exchange runs in its own
// goroutine; failures are logged and dropped.
func (n *EmailNotifier) Notify(ctx context.Context, e Event) {
	if e.Recipient == "" {
		return
	}
	subject, body := render(e)
	if !n.cfg.Enabled {
		log.Printf("[notify] email disabled, would send %q to %s: %s", e.Kind, e.Recipient, subject)
		return
	}
	go func() {
		if err := n.send(e.Recipient, subject, body); err != nil {
			log.Printf("[notify] sending %q to %s failed: %v", e.Kind, e.Recipient, err)
		}
	}()
}

func (n *EmailNotifier) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPServer, n.cfg.SMTPPort)
	auth := smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPassword, n.cfg.SMTPServer)
	msg := strings.Join([]string{
		"From: " + n.cfg.SMTPUser,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(addr, auth, n.cfg.SMTPUser, []string{to}, []byte(msg))
}

func render(e Event) (subject, body string) {
	code := e.Data["complaint_id"]
	switch e.Kind {
	case KindSubmitted:
		subject = fmt.Sprintf("Complaint %s registered", code)
		body = fmt.Sprintf(
			"Your complaint %s (%s) has been registered and routed to %s.\nExpected resolution by %s.",
			code, e.Data["category"], e.Data["department"], e.Data["sla_deadline"])
	case KindAssigned:
		subject = fmt.Sprintf("Complaint %s assigned to you", code)
		body = fmt.Sprintf(
			"Complaint %s (%s) at %s has been assigned to you.\nResolution due by %s.",
			code, e.Data["category"], e.Data["location"], e.Data["sla_deadline"])
	case KindResolved:
		subject = fmt.Sprintf("Complaint %s resolved", code)
		body = fmt.Sprintf(
			"Your complaint %s has been resolved. Please log in to review the resolution and share your feedback.",
			code)
	case KindStatusChanged:
		subject = fmt.Sprintf("Complaint %s update", code)
		body = fmt.Sprintf(
			"The status of your complaint %s changed to %s.",
			code, e.Data["status"])
	default:
		subject = fmt.Sprintf("Complaint %s update", code)
		body = fmt.Sprintf("There is an update on your complaint %s.", code)
	}
	return subject, body
}

// LogNotifier writes every event to the application log. Used in tests and
// as a stand-in when no mail transport is configured.
type LogNotifier struct{}

// Notify logs the event.
func (LogNotifier) Notify(_ context.Context, e Event) {
	log.Printf("[notify] %s -> %s (%v)", e.Kind, e.Recipient, e.Data)
}
