package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/pkg/config"
)

const sendEndpoint = "/v3/mail/send"

const reportHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h1>{{.MeetingTitle}}</h1>
  <p><strong>Date:</strong> {{.Date}}</p>
  {{- if .Attendees}}
  <p><strong>Attendees:</strong> {{join .Attendees ", "}}</p>
  {{- end}}
  <h2>Summary</h2>
  <p>{{.Summary}}</p>
  {{- if .KeyTopics}}
  <h2>Key Topics</h2>
  <ul>
  {{- range .KeyTopics}}
    <li>{{.}}</li>
  {{- end}}
  </ul>
  {{- end}}
  <h2>Action Items</h2>
  {{- if .ActionItems}}
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Task</th><th align="left">Assignee</th><th align="left">Deadline</th><th align="left">Priority</th></tr>
    {{- range .ActionItems}}
    <tr><td>{{.Task}}</td><td>{{.AssigneeOr "Unassigned"}}</td><td>{{if .Deadline}}{{deref .Deadline}}{{else}}-{{end}}</td><td>{{.Priority}}</td></tr>
    {{- end}}
  </table>
  {{- else}}
  <p>No action items.</p>
  {{- end}}
  {{- if .DecisionsMade}}
  <h2>Decisions</h2>
  <ul>
  {{- range .DecisionsMade}}
    <li>{{.}}</li>
  {{- end}}
  </ul>
  {{- end}}
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": strings.Join,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).Parse(reportHTML))

// SendGridNotifier emails reports through the SendGrid v3 API
type SendGridNotifier struct {
	apiKey    string
	host      string
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewSendGridNotifier creates a notifier from cfg
func NewSendGridNotifier(cfg *config.SendGridConfig, logger *zap.Logger) (*SendGridNotifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is required")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("SENDGRID_FROM_EMAIL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGridNotifier{
		apiKey:    cfg.APIKey,
		host:      strings.TrimRight(cfg.BaseURL, "/"),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}, nil
}

// Send delivers the report to every recipient in a single message
func (n *SendGridNotifier) Send(ctx context.Context, meetingID string, report entities.MeetingReport, recipients []string) (*entities.NotifyResult, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients")
	}

	html, err := RenderHTML(report)
	if err != nil {
		return nil, err
	}

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(n.fromName, n.fromEmail))
	message.Subject = Subject(report)

	p := mail.NewPersonalization()
	for _, r := range recipients {
		p.AddTos(mail.NewEmail("", r))
	}
	message.AddPersonalizations(p)
	message.AddContent(
		mail.NewContent("text/plain", RenderText(report)),
		mail.NewContent("text/html", html),
	)

	// the client keeps the request body, so every send gets its own
	request := sendgrid.GetRequest(n.apiKey, sendEndpoint, n.host)
	request.Method = "POST"
	client := &sendgrid.Client{Request: request}

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sendgrid rejected message: status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}

	result := &entities.NotifyResult{
		MeetingID:  meetingID,
		Recipients: append([]string(nil), recipients...),
		StatusCode: resp.StatusCode,
		SentAt:     time.Now().UTC(),
	}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		result.MessageID = ids[0]
	}

	n.logger.Info("📧 Report email accepted",
		zap.String("meeting_id", meetingID),
		zap.Int("recipients", len(recipients)),
		zap.String("message_id", result.MessageID),
	)
	return result, nil
}

// Subject returns the email subject for a report
func Subject(report entities.MeetingReport) string {
	return fmt.Sprintf("Meeting Report: %s (%s)", report.MeetingTitle, report.Date)
}

// RenderHTML renders the report as an HTML email body
func RenderHTML(report entities.MeetingReport) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("failed to render report email: %w", err)
	}
	return buf.String(), nil
}

// RenderText renders the plain-text alternative of the email
func RenderText(report entities.MeetingReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nDate: %s\n", report.MeetingTitle, report.Date)
	if len(report.Attendees) > 0 {
		fmt.Fprintf(&b, "Attendees: %s\n", strings.Join(report.Attendees, ", "))
	}
	fmt.Fprintf(&b, "\nSummary\n%s\n", report.Summary)
	if len(report.KeyTopics) > 0 {
		b.WriteString("\nKey Topics\n")
		for _, topic := range report.KeyTopics {
			fmt.Fprintf(&b, "- %s\n", topic)
		}
	}
	b.WriteString("\nAction Items\n")
	if len(report.ActionItems) == 0 {
		b.WriteString("- none\n")
	}
	for _, item := range report.ActionItems {
		fmt.Fprintf(&b, "- [%s] %s (%s", strings.ToUpper(string(item.Priority)), item.Task, item.AssigneeOr("Unassigned"))
		if item.Deadline != nil {
			fmt.Fprintf(&b, ", due %s", *item.Deadline)
		}
		b.WriteString(")\n")
	}
	if len(report.DecisionsMade) > 0 {
		b.WriteString("\nDecisions\n")
		for _, d := range report.DecisionsMade {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	return b.String()
}
