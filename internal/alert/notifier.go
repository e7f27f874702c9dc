package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"gatewaymon/internal/config"
)

// EmailNotifier delivers alerts over SMTP.
type EmailNotifier struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
	To       []string
}

func NewEmailNotifier(host string, port int, username, password, from string, to []string) *EmailNotifier {
	return &EmailNotifier{
		SMTPHost: host,
		SMTPPort: port,
		Username: username,
		Password: password,
		From:     from,
		To:       to,
	}
}

func (n *EmailNotifier) Send(title, message string) error {
	if len(n.To) == 0 {
		return fmt.Errorf("email notifier has no recipients")
	}

	body := fmt.Sprintf("Subject: %s\r\nTo: %s\r\n\r\n%s\r\n\r\nSent at %s",
		title,
		strings.Join(n.To, ", "),
		message,
		time.Now().Format("2006-01-02 15:04:05"),
	)

	var auth smtp.Auth
	if n.Username != "" {
		auth = smtp.PlainAuth("", n.Username, n.Password, n.SMTPHost)
	}

	err := smtp.SendMail(
		fmt.Sprintf("%s:%d", n.SMTPHost, n.SMTPPort),
		auth,
		n.From,
		n.To,
		[]byte(body),
	)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// WebhookNotifier posts alerts as JSON to a configured URL.
type WebhookNotifier struct {
	URL     string
	Headers map[string]string
	client  *http.Client
}

func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:     url,
		Headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (n *WebhookNotifier) Send(title, message string) error {
	payload := map[string]interface{}{
		"title":     title,
		"message":   message,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status: %d", resp.StatusCode)
	}
	return nil
}

// NotifiersFromConfig builds the delivery channels enabled in configuration.
func NotifiersFromConfig(cfg config.AlertConfig, recipients []string) []Notifier {
	var notifiers []Notifier

	if cfg.SMTPHost != "" && len(recipients) > 0 {
		notifiers = append(notifiers, NewEmailNotifier(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, recipients))
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, NewWebhookNotifier(cfg.WebhookURL, nil))
	}

	return notifiers
}
