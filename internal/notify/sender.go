package notify

import (
	"bytes"         // Request bodies
	"context"       // Request scoped context
	"encoding/json" // Payload encoding
	"fmt"           // Error formatting
	"io"            // Response reading
	"net/http"      // HTTP client
	"strings"       // String manipulation
	"time"          // Client timeout

	"crowdfunding/internal/config" // Application configuration

	mailjet "github.com/mailjet/mailjet-apiv3-go" // Mailjet API client
	"github.com/sirupsen/logrus"                  // Logging library
)

// senderName is the display name used for outbound mail
const senderName = "Crowdfunding Service"

// Sender delivers a job to its recipients
type Sender interface {
	Send(ctx context.Context, job Job) error
}

// NewSender picks Mailjet when its keys are configured, then the HTTP mail
// API, and falls back to logging the message.
func NewSender(cfg *config.Config) Sender {
	switch {
	case cfg.MailjetPublicKey != "" && cfg.MailjetPrivateKey != "":
		return NewMailjetSender(cfg.MailjetPublicKey, cfg.MailjetPrivateKey, cfg.FromEmail)
	case cfg.MailAPIURL != "":
		return NewHTTPSender(cfg.MailAPIURL, cfg.MailAPIKey, cfg.FromEmail)
	default:
		return LogSender{}
	}
}

// DeliveryError is a non-success response from the mail API
type DeliveryError struct {
	Recipient string
	Status    int
	Body      string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("mail api rejected message to %s: status %d: %s", e.Recipient, e.Status, e.Body)
}

// HTTPSender posts each message as JSON to a transactional mail API
type HTTPSender struct {
	url    string
	apiKey string
	from   string
	client *http.Client
}

// NewHTTPSender creates a sender for the API at url
func NewHTTPSender(url, apiKey, from string) *HTTPSender {
	return &HTTPSender{
		url:    url,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type httpMessage struct {
	Name    string `json:"name"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	To      string `json:"to"`
	Text    string `json:"text"`
}

// Send posts one request per recipient and stops at the first failure
func (s *HTTPSender) Send(ctx context.Context, job Job) error {
	for _, to := range job.Recipients {
		b, err := json.Marshal(httpMessage{
			Name:    senderName,
			From:    s.from,
			Subject: job.Subject,
			To:      to,
			Text:    job.Message,
		})
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", s.apiKey)
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("send to %s: %w", to, err)
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &DeliveryError{Recipient: to, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
	}
	return nil
}

// MailjetSender delivers through the Mailjet v3.1 send API
type MailjetSender struct {
	client *mailjet.Client
	from   string
}

// NewMailjetSender creates a sender with the given API keys
func NewMailjetSender(publicKey, privateKey, from string) *MailjetSender {
	return &MailjetSender{
		client: mailjet.NewMailjetClient(publicKey, privateKey),
		from:   from,
	}
}

// Send sends a single message addressed to every recipient
func (s *MailjetSender) Send(ctx context.Context, job Job) error {
	to := make(mailjet.RecipientsV31, 0, len(job.Recipients))
	for _, r := range job.Recipients {
		to = append(to, mailjet.RecipientV31{Email: r})
	}
	info := []mailjet.InfoMessagesV31{{
		From:     &mailjet.RecipientV31{Email: s.from, Name: senderName},
		To:       &to,
		Subject:  job.Subject,
		TextPart: job.Message,
	}}
	msgs := mailjet.MessagesV31{Info: info}
	if _, err := s.client.SendMailV31(&msgs); err != nil {
		return fmt.Errorf("could not send mail: %w", err)
	}
	return nil
}

// LogSender only logs messages; used when no transport is configured
type LogSender struct{}

// Send logs the job
func (LogSender) Send(ctx context.Context, job Job) error {
	logrus.WithFields(logrus.Fields{
		"job_id":     job.ID,
		"subject":    job.Subject,
		"recipients": job.Recipients,
	}).Info("Email not sent, no mail transport configured")
	return nil
}
