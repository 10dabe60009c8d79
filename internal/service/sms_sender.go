package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
)

// SMSSender delivers a text message to a phone number. Implementations must
// honour ctx cancellation.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSMSSender writes messages to the structured log instead of a gateway. It
// is the local development stand-in for a real provider.
type LogSMSSender struct {
	logger *slog.Logger
}

func NewLogSMSSender(logger *slog.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger}
}

func (s *LogSMSSender) Send(ctx context.Context, phone, message string) error {
	s.logger.InfoContext(ctx, "sms message (log provider)",
		"phone", phone,
		"message", message,
	)
	observability.RecordSMSDelivery(ctx, "log", "delivered", 0)
	return nil
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromPhone  string
	BaseURL    string
}

type TwilioSMSSender struct {
	cfg    TwilioConfig
	client *http.Client
	logger *slog.Logger
}

type twilioMessageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewTwilioSMSSender(cfg TwilioConfig, client *http.Client, logger *slog.Logger) *TwilioSMSSender {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &TwilioSMSSender{cfg: cfg, client: client, logger: logger}
}

func (s *TwilioSMSSender) Send(ctx context.Context, phone, message string) (err error) {
	start := time.Now()
	outcome := "delivered"
	defer func() {
		if err != nil {
			outcome = "failed"
		}
		observability.RecordSMSDelivery(ctx, "twilio", outcome, time.Since(start))
	}()

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.cfg.BaseURL, url.PathEscape(s.cfg.AccountSID))
	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", s.cfg.FromPhone)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body twilioMessageResponse
	if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); decodeErr != nil && resp.StatusCode == http.StatusCreated {
		return fmt.Errorf("decode twilio response: %w", decodeErr)
	}
	if resp.StatusCode != http.StatusCreated {
		if body.Message != "" {
			return fmt.Errorf("twilio api status %d (code %d): %s", resp.StatusCode, body.Code, body.Message)
		}
		return fmt.Errorf("twilio api status %d", resp.StatusCode)
	}

	s.logger.InfoContext(ctx, "sms sent", "provider", "twilio", "sid", body.SID, "status", body.Status)
	return nil
}
