package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	apperrors "golfalerts/internal/errors"
)

const opsSendTimeout = 20 * time.Second

// TwilioSender texts alert owners. Without credentials every Send returns
// ErrNotConfigured and no request is made.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

func NewTwilioSender(accountSID, authToken, from string, logger *zap.Logger) *TwilioSender {
	s := &TwilioSender{from: from, logger: logger}
	if accountSID == "" || authToken == "" || from == "" {
		logger.Warn("twilio credentials not configured, alerts will not be texted")
		return s
	}
	s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return s
}

func (s *TwilioSender) Configured() bool {
	return s.client != nil
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if s.client == nil {
		return fmt.Errorf("sms to %s: %w", to, apperrors.ErrNotConfigured)
	}
	if !strings.HasPrefix(to, "+") {
		return fmt.Errorf("sms destination %q is not E.164", to)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		s.logger.Info("sms sent", zap.String("to", to), zap.String("sid", *resp.Sid))
	}
	return nil
}

// SendGridNotifier emails operator notices. Delivery is asynchronous and
// best effort; when unconfigured the notice is only logged.
type SendGridNotifier struct {
	client   *sendgrid.Client
	from     *mail.Email
	to       *mail.Email
	logger   *zap.Logger
	sendHook func(ctx context.Context, msg *mail.SGMailV3) error
}

func NewSendGridNotifier(apiKey, fromEmail, fromName, opsEmail string, logger *zap.Logger) *SendGridNotifier {
	n := &SendGridNotifier{logger: logger}
	if apiKey == "" || fromEmail == "" || opsEmail == "" {
		return n
	}
	n.client = sendgrid.NewSendClient(apiKey)
	n.from = mail.NewEmail(fromName, fromEmail)
	n.to = mail.NewEmail("Operator", opsEmail)
	n.sendHook = n.send
	return n
}

func (n *SendGridNotifier) NotifyOps(ctx context.Context, subject, body string) {
	n.logger.Warn("ops notice", zap.String("subject", subject), zap.String("body", body))
	if n.sendHook == nil {
		return
	}

	msg := mail.NewSingleEmail(n.from, subject, n.to, body, "")
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opsSendTimeout)
		defer cancel()
		if err := n.sendHook(sendCtx, msg); err != nil {
			n.logger.Error("failed to email ops notice", zap.String("subject", subject), zap.Error(err))
		}
	}()
}

func (n *SendGridNotifier) send(ctx context.Context, msg *mail.SGMailV3) error {
	resp, err := n.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
