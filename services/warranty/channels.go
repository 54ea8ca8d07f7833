package warranty

import (
	"context"
	"errors"
	"fmt"

	"repairdesk/models"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gopkg.in/gomail.v2"
)

// ErrNoAddress means the warranty has no contact for a channel; nothing was attempted.
var ErrNoAddress = errors.New("no address for channel")

// Reminder is the rendered expiry notice for one warranty and interval.
type Reminder struct {
	Warranty models.Warranty
	Days     int
	Subject  string
	HTML     string
	Text     string
}

// Channel delivers a reminder outside the app.
type Channel interface {
	Name() string
	Send(ctx context.Context, r Reminder) error
}

// EmailChannel sends through SMTP.
type EmailChannel struct {
	Dialer *gomail.Dialer
	From   string
}

func NewEmailChannel(host string, port int, username, password, from string) *EmailChannel {
	if from == "" {
		from = username
	}
	return &EmailChannel{Dialer: gomail.NewDialer(host, port, username, password), From: from}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, r Reminder) error {
	if r.Warranty.UserEmail == "" {
		return ErrNoAddress
	}
	m := gomail.NewMessage()
	m.SetHeader("From", c.From)
	m.SetHeader("To", r.Warranty.UserEmail)
	m.SetHeader("Subject", r.Subject)
	m.SetBody("text/plain", r.Text)
	m.AddAlternative("text/html", r.HTML)

	if err := c.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email to %s failed: %w", r.Warranty.UserEmail, err)
	}
	return nil
}

// SMSChannel sends through Twilio.
type SMSChannel struct {
	Client *twilio.RestClient
	From   string
}

func NewSMSChannel(accountSID, authToken, from string) *SMSChannel {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSChannel{Client: client, From: from}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Send(ctx context.Context, r Reminder) error {
	if r.Warranty.PhoneNumber == "" {
		return ErrNoAddress
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(r.Warranty.PhoneNumber)
	params.SetFrom(c.From)
	params.SetBody(r.Text)

	if _, err := c.Client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("sms to %s failed: %w", r.Warranty.PhoneNumber, err)
	}
	return nil
}
