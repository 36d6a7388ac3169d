package twilio

import (
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Client wraps the Twilio messaging operations the service needs.
type Client struct {
	client       *twilio.RestClient
	fromWhatsApp string
}

// New creates a Twilio client bound to the configured WhatsApp sender number.
// Missing credentials yield a client whose Configured method reports false.
func New(accountSID, authToken, fromWhatsApp string) *Client {
	if accountSID == "" || authToken == "" {
		return &Client{fromWhatsApp: fromWhatsApp}
	}
	return &Client{
		client:       twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		fromWhatsApp: fromWhatsApp,
	}
}

// Configured reports whether the client can actually send messages.
func (c *Client) Configured() bool {
	return c != nil && c.client != nil && normalizeWhatsAppAddress(c.fromWhatsApp) != ""
}

// SendWhatsAppMessage sends a WhatsApp message via Twilio's API.
func (c *Client) SendWhatsAppMessage(to, body string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("twilio client not initialised")
	}

	sender := normalizeWhatsAppAddress(c.fromWhatsApp)
	if sender == "" {
		return fmt.Errorf("twilio sender WhatsApp number is not configured")
	}

	recipient := normalizeWhatsAppAddress(to)
	if recipient == "" {
		return fmt.Errorf("recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	if _, err := c.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send message: %w", err)
	}
	return nil
}

func normalizeWhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "whatsapp:") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "+") {
		return "whatsapp:" + trimmed
	}
	return "whatsapp:+" + trimmed
}
