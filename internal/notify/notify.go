// Package notify delivers medication alarms to the patient.
package notify

import (
	"fmt"
	"log"

	"github.com/famcare/medminder/internal/model"
	"github.com/famcare/medminder/internal/twilio"
)

// Permission is the delivery-permission state of a gateway, queryable
// before first use.
type Permission string

const (
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
	PermissionUndetermined Permission = "undetermined"
)

// WhatsAppGateway sends alarms to the patient's WhatsApp number.
type WhatsAppGateway struct {
	client        *twilio.Client
	patientNumber string
	logger        *log.Logger
}

// NewWhatsAppGateway creates a gateway that alarms the given patient number.
func NewWhatsAppGateway(client *twilio.Client, patientNumber string, logger *log.Logger) *WhatsAppGateway {
	return &WhatsAppGateway{client: client, patientNumber: patientNumber, logger: logger}
}

// Permission reports whether the gateway is able to deliver.
func (g *WhatsAppGateway) Permission() Permission {
	if g.client == nil {
		return PermissionUndetermined
	}
	if !g.client.Configured() || g.patientNumber == "" {
		return PermissionDenied
	}
	return PermissionGranted
}

// RequestPermission asks for delivery permission before first use. WhatsApp
// delivery is granted by configuration rather than a user prompt, so the
// request re-evaluates the current state and logs what is missing.
func (g *WhatsAppGateway) RequestPermission() Permission {
	perm := g.Permission()
	if perm != PermissionGranted {
		g.logger.Printf("notify: whatsapp delivery %s: check TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_WHATSAPP_NUMBER and PATIENT_WHATSAPP_NUMBER", perm)
	}
	return perm
}

// Alarm sends the alarm (or escalated re-alarm) message.
func (g *WhatsAppGateway) Alarm(reminder model.Reminder, escalated bool) error {
	body := alarmBody(reminder, escalated)
	if err := g.client.SendWhatsAppMessage(g.patientNumber, body); err != nil {
		g.logger.Printf("notify: whatsapp alarm: %v", err)
		return err
	}
	return nil
}

// LogGateway writes alarms to the log. It stands in when WhatsApp delivery
// is not configured so the engine always has a gateway.
type LogGateway struct {
	logger *log.Logger
}

// NewLogGateway creates a log-only gateway.
func NewLogGateway(logger *log.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Permission always reports granted; logging cannot fail to be allowed.
func (g *LogGateway) Permission() Permission {
	return PermissionGranted
}

// RequestPermission is trivially granted for log delivery.
func (g *LogGateway) RequestPermission() Permission {
	return PermissionGranted
}

// Alarm logs the alarm message.
func (g *LogGateway) Alarm(reminder model.Reminder, escalated bool) error {
	g.logger.Printf("notify: %s", alarmBody(reminder, escalated))
	return nil
}

func alarmBody(reminder model.Reminder, escalated bool) string {
	if escalated {
		return fmt.Sprintf("Still waiting: please confirm you took %s (scheduled %s). Your family has been notified.", reminder.MedicineName, reminder.TimeOfDay)
	}
	return fmt.Sprintf("Time to take %s (scheduled %s). Reply \"taken\" to confirm.", reminder.MedicineName, reminder.TimeOfDay)
}
