// Package api exposes the Twilio inbound-message webhook through which the
// patient confirms alarms and inspects the reminder schedule.
package api

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/famcare/medminder/internal/engine"
	"github.com/famcare/medminder/internal/store"
)

// Handler serves the Twilio webhook.
type Handler struct {
	engine    *engine.Engine
	reminders *store.ReminderStore
	loc       *time.Location
	logger    *log.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(eng *engine.Engine, reminders *store.ReminderStore, loc *time.Location, logger *log.Logger) *Handler {
	return &Handler{engine: eng, reminders: reminders, loc: loc, logger: logger}
}

// Webhook returns the HTTP handler for incoming Twilio messages.
func (h *Handler) Webhook() http.HandlerFunc {
	return h.handleIncomingMessage
}

func (h *Handler) handleIncomingMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Printf("webhook: parse error: %v", err)
		h.writeTwilioResponse(w, "Sorry, I couldn't understand that request.")
		return
	}

	body := strings.TrimSpace(r.FormValue("Body"))
	if r.FormValue("From") == "" || body == "" {
		h.writeTwilioResponse(w, "I need a message to work with. Please try again.")
		return
	}

	lowerBody := strings.ToLower(body)
	switch {
	case isConfirmRequest(lowerBody):
		h.handleConfirm(w, extractConfirmKeyword(body))
	case isListRequest(lowerBody):
		h.writeTwilioResponse(w, h.listReminders())
	default:
		h.writeTwilioResponse(w, helpResponse())
	}
}

// handleConfirm resolves which live alarm the patient means and confirms it.
func (h *Handler) handleConfirm(w http.ResponseWriter, keyword string) {
	sessions := h.engine.ActiveSessions()
	if len(sessions) == 0 {
		h.writeTwilioResponse(w, "Nothing is waiting for confirmation right now.")
		return
	}

	var target *engine.AlarmSession
	if keyword != "" {
		for i := range sessions {
			if nameMatches(sessions[i].MedicineName, keyword) {
				target = &sessions[i]
				break
			}
		}
		if target == nil {
			h.writeTwilioResponse(w, fmt.Sprintf("I couldn't find a pending alarm matching '%s'.", keyword))
			return
		}
	} else {
		if len(sessions) > 1 {
			names := make([]string, len(sessions))
			for i, s := range sessions {
				names[i] = s.MedicineName
			}
			h.writeTwilioResponse(w, fmt.Sprintf("Several alarms are waiting (%s). Which one did you take?", strings.Join(names, ", ")))
			return
		}
		target = &sessions[0]
	}

	confirmed, err := h.engine.Confirm(target.ReminderID, time.Now().In(h.loc))
	if err != nil {
		h.logger.Printf("webhook: confirm %s: %v", target.ReminderID, err)
		h.writeTwilioResponse(w, "I couldn't save that confirmation. Please try again.")
		return
	}
	if !confirmed {
		h.writeTwilioResponse(w, fmt.Sprintf("%s was already confirmed.", target.MedicineName))
		return
	}
	h.writeTwilioResponse(w, fmt.Sprintf("Confirmed %s. Well done!", target.MedicineName))
}

func (h *Handler) listReminders() string {
	reminders, err := h.reminders.List()
	if err != nil {
		h.logger.Printf("webhook: list reminders: %v", err)
		return "I couldn't load the reminders. Please try again later."
	}
	if len(reminders) == 0 {
		return "No medication reminders are set up yet."
	}

	var sb strings.Builder
	sb.WriteString("Medication schedule:\n")
	for i, reminder := range reminders {
		sb.WriteString(fmt.Sprintf("%d. %s at %s on %s", i+1, reminder.MedicineName, reminder.TimeOfDay, formatDays(reminder.Days)))
		if reminder.NotifyFamily {
			sb.WriteString(fmt.Sprintf(" (family notified after %d min)", reminder.FamilyDelayMinutes))
		}
		if !reminder.IsActive {
			sb.WriteString(" [paused]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (h *Handler) writeTwilioResponse(w http.ResponseWriter, message string) {
	twiml := struct {
		XMLName xml.Name `xml:"Response"`
		Message string   `xml:"Message"`
	}{
		Message: message,
	}

	w.Header().Set("Content-Type", "application/xml")
	if err := xml.NewEncoder(w).Encode(twiml); err != nil {
		h.logger.Printf("webhook: response encode: %v", err)
	}
}

var confirmRegex = regexp.MustCompile(`(?i)^(?:taken|took|done|confirm(?:ed)?)\b[\s:]*(.*)$`)

func isConfirmRequest(body string) bool {
	return confirmRegex.MatchString(body)
}

func extractConfirmKeyword(body string) string {
	matches := confirmRegex.FindStringSubmatch(body)
	if len(matches) < 2 {
		return ""
	}
	keyword := strings.TrimSpace(matches[1])
	keyword = strings.TrimPrefix(keyword, "my ")
	return strings.TrimSpace(keyword)
}

var listRegex = regexp.MustCompile(`(?i)\b(?:list|schedule|show (?:my )?reminders)\b`)

func isListRequest(body string) bool {
	return listRegex.MatchString(body)
}

func nameMatches(medicineName, keyword string) bool {
	name := strings.ToLower(medicineName)
	needle := strings.ToLower(keyword)
	return strings.Contains(name, needle) || strings.Contains(needle, name)
}

func formatDays(days []string) string {
	if len(days) == 0 {
		return "no days (inactive)"
	}
	return strings.Join(days, ", ")
}

func helpResponse() string {
	return "You can say things like:\n- \"Taken\" to confirm the current alarm\n- \"Taken aspirin\" when several alarms are waiting\n- \"List\" to see the medication schedule"
}
