// Package escalate delivers unconfirmed-medication events to the caregiving
// family over WhatsApp.
package escalate

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/famcare/medminder/internal/model"
	myopenai "github.com/famcare/medminder/internal/openai"
	"github.com/famcare/medminder/internal/store"
)

// Sender sends a WhatsApp message to one recipient.
type Sender interface {
	SendWhatsAppMessage(to, body string) error
}

// Composer produces the escalation message body. Optional; the channel
// falls back to a fixed template when composition fails.
type Composer interface {
	ComposeEscalation(ctx context.Context, medicineName, scheduledTime string, elapsedMinutes int) (string, error)
}

// FamilyChannel fans an escalation out to every registered family member.
// Delivery is best effort: a failure for one member is logged and the rest
// are still attempted.
type FamilyChannel struct {
	members  *store.FamilyStore
	sender   Sender
	composer Composer
	logger   *log.Logger
}

// NewFamilyChannel creates a channel. composer may be nil.
func NewFamilyChannel(members *store.FamilyStore, sender Sender, composer Composer, logger *log.Logger) *FamilyChannel {
	return &FamilyChannel{members: members, sender: sender, composer: composer, logger: logger}
}

// Notify delivers the unconfirmed-medication event to every family member.
func (c *FamilyChannel) Notify(reminder model.Reminder, elapsedMinutes int) error {
	members, err := c.members.Members()
	if err != nil {
		return fmt.Errorf("escalate: %w", err)
	}
	if len(members) == 0 {
		c.logger.Printf("escalate: no family members registered, dropping escalation for %q", reminder.MedicineName)
		return nil
	}

	body := c.composeMessage(reminder, elapsedMinutes)
	var delivered int
	for _, member := range members {
		if err := c.sender.SendWhatsAppMessage(member.PhoneNumber, body); err != nil {
			c.logger.Printf("escalate: send to %s: %v", member.Name, err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("escalate: no family member could be reached for %q", reminder.MedicineName)
	}
	return nil
}

func (c *FamilyChannel) composeMessage(reminder model.Reminder, elapsedMinutes int) string {
	if c.composer != nil {
		body, err := c.composer.ComposeEscalation(context.Background(), reminder.MedicineName, reminder.TimeOfDay, elapsedMinutes)
		if err == nil && body != "" {
			return body
		}
		if err != nil && !errors.Is(err, myopenai.ErrClientNotInitialised) {
			c.logger.Printf("escalate: compose message: %v", err)
		}
	}
	return fmt.Sprintf(
		"%s scheduled for %s has not been confirmed for %d minutes. Please check in.",
		reminder.MedicineName, reminder.TimeOfDay, elapsedMinutes,
	)
}
