package models

import (
	"encoding/json"
	"fmt"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

const EntityMessage = "MESSAGE"

// ModerationEvent is the payload on chat.to.moderator. Earlier revisions of
// the system sent a bare Message on this queue; only the tagged form is
// accepted now, anything else is rejected on receipt.
type ModerationEvent struct {
	Action  Action  `json:"action"`
	Message Message `json:"message"`
}

// AuditEvent is the payload on chat.to.logs.
type AuditEvent struct {
	Action  Action  `json:"action"`
	Entity  string  `json:"entity"`
	Content Message `json:"content"`
}

// CensorshipDirective is the payload on moderator.to.chat.
type CensorshipDirective struct {
	MessageID int64 `json:"messageId"`
}

func validAction(a Action) bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Validate normalizes and checks the event. A missing action is treated as
// CREATE, matching what producers historically sent for new messages.
func (e *ModerationEvent) Validate() error {
	if e.Action == "" {
		e.Action = ActionCreate
	}
	if !validAction(e.Action) {
		return fmt.Errorf("unknown action %q", e.Action)
	}
	if e.Message.ID == 0 {
		return fmt.Errorf("moderation event has no message id")
	}
	if e.Action != ActionDelete && e.Message.Content == "" {
		return fmt.Errorf("moderation event has no content")
	}
	return nil
}

func (e *AuditEvent) Validate() error {
	if !validAction(e.Action) {
		return fmt.Errorf("unknown action %q", e.Action)
	}
	if e.Entity == "" {
		return fmt.Errorf("audit event has no entity")
	}
	if e.Content.ID == 0 {
		return fmt.Errorf("audit event has no entity id")
	}
	return nil
}

func (d *CensorshipDirective) Validate() error {
	if d.MessageID == 0 {
		return fmt.Errorf("censorship directive has no message id")
	}
	return nil
}

// DecodeModerationEvent parses and validates a chat.to.moderator payload.
func DecodeModerationEvent(data []byte) (ModerationEvent, error) {
	var e ModerationEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("failed to unmarshal moderation event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return e, err
	}
	return e, nil
}

// DecodeAuditEvent parses and validates a chat.to.logs payload.
func DecodeAuditEvent(data []byte) (AuditEvent, error) {
	var e AuditEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("failed to unmarshal audit event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return e, err
	}
	return e, nil
}

// DecodeCensorshipDirective parses and validates a moderator.to.chat payload.
func DecodeCensorshipDirective(data []byte) (CensorshipDirective, error) {
	var d CensorshipDirective
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("failed to unmarshal censorship directive: %w", err)
	}
	if err := d.Validate(); err != nil {
		return d, err
	}
	return d, nil
}
