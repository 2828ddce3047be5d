package bus

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageEnvelope is the payload of a chat bus message: the text a user wrote, or the
// link list sent back to them.
type MessageEnvelope struct {
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
	SentAt    string `json:"sent_at"` // RFC3339
	SessionID string `json:"session_id,omitempty"`
	ReplyTo   string `json:"reply_to,omitempty"`
}

func (e MessageEnvelope) Validate(topic string) error {
	if err := checkFields(
		required("message_id", e.MessageID),
		required("text", e.Text),
		required("sent_at", e.SentAt),
		optional("reply_to", e.ReplyTo),
	); err != nil {
		return err
	}
	if _, err := time.Parse(time.RFC3339, e.SentAt); err != nil {
		return fmt.Errorf("sent_at must be RFC3339")
	}
	switch {
	case e.SessionID != "":
		if id, err := uuid.Parse(e.SessionID); err != nil || id.Version() != 7 {
			return fmt.Errorf("session_id must be uuid_v7")
		}
	case IsDialogueTopic(topic):
		return fmt.Errorf("session_id is required for dialogue topic %q", topic)
	}
	return nil
}

// EncodeMessageEnvelope validates env and returns it as unpadded base64url JSON.
func EncodeMessageEnvelope(topic string, env MessageEnvelope) (string, error) {
	if err := env.Validate(topic); err != nil {
		return "", err
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal message envelope: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeMessageEnvelope is strict: unknown fields and trailing data are rejected.
func DecodeMessageEnvelope(topic string, payload string) (MessageEnvelope, error) {
	if err := checkFields(required("payload_base64", payload)); err != nil {
		return MessageEnvelope{}, err
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return MessageEnvelope{}, fmt.Errorf("payload_base64 decode failed: %w", err)
	}

	var env MessageEnvelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return MessageEnvelope{}, fmt.Errorf("invalid message envelope json: %w", err)
	}
	if dec.More() {
		return MessageEnvelope{}, errors.New("invalid message envelope json: trailing data")
	}
	if err := env.Validate(topic); err != nil {
		return MessageEnvelope{}, err
	}
	return env, nil
}

// NewSessionID returns a fresh uuid v7 string.
func NewSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
