// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Everyone is the recipient of broadcast and status messages.
const Everyone = "Todos"

// TimeLayout formats Message.Time.
const TimeLayout = "15:04:05"

const (
	EnteredRoomText = "entered the room"
	LeftRoomText    = "left the room"
)

type MessageType string

const (
	MessageTypePublic  MessageType = "message"
	MessageTypePrivate MessageType = "private_message"
	MessageTypeStatus  MessageType = "status"
)

// IsPostable reports whether participants may send messages of this type.
// Status messages are only produced by the presence tracker.
func (t MessageType) IsPostable() bool {
	return t == MessageTypePublic || t == MessageTypePrivate
}

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique identifier
	From      string
	To        string
	Text      string
	Type      MessageType
	Time      string
	CreatedAt time.Time
}

func NewMessage(from, to, text string, messageType MessageType, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Text:      text,
		Type:      messageType,
		Time:      at.Format(TimeLayout),
		CreatedAt: at,
	}
}

// NewStatusMessage builds the synthetic entry announcing that name entered or left the room.
func NewStatusMessage(name, text string, at time.Time) Message {
	return NewMessage(name, Everyone, text, MessageTypeStatus, at)
}
