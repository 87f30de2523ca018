package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	MessageKindText         MessageKind = "text"
	MessageKindQuickReplies MessageKind = "quick_replies"
	MessageKindEmergency    MessageKind = "emergency"
)

// Message is a single conversation turn. Messages live for the duration of
// a session; the engine creates them but never persists them.
type Message struct {
	ID            uuid.UUID   `json:"id"`
	Text          string      `json:"text"`
	FromAssistant bool        `json:"from_assistant"`
	Timestamp     time.Time   `json:"timestamp"`
	Kind          MessageKind `json:"kind"`
	QuickReplies  []string    `json:"quick_replies,omitempty"`
}

// NewUserMessage creates a plain text message authored by the patient.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.New(),
		Text:      text,
		Timestamp: time.Now(),
		Kind:      MessageKindText,
	}
}

// NewAssistantMessage creates a plain text message authored by the assistant.
func NewAssistantMessage(text string) Message {
	return Message{
		ID:            uuid.New(),
		Text:          text,
		FromAssistant: true,
		Timestamp:     time.Now(),
		Kind:          MessageKindText,
	}
}

// NewQuickReplyMessage creates an assistant message carrying one-tap
// follow-up suggestions.
func NewQuickReplyMessage(text string, replies []string) Message {
	m := NewAssistantMessage(text)
	m.Kind = MessageKindQuickReplies
	m.QuickReplies = replies
	return m
}

// NewEmergencyMessage creates an assistant message that instructs the UI to
// show escalation affordances.
func NewEmergencyMessage(text string, replies []string) Message {
	m := NewAssistantMessage(text)
	m.Kind = MessageKindEmergency
	m.QuickReplies = replies
	return m
}
