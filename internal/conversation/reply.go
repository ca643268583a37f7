// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

import (
	"time"

	"github.com/tomtom215/cicerone/internal/geo"
)

// Inbound is one message from a transport.
type Inbound struct {
	UserID   int64      `json:"user_id" validate:"required,ne=0"`
	Username string     `json:"username,omitempty" validate:"max=64"`
	Text     string     `json:"text,omitempty" validate:"max=4096"`
	Location *geo.Point `json:"location,omitempty"`

	ReceivedAt time.Time `json:"-"`
}

// Reply is what the conversation sends back: a TextReply or a
// DocumentReply.
type Reply interface {
	// Kind is "text" or "document".
	Kind() string
	isReply()
}

// TextReply is a chat message.
type TextReply struct {
	Text string `json:"text"`

	// Keyboard offers fixed answers, one row per slice.
	Keyboard [][]string `json:"keyboard,omitempty"`

	// RequestLocation asks the client for a location button.
	RequestLocation bool `json:"request_location,omitempty"`

	// RemoveKeyboard hides a previously shown keyboard.
	RemoveKeyboard bool `json:"remove_keyboard,omitempty"`

	// Markdown marks Text as markdown.
	Markdown bool `json:"markdown,omitempty"`
}

// DocumentReply is a generated file.
type DocumentReply struct {
	Filename string `json:"filename"`
	Caption  string `json:"caption"`
	Content  []byte `json:"content"`
}

// Kind implements Reply.
func (TextReply) Kind() string { return "text" }

// Kind implements Reply.
func (DocumentReply) Kind() string { return "document" }

func (TextReply) isReply()     {}
func (DocumentReply) isReply() {}

func text(s string) TextReply {
	return TextReply{Text: s}
}

func oneColumn(options []string) [][]string {
	rows := make([][]string, len(options))
	for i, o := range options {
		rows[i] = []string{o}
	}
	return rows
}

func oneRow(options []string) [][]string {
	if len(options) == 0 {
		return nil
	}
	return [][]string{append([]string(nil), options...)}
}
