// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tomtom215/cicerone/internal/conversation"
)

// MaxMessageRunes is the Bot API limit on message text.
const MaxMessageRunes = 4096

// LocationButton labels the button that shares the user's location.
const LocationButton = "Send my location"

// render turns a reply into the messages to send. Long texts are split on
// line boundaries; only the last part carries the keyboard.
func render(chatID int64, reply conversation.Reply) []tgbotapi.Chattable {
	switch r := reply.(type) {
	case conversation.TextReply:
		parts := splitText(r.Text, MaxMessageRunes)
		out := make([]tgbotapi.Chattable, 0, len(parts))
		for i, part := range parts {
			msg := tgbotapi.NewMessage(chatID, part)
			if r.Markdown {
				msg.ParseMode = tgbotapi.ModeMarkdown
			}
			if i == len(parts)-1 {
				msg.ReplyMarkup = markup(r)
			}
			out = append(out, msg)
		}
		return out
	case conversation.DocumentReply:
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: r.Filename, Bytes: r.Content})
		doc.Caption = r.Caption
		return []tgbotapi.Chattable{doc}
	default:
		return nil
	}
}

func markup(r conversation.TextReply) interface{} {
	switch {
	case r.RequestLocation:
		kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation(LocationButton)))
		kb.OneTimeKeyboard = true
		return kb
	case len(r.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(r.Keyboard))
		for _, row := range r.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.OneTimeKeyboard = true
		return kb
	case r.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(true)
	default:
		return nil
	}
}

// splitText cuts s into parts of at most limit runes, preferring line
// breaks. An empty text yields one empty part.
func splitText(s string, limit int) []string {
	if len([]rune(s)) <= limit {
		return []string{s}
	}

	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			parts = append(parts, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(s, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		if curLen+len(runes) > limit {
			flush()
		}
		cur.WriteString(string(runes))
		curLen += len(runes)
	}
	flush()
	return parts
}
