// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cicerone/internal/conversation"
	"github.com/tomtom215/cicerone/internal/metrics"
)

type fakeBot struct {
	updates chan tgbotapi.Update

	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	sendErr error
	stopped bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update, 8)}
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return tgbotapi.Message{}, b.sendErr
	}
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) waitSent(t *testing.T, n int) []tgbotapi.Chattable {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		b.mu.Lock()
		if len(b.sent) >= n {
			out := append([]tgbotapi.Chattable(nil), b.sent...)
			b.mu.Unlock()
			return out
		}
		b.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d messages", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// echoService replies synchronously with the text it received.
type echoService struct {
	mu  sync.Mutex
	ins []conversation.Inbound
}

func (s *echoService) Submit(ctx context.Context, in conversation.Inbound, deliver conversation.Deliver) error {
	s.mu.Lock()
	s.ins = append(s.ins, in)
	s.mu.Unlock()
	deliver(ctx, conversation.TextReply{Text: "echo " + in.Text})
	return nil
}

func textMessage(userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: "mario"},
		Chat:      &tgbotapi.Chat{ID: userID + 1000},
		Date:      1767225600,
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: commandEntityLength(text)}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

// commandEntityLength mirrors Telegram: the bot_command entity covers the
// slash and the following letters, digits, underscores and bot mention, and
// stops at the first other character such as '-'.
func commandEntityLength(text string) int {
	n := 1
	for n < len(text) {
		c := text[n]
		if c == '_' || c == '@' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			n++
			continue
		}
		break
	}
	return n
}

func runPoller(t *testing.T, bot *fakeBot, svc Submitter) {
	t.Helper()
	p := NewPoller(Config{PollTimeout: 1}, bot, svc)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
		bot.mu.Lock()
		defer bot.mu.Unlock()
		if !bot.stopped {
			t.Error("updates were not stopped")
		}
	})
}

func TestPollerAnswersMessages(t *testing.T) {
	bot := newFakeBot()
	svc := &echoService{}
	runPoller(t, bot, svc)

	bot.updates <- textMessage(7, "/start")
	bot.updates <- textMessage(7, "/survey@CiceroneBot")
	bot.updates <- textMessage(7, "Pizza")
	bot.updates <- tgbotapi.Update{UpdateID: 2}

	sent := bot.waitSent(t, 3)
	want := []string{"echo begin", "echo survey", "echo Pizza"}
	for i, w := range want {
		msg, ok := sent[i].(tgbotapi.MessageConfig)
		if !ok {
			t.Fatalf("message %d is %T", i, sent[i])
		}
		if msg.Text != w || msg.ChatID != 1007 {
			t.Errorf("message %d = %q to %d, want %q to 1007", i, msg.Text, msg.ChatID, w)
		}
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.ins[0].UserID != 7 || svc.ins[0].Username != "mario" {
		t.Errorf("unexpected inbound: %+v", svc.ins[0])
	}
	if !svc.ins[0].ReceivedAt.Equal(time.Unix(1767225600, 0)) {
		t.Errorf("ReceivedAt = %v", svc.ins[0].ReceivedAt)
	}
}

func TestToInboundCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		wantLength int
		want       string
	}{
		{"hyphenated", "/set-location", 4, "set-location"},
		{"hyphenated with mention", "/get-recommendation@CiceroneBot", 4, "get-recommendation"},
		{"two hyphens", "/show-answers", 5, "show-answers"},
		{"start", "/start", 6, "begin"},
		{"arguments", "/set-configuration  2", 4, "set-configuration 2"},
		{"plain word", "/help", 5, "help"},
		{"not a command", "set-location", 0, "set-location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := textMessage(7, tt.text).Message
			if tt.wantLength > 0 {
				if len(msg.Entities) != 1 || msg.Entities[0].Length != tt.wantLength {
					t.Fatalf("entities = %+v, want length %d", msg.Entities, tt.wantLength)
				}
			}
			if got := toInbound(msg).Text; got != tt.want {
				t.Errorf("inbound text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToInboundLocation(t *testing.T) {
	t.Parallel()

	msg := &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 3},
		Chat:     &tgbotapi.Chat{ID: 3},
		Location: &tgbotapi.Location{Latitude: 41.118, Longitude: 16.869},
	}
	in := toInbound(msg)
	if in.Text != "" || in.Location == nil {
		t.Fatalf("unexpected inbound: %+v", in)
	}
	if in.Location.Latitude != 41.118 || in.Location.Longitude != 16.869 {
		t.Errorf("location = %+v", in.Location)
	}
	if in.ReceivedAt.IsZero() {
		t.Error("ReceivedAt should default to now")
	}
}

func TestRenderTextMarkup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply conversation.TextReply
		check func(t *testing.T, markup interface{})
		parse string
	}{
		{
			name:  "plain",
			reply: conversation.TextReply{Text: "hi"},
			check: func(t *testing.T, m interface{}) {
				if m != nil {
					t.Errorf("expected no markup, got %T", m)
				}
			},
		},
		{
			name:  "keyboard",
			reply: conversation.TextReply{Text: "pick", Keyboard: [][]string{{"Italian"}, {"Pizza", "Any"}}},
			check: func(t *testing.T, m interface{}) {
				kb, ok := m.(tgbotapi.ReplyKeyboardMarkup)
				if !ok {
					t.Fatalf("markup is %T", m)
				}
				if len(kb.Keyboard) != 2 || len(kb.Keyboard[1]) != 2 || kb.Keyboard[1][0].Text != "Pizza" {
					t.Errorf("keyboard = %+v", kb.Keyboard)
				}
				if !kb.OneTimeKeyboard {
					t.Error("keyboard should be one-time")
				}
			},
		},
		{
			name:  "location",
			reply: conversation.TextReply{Text: "where?", RequestLocation: true},
			check: func(t *testing.T, m interface{}) {
				kb, ok := m.(tgbotapi.ReplyKeyboardMarkup)
				if !ok {
					t.Fatalf("markup is %T", m)
				}
				if b := kb.Keyboard[0][0]; !b.RequestLocation || b.Text != LocationButton {
					t.Errorf("button = %+v", b)
				}
			},
		},
		{
			name:  "remove",
			reply: conversation.TextReply{Text: "done", RemoveKeyboard: true},
			check: func(t *testing.T, m interface{}) {
				if rm, ok := m.(tgbotapi.ReplyKeyboardRemove); !ok || !rm.RemoveKeyboard {
					t.Errorf("markup = %#v", m)
				}
			},
		},
		{
			name:  "markdown",
			reply: conversation.TextReply{Text: "*Pizzeria*", Markdown: true},
			parse: tgbotapi.ModeMarkdown,
			check: func(*testing.T, interface{}) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := render(5, tt.reply)
			if len(out) != 1 {
				t.Fatalf("expected one message, got %d", len(out))
			}
			msg := out[0].(tgbotapi.MessageConfig)
			if msg.ParseMode != tt.parse {
				t.Errorf("parse mode = %q", msg.ParseMode)
			}
			tt.check(t, msg.ReplyMarkup)
		})
	}
}

func TestRenderDocument(t *testing.T) {
	t.Parallel()

	out := render(5, conversation.DocumentReply{Filename: "log.txt", Caption: "Log file.", Content: []byte("x")})
	if len(out) != 1 {
		t.Fatalf("expected one document, got %d", len(out))
	}
	doc, ok := out[0].(tgbotapi.DocumentConfig)
	if !ok {
		t.Fatalf("got %T", out[0])
	}
	if doc.Caption != "Log file." {
		t.Errorf("caption = %q", doc.Caption)
	}
	fb, ok := doc.File.(tgbotapi.FileBytes)
	if !ok || fb.Name != "log.txt" || string(fb.Bytes) != "x" {
		t.Errorf("file = %#v", doc.File)
	}
}

func TestRenderSplitsLongText(t *testing.T) {
	t.Parallel()

	line := strings.Repeat("a", 100) + "\n"
	long := strings.Repeat(line, 50)
	out := render(5, conversation.TextReply{Text: long, RemoveKeyboard: true})
	if len(out) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(out))
	}
	first := out[0].(tgbotapi.MessageConfig)
	last := out[1].(tgbotapi.MessageConfig)
	if len([]rune(first.Text)) > MaxMessageRunes || first.ReplyMarkup != nil {
		t.Errorf("first part too long or carries markup")
	}
	if last.ReplyMarkup == nil {
		t.Error("last part should carry the markup")
	}
	if got := strings.Count(first.Text+"\n"+last.Text, "a"); got != 5000 {
		t.Errorf("lost text: %d runes of content", got)
	}
}

func TestSplitTextHardCutsLongLines(t *testing.T) {
	t.Parallel()

	parts := splitText(strings.Repeat("é", 10), 4)
	want := []string{"éééé", "éééé", "éé"}
	if len(parts) != len(want) {
		t.Fatalf("parts = %q", parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, parts[i], want[i])
		}
	}
}

func TestSendFailureIsCounted(t *testing.T) {
	bot := newFakeBot()
	bot.sendErr = errors.New("network down")
	p := NewPoller(Config{}, bot, &echoService{})

	before := testutil.ToFloat64(metrics.TransportErrorsTotal.WithLabelValues(transportName))
	p.send(context.Background(), 1, conversation.TextReply{Text: "hi"})
	after := testutil.ToFloat64(metrics.TransportErrorsTotal.WithLabelValues(transportName))
	if after-before != 1 {
		t.Errorf("expected one transport error, got %v", after-before)
	}
}
