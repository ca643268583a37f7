// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package telegram connects the conversation service to the Telegram Bot
// API using long polling.
//
// The Poller is a suture service. It reads updates in a single goroutine
// and submits each message to the conversation service, so a user's turns
// are handled in the order Telegram delivered them; replies are sent from
// the user's worker once the turn completes.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cicerone/internal/conversation"
	"github.com/tomtom215/cicerone/internal/geo"
	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/metrics"
	"github.com/tomtom215/cicerone/internal/session"
)

const transportName = "telegram"

// BotAPI is the part of *tgbotapi.BotAPI the poller uses.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Submitter queues a turn and delivers its reply later.
type Submitter interface {
	Submit(ctx context.Context, in conversation.Inbound, deliver conversation.Deliver) error
}

// Config configures a Poller.
type Config struct {
	// PollTimeout is the long-poll timeout in seconds.
	PollTimeout int
}

// Poller receives Telegram updates and answers them.
type Poller struct {
	api     BotAPI
	service Submitter
	timeout int
	log     zerolog.Logger
}

// Connect authenticates with the Bot API.
func Connect(token string, debug bool) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(botLogger{log: logging.WithComponent("telegram-api")}); err != nil {
		return nil, fmt.Errorf("set bot logger: %w", err)
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = debug
	logging.Info().Str("bot", api.Self.UserName).Msg("Authorized on Telegram")
	return api, nil
}

// NewPoller creates a poller. Non-positive timeouts use 60 seconds.
func NewPoller(cfg Config, api BotAPI, service Submitter) *Poller {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60
	}
	return &Poller{
		api:     api,
		service: service,
		timeout: cfg.PollTimeout,
		log:     logging.WithComponent("telegram"),
	}
}

// Serve polls until ctx ends.
func (p *Poller) Serve(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.api.GetUpdatesChan(u)

	p.log.Info().Int("poll_timeout", p.timeout).Msg("Telegram poller started")

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			p.log.Info().Msg("Telegram poller stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram update channel closed")
			}
			p.handle(ctx, update)
		}
	}
}

// String names the service in supervisor logs.
func (p *Poller) String() string {
	return "telegram-poller"
}

func (p *Poller) handle(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	in := toInbound(msg)
	chatID := msg.Chat.ID

	ctx = logging.ContextWithNewCorrelationID(ctx)
	err := p.service.Submit(ctx, in, func(ctx context.Context, reply conversation.Reply) {
		p.send(ctx, chatID, reply)
	})
	switch {
	case err == nil, errors.Is(err, conversation.ErrRateLimited), errors.Is(err, session.ErrBusy):
	default:
		logging.Ctx(ctx).Error().Err(err).Int("update_id", update.UpdateID).Msg("Failed to submit message")
	}
}

// toInbound maps a Telegram message. Bot commands lose their slash and
// bot mention so "/survey@CiceroneBot" reads as "survey"; /start is the
// client's conventional first message and maps to begin.
//
// The command is read from the text rather than the bot_command entity:
// Telegram ends the entity at the first hyphen, so "/set-location" carries
// an entity covering only "/set".
func toInbound(msg *tgbotapi.Message) conversation.Inbound {
	in := conversation.Inbound{
		UserID:     msg.From.ID,
		Username:   msg.From.UserName,
		Text:       msg.Text,
		ReceivedAt: time.Now(),
	}
	if msg.Date != 0 {
		in.ReceivedAt = msg.Time()
	}
	if msg.IsCommand() {
		in.Text = commandText(msg.Text)
	}
	if msg.Location != nil {
		in.Location = &geo.Point{Latitude: msg.Location.Latitude, Longitude: msg.Location.Longitude}
	}
	return in
}

// commandText strips the slash and any @bot suffix from the first word.
func commandText(text string) string {
	word, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	cmd, _, _ := strings.Cut(strings.TrimPrefix(word, "/"), "@")
	if cmd == "start" {
		cmd = "begin"
	}
	return strings.TrimSpace(cmd + " " + strings.TrimSpace(args))
}

func (p *Poller) send(ctx context.Context, chatID int64, reply conversation.Reply) {
	for _, c := range render(chatID, reply) {
		if _, err := p.api.Send(c); err != nil {
			metrics.RecordTransportError(transportName)
			logging.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Str("reply", reply.Kind()).Msg("Failed to send reply")
			return
		}
	}
}

// botLogger routes the Bot API library's log output through zerolog.
type botLogger struct {
	log zerolog.Logger
}

func (l botLogger) Println(v ...interface{}) {
	l.log.Debug().Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l botLogger) Printf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}
