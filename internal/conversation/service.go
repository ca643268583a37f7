// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

import (
	"context"
	"errors"

	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/session"
)

// ErrRateLimited is returned when a user sends messages too fast.
var ErrRateLimited = errors.New("conversation: rate limited")

// Service is the entry point for transports. It rate limits each user and
// runs the user's turns one at a time, in arrival order.
type Service struct {
	handler    *Handler
	dispatcher *session.Dispatcher
	limiter    *session.Limiter
}

// NewService wires a handler to a dispatcher. A nil limiter disables rate
// limiting.
func NewService(h *Handler, d *session.Dispatcher, l *session.Limiter) *Service {
	return &Service{handler: h, dispatcher: d, limiter: l}
}

// Process handles one inbound message. With ErrRateLimited or
// session.ErrBusy the returned reply is a notice that should still be
// sent; with other errors the reply is nil.
func (s *Service) Process(ctx context.Context, in Inbound) (Reply, error) {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	ctx = logging.ContextWithUserID(ctx, in.UserID)

	if !s.limiter.Allow(in.UserID) {
		logging.Ctx(ctx).Warn().Msg("Message rate limited")
		return text(MessageRateLimited), ErrRateLimited
	}

	var reply Reply
	err := s.dispatcher.Do(ctx, in.UserID, func(ctx context.Context) error {
		reply = s.handler.Handle(ctx, in)
		return nil
	})
	switch {
	case errors.Is(err, session.ErrBusy):
		logging.Ctx(ctx).Warn().Msg("Mailbox full, message dropped")
		return text(MessageBusy), err
	case err != nil:
		return nil, err
	}
	return reply, nil
}

// Deliver sends a reply back through the transport that received the turn.
type Deliver func(ctx context.Context, reply Reply)

// Submit queues in behind the user's earlier turns and returns without
// waiting; deliver runs on the user's worker once the turn is handled.
// Rate-limit and busy notices are delivered before Submit returns. Submit
// must be called from a single goroutine per transport to keep each user's
// turns in arrival order.
func (s *Service) Submit(ctx context.Context, in Inbound, deliver Deliver) error {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	ctx = logging.ContextWithUserID(ctx, in.UserID)

	if !s.limiter.Allow(in.UserID) {
		logging.Ctx(ctx).Warn().Msg("Message rate limited")
		deliver(ctx, text(MessageRateLimited))
		return ErrRateLimited
	}

	err := s.dispatcher.Submit(ctx, in.UserID, func(ctx context.Context) error {
		deliver(ctx, s.handler.Handle(ctx, in))
		return nil
	})
	if errors.Is(err, session.ErrBusy) {
		logging.Ctx(ctx).Warn().Msg("Mailbox full, message dropped")
		deliver(ctx, text(MessageBusy))
	}
	return err
}
