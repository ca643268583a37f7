// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/cicerone/internal/catalog"
	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/recommend"
)

// admin authorizes a privileged command or its pending input and runs
// next on success. Denied users get a fixed reply and lose the pending
// state.
func (h *Handler) admin(ctx context.Context, t *turn, c Command, next func(context.Context, *turn) Reply) Reply {
	allowed, err := h.authorizer.Authorize(t.in.UserID, c.String())
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("command", c.String()).Msg("Authorization check failed")
	}
	if err != nil || !allowed {
		logging.Ctx(ctx).Warn().Str("command", c.String()).Msg("Privileged command denied")
		t.reset()
		return text(MessageNotAuthorized)
	}
	return next(ctx, t)
}

func (h *Handler) enterSetConfiguration(_ context.Context, t *turn) Reply {
	t.set(CommandSetConfiguration)
	return TextReply{Text: MessageConfiguration, Keyboard: oneRow(ConfigurationOptions)}
}

func (h *Handler) inputSetConfiguration(ctx context.Context, t *turn) Reply {
	t.reset()
	v, err := strconv.Atoi(strings.TrimSpace(t.in.Text))
	if err != nil || !recommend.ValidConfiguration(v) {
		return TextReply{Text: MessageConfigurationError, RemoveKeyboard: true}
	}
	n := h.sessions.Broadcast(v)
	logging.Ctx(ctx).Info().Int("configuration", v).Int("sessions", n).Msg("Configuration broadcast")
	return TextReply{Text: fmt.Sprintf(MessageConfigurationSet, v, n), RemoveKeyboard: true}
}

func (h *Handler) enterGetConfiguration(_ context.Context, t *turn) Reply {
	t.reset()
	v := t.prefs.Configuration()
	return text(fmt.Sprintf(MessageConfigurationShow, v, configurationLabel(v)))
}

func configurationLabel(v int) string {
	switch v {
	case recommend.ConfigurationContentBased:
		return catalog.ContentBased.String()
	case recommend.ConfigurationContextAware:
		return catalog.ContextAware.String()
	default:
		return "random"
	}
}
