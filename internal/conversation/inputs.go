// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/survey"
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// Input handlers run for non-command text while a multi-turn command is
// pending.

func (h *Handler) inputLogin(ctx context.Context, t *turn) Reply {
	t.reset()
	status, err := h.profile.Login(ctx, t.in.UserID, strings.TrimSpace(t.in.Text))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Profile login failed")
		return text(MessageLoginFailed)
	}
	if uc := t.prefs.UserContext; uc != nil {
		uc.Merge(h.ontology.Defaults(t.in.UserID))
	}
	return text(status + "\n" + MessageLoginComplete)
}

func (h *Handler) inputSurvey(ctx context.Context, t *turn) Reply {
	s := t.prefs.Survey
	if err := s.SetNextAnswer(t.in.Text); err != nil {
		if errors.Is(err, survey.ErrEmptyAnswer) {
			return text(MessageSurveyEmptyAnswer)
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("Survey answer rejected")
		t.reset()
		return TextReply{Text: MessageSurveyAlreadyComplete, RemoveKeyboard: true}
	}

	q, err := s.NextQuestion()
	if err != nil {
		t.reset()
		return TextReply{Text: MessageSurveyComplete, RemoveKeyboard: true}
	}
	return TextReply{Text: q.Text, Keyboard: oneColumn(q.Options)}
}

func (h *Handler) inputSetLocation(ctx context.Context, t *turn) Reply {
	t.reset()
	loc := t.in.Location
	if loc == nil || !loc.Valid() {
		logging.Ctx(ctx).Debug().Msg("Expected a location")
		return TextReply{Text: MessagePositionMissing, RemoveKeyboard: true}
	}
	t.prefs.SetLocation(*loc)
	return TextReply{Text: MessagePositionSaved, RemoveKeyboard: true}
}

func (h *Handler) inputSetContexts(ctx context.Context, t *turn) Reply {
	e := t.prefs.Contexts
	if err := e.SetActivityFlags(strings.Fields(t.in.Text)); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Activities rejected")
		t.reset()
		return text(MessageActivitiesError)
	}

	c, err := e.NextCategory()
	if err != nil {
		t.reset()
		return TextReply{Text: MessageActivitiesSaved, Markdown: true}
	}
	return TextReply{Text: c.String(), Markdown: true}
}

// contextSetter builds the input handler of a single-answer context
// command. The user context is created from the ontology when needed.
func (h *Handler) contextSetter(set func(*usercontext.UserContext, string) error) inputHandler {
	return func(ctx context.Context, t *turn) Reply {
		t.reset()
		uc := t.prefs.EnsureUserContext(h.ontology, t.in.UserID)
		if err := set(uc, t.in.Text); err != nil {
			logging.Ctx(ctx).Debug().Err(err).Msg("Context answer rejected")
			return TextReply{Text: MessageContextError, RemoveKeyboard: true}
		}
		return TextReply{Text: MessageContextUpdate, RemoveKeyboard: true}
	}
}
