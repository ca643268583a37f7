// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

import (
	"context"
	"fmt"

	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/recommend"
)

// Entry handlers run when a command token arrives. Multi-turn commands
// set the pending state; the others answer at once and clear it.

func (h *Handler) enterBegin(_ context.Context, t *turn) Reply {
	t.set(CommandBegin)
	return text(MessageWelcome)
}

func (h *Handler) enterLogin(_ context.Context, t *turn) Reply {
	if h.profile == nil {
		t.reset()
		return text(MessageLoginDisabled)
	}
	t.set(CommandLogin)
	return text(MessageLogin)
}

func (h *Handler) enterSurvey(_ context.Context, t *turn) Reply {
	q, err := t.prefs.Survey.NextQuestion()
	if err != nil {
		t.reset()
		return text(MessageSurveyAlreadyComplete)
	}
	t.set(CommandSurvey)
	return TextReply{Text: MessageSurveyStart + q.Text, Keyboard: oneColumn(q.Options)}
}

func (h *Handler) enterSetLocation(_ context.Context, t *turn) Reply {
	t.set(CommandSetLocation)
	return TextReply{Text: MessagePosition, RequestLocation: true}
}

func (h *Handler) enterSetContexts(_ context.Context, t *turn) Reply {
	c, err := t.prefs.Contexts.NextCategory()
	if err != nil {
		t.reset()
		return text(MessageActivitiesChosen)
	}
	t.set(CommandSetContexts)
	return TextReply{Text: c.String(), Markdown: true}
}

func (h *Handler) enterShowAnswers(_ context.Context, t *turn) Reply {
	t.reset()
	return text(t.prefs.Survey.String())
}

func (h *Handler) enterShowContexts(_ context.Context, t *turn) Reply {
	t.reset()
	return TextReply{Text: t.prefs.Contexts.ShowChosen(), Markdown: true}
}

func (h *Handler) enterResetAnswers(_ context.Context, t *turn) Reply {
	t.reset()
	t.prefs.Survey.Reset()
	t.prefs.ResetRecommendation()
	return TextReply{Text: MessageSurveyReset, RemoveKeyboard: true}
}

func (h *Handler) enterResetContexts(_ context.Context, t *turn) Reply {
	t.reset()
	t.prefs.Contexts.ResetFlags()
	t.prefs.ResetRecommendation()
	return text(MessageActivitiesReset)
}

func (h *Handler) enterGetRecommendation(ctx context.Context, t *turn) Reply {
	t.reset()
	out := h.recommender.Recommend(ctx, t.in.UserID, t.prefs)
	switch out.Status {
	case recommend.StatusOK:
		return text(out.Venue.String())
	case recommend.StatusIncomplete:
		return text(MessagePreferencesIncomplete)
	case recommend.StatusMissingContext:
		if msg, ok := missingMessages[out.Missing]; ok {
			return text(msg)
		}
		return text(MessagePreferencesIncomplete)
	case recommend.StatusNoResult:
		return text(MessageNoResult)
	default:
		logging.Ctx(ctx).Warn().Err(out.Err).Str("region", out.Region).Msg("Recommendation unavailable")
		return text(MessageUnavailable)
	}
}

// prompt builds the entry handler of a single-answer context command.
func prompt(c Command, message string, options []string) entryHandler {
	return func(_ context.Context, t *turn) Reply {
		t.set(c)
		return TextReply{Text: message, Keyboard: oneRow(options)}
	}
}

func (h *Handler) enterHelp(_ context.Context, t *turn) Reply {
	t.reset()
	return text(MessageHelp)
}

func (h *Handler) enterGetLog(_ context.Context, t *turn) Reply {
	t.reset()
	return DocumentReply{
		Filename: fmt.Sprintf("preferences_%d.txt", t.in.UserID),
		Caption:  CaptionPreferencesLog,
		Content:  preferencesLog(t, h.now()),
	}
}

func (h *Handler) enterGetUsersLog(ctx context.Context, t *turn) Reply {
	t.reset()
	var (
		content []byte
		err     error
	)
	if h.reports != nil {
		content, err = h.reports.UsersLog(ctx)
	} else {
		content = sessionsLog(h.sessions.Snapshot())
	}
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to build users log")
		return text(MessageReportError)
	}
	return DocumentReply{Filename: "users.log", Caption: CaptionUsersLog, Content: content}
}
