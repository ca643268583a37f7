// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/metrics"
	"github.com/tomtom215/cicerone/internal/recommend"
	"github.com/tomtom215/cicerone/internal/session"
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// Recommender picks a venue for a user.
type Recommender interface {
	Recommend(ctx context.Context, userID int64, p *session.Preferences) recommend.Outcome
}

// Authorizer decides whether a user may run a privileged command.
type Authorizer interface {
	Authorize(userID int64, command string) (bool, error)
}

// ProfileClient exchanges login credentials with the profile service and
// returns a status text for the user.
type ProfileClient interface {
	Login(ctx context.Context, userID int64, credentials string) (string, error)
}

// UsersReport renders the aggregate users log.
type UsersReport interface {
	UsersLog(ctx context.Context) ([]byte, error)
}

// Turn describes one handled message.
type Turn struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Command   string    `json:"command"`
	Input     string    `json:"input,omitempty"`
	StateFrom string    `json:"state_from"`
	StateTo   string    `json:"state_to"`
	ReplyKind string    `json:"reply_kind"`
	At        time.Time `json:"at"`
}

// Recorder receives every handled turn.
type Recorder interface {
	Record(ctx context.Context, t Turn) error
}

// Deps are the collaborators of a Handler. Profile, Reports and Recorder
// are optional.
type Deps struct {
	Sessions    *session.Manager
	Recommender Recommender
	Ontology    usercontext.Ontology
	Authorizer  Authorizer
	Profile     ProfileClient
	Reports     UsersReport
	Recorder    Recorder
}

type entryHandler func(ctx context.Context, t *turn) Reply

type inputHandler func(ctx context.Context, t *turn) Reply

// turn is the state of one message while it is being handled.
type turn struct {
	in      Inbound
	session *session.Session
	prefs   *session.Preferences
}

func (t *turn) set(c Command) {
	t.session.State = c.String()
}

func (t *turn) reset() {
	t.session.State = session.StateUnknown
}

// Handler is the conversation state machine. Handle must only be called
// for a user from that user's dispatcher worker.
type Handler struct {
	sessions    *session.Manager
	recommender Recommender
	ontology    usercontext.Ontology
	authorizer  Authorizer
	profile     ProfileClient
	reports     UsersReport
	recorder    Recorder
	now         func() time.Time

	entries map[Command]entryHandler
	inputs  map[Command]inputHandler
}

// NewHandler creates the state machine.
func NewHandler(deps Deps) (*Handler, error) {
	switch {
	case deps.Sessions == nil:
		return nil, errors.New("conversation: session manager is required")
	case deps.Recommender == nil:
		return nil, errors.New("conversation: recommender is required")
	case deps.Ontology == nil:
		return nil, errors.New("conversation: ontology is required")
	case deps.Authorizer == nil:
		return nil, errors.New("conversation: authorizer is required")
	}

	h := &Handler{
		sessions:    deps.Sessions,
		recommender: deps.Recommender,
		ontology:    deps.Ontology,
		authorizer:  deps.Authorizer,
		profile:     deps.Profile,
		reports:     deps.Reports,
		recorder:    deps.Recorder,
		now:         time.Now,
	}
	h.entries = map[Command]entryHandler{
		CommandBegin:             h.enterBegin,
		CommandLogin:             h.enterLogin,
		CommandSurvey:            h.enterSurvey,
		CommandSetLocation:       h.enterSetLocation,
		CommandSetContexts:       h.enterSetContexts,
		CommandShowAnswers:       h.enterShowAnswers,
		CommandShowContexts:      h.enterShowContexts,
		CommandResetAnswers:      h.enterResetAnswers,
		CommandResetContexts:     h.enterResetContexts,
		CommandGetRecommendation: h.enterGetRecommendation,
		CommandSetCompany:        prompt(CommandSetCompany, MessageCompany, usercontext.CompanyOptions),
		CommandSetRested:         prompt(CommandSetRested, MessageRested, usercontext.BooleanOptions),
		CommandSetMood:           prompt(CommandSetMood, MessageMood, usercontext.MoodOptions),
		CommandSetActivity:       prompt(CommandSetActivity, MessageActivity, usercontext.BooleanOptions),
		CommandHelp:              h.enterHelp,
		CommandGetLog:            h.enterGetLog,
		CommandGetUsersLog:       h.enterGetUsersLog,
		CommandSetConfiguration:  h.enterSetConfiguration,
		CommandGetConfiguration:  h.enterGetConfiguration,
	}
	h.inputs = map[Command]inputHandler{
		CommandLogin:            h.inputLogin,
		CommandSurvey:           h.inputSurvey,
		CommandSetLocation:      h.inputSetLocation,
		CommandSetContexts:      h.inputSetContexts,
		CommandSetCompany:       h.contextSetter((*usercontext.UserContext).SetCompany),
		CommandSetRested:        h.contextSetter((*usercontext.UserContext).SetRested),
		CommandSetMood:          h.contextSetter((*usercontext.UserContext).SetMood),
		CommandSetActivity:      h.contextSetter((*usercontext.UserContext).SetActivity),
		CommandSetConfiguration: h.inputSetConfiguration,
	}
	return h, nil
}

// Handle applies one inbound message to the user's session and returns the
// reply.
//
// A command token always starts that command. Other input continues the
// pending multi-turn command, if any; otherwise it is reported as an
// unknown command and the pending state is left alone. Privileged
// commands and their input are authorized before anything else runs.
func (h *Handler) Handle(ctx context.Context, in Inbound) Reply {
	if in.ReceivedAt.IsZero() {
		in.ReceivedAt = h.now()
	}
	s, created := h.sessions.GetOrCreate(in.UserID)
	s.Touch(in.Username, in.ReceivedAt)
	if created {
		logging.Ctx(ctx).Info().Str("username", in.Username).Msg("Session created")
	}

	t := &turn{in: in, session: s, prefs: s.Preferences}
	from := s.State
	pending := stateCommand(from)
	cmd, isCommand := ParseCommand(in.Text)

	label := cmd.String()
	var reply Reply
	switch {
	case isCommand && cmd.Privileged():
		reply = h.admin(ctx, t, cmd, h.entries[cmd])
	case isCommand:
		reply = h.entries[cmd](ctx, t)
	case pending.Privileged():
		label = inputLabel(in)
		reply = h.admin(ctx, t, pending, h.inputs[pending])
	case pending.MultiTurn():
		label = inputLabel(in)
		reply = h.inputs[pending](ctx, t)
	default:
		label = inputLabel(in)
		reply = text(fmt.Sprintf(MessageUnknownCommand, in.Text))
	}

	metrics.RecordMessage(label)
	metrics.RecordReply(reply.Kind())
	logging.Ctx(ctx).Debug().
		Str("command", label).
		Str("state_from", from).
		Str("state_to", s.State).
		Str("reply", reply.Kind()).
		Msg("Turn handled")

	h.record(ctx, Turn{
		UserID:    in.UserID,
		Username:  in.Username,
		Command:   label,
		Input:     journalInput(isCommand, pending, in),
		StateFrom: from,
		StateTo:   s.State,
		ReplyKind: reply.Kind(),
		At:        in.ReceivedAt,
	})
	return reply
}

func (h *Handler) record(ctx context.Context, t Turn) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.Record(ctx, t); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to record turn")
	}
}

func inputLabel(in Inbound) string {
	if in.Text == "" && in.Location != nil {
		return "location"
	}
	return "text"
}

// journalInput keeps free-text answers out of the journal for login, where
// the text is a credential.
func journalInput(isCommand bool, pending Command, in Inbound) string {
	switch {
	case isCommand:
		return ""
	case pending == CommandLogin:
		return "[redacted]"
	case in.Location != nil && in.Text == "":
		return in.Location.String()
	default:
		return in.Text
	}
}
