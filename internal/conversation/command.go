// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

// Command is a conversation command. Its wire token is the exact text a
// user sends.
type Command int

const (
	CommandUnknown Command = iota
	CommandBegin
	CommandLogin
	CommandSurvey
	CommandSetLocation
	CommandSetContexts
	CommandShowAnswers
	CommandShowContexts
	CommandResetAnswers
	CommandResetContexts
	CommandGetRecommendation
	CommandSetCompany
	CommandSetRested
	CommandSetMood
	CommandSetActivity
	CommandHelp
	CommandGetLog
	CommandGetUsersLog
	CommandSetConfiguration
	CommandGetConfiguration
)

var commandTokens = map[Command]string{
	CommandUnknown:           "unknown",
	CommandBegin:             "begin",
	CommandLogin:             "login",
	CommandSurvey:            "survey",
	CommandSetLocation:       "set-location",
	CommandSetContexts:       "set-contexts",
	CommandShowAnswers:       "show-answers",
	CommandShowContexts:      "show-contexts",
	CommandResetAnswers:      "reset-answers",
	CommandResetContexts:     "reset-contexts",
	CommandGetRecommendation: "get-recommendation",
	CommandSetCompany:        "set-company",
	CommandSetRested:         "set-rested",
	CommandSetMood:           "set-mood",
	CommandSetActivity:       "set-activity",
	CommandHelp:              "help",
	CommandGetLog:            "get-log",
	CommandGetUsersLog:       "get-users-log",
	CommandSetConfiguration:  "set-configuration",
	CommandGetConfiguration:  "get-configuration",
}

var tokenCommands = func() map[string]Command {
	m := make(map[string]Command, len(commandTokens))
	for c, tok := range commandTokens {
		if c != CommandUnknown {
			m[tok] = c
		}
	}
	return m
}()

// String returns the wire token.
func (c Command) String() string {
	if tok, ok := commandTokens[c]; ok {
		return tok
	}
	return commandTokens[CommandUnknown]
}

// ParseCommand matches text exactly against the command tokens. Case and
// surrounding whitespace matter.
func ParseCommand(text string) (Command, bool) {
	c, ok := tokenCommands[text]
	return c, ok
}

// stateCommand maps a session state back to its command; unknown or
// foreign states map to CommandUnknown.
func stateCommand(state string) Command {
	c, ok := tokenCommands[state]
	if !ok {
		return CommandUnknown
	}
	return c
}

// Privileged reports whether the command needs administrator rights.
func (c Command) Privileged() bool {
	return c == CommandSetConfiguration || c == CommandGetConfiguration
}

// MultiTurn reports whether the command waits for further input.
func (c Command) MultiTurn() bool {
	switch c {
	case CommandLogin, CommandSurvey, CommandSetLocation, CommandSetContexts,
		CommandSetCompany, CommandSetRested, CommandSetMood, CommandSetActivity,
		CommandSetConfiguration:
		return true
	default:
		return false
	}
}

// Commands returns every user-facing command in menu order.
func Commands() []Command {
	return []Command{
		CommandBegin, CommandLogin, CommandSurvey, CommandSetLocation,
		CommandSetContexts, CommandShowAnswers, CommandShowContexts,
		CommandResetAnswers, CommandResetContexts, CommandGetRecommendation,
		CommandSetCompany, CommandSetRested, CommandSetMood, CommandSetActivity,
		CommandHelp, CommandGetLog, CommandGetUsersLog,
	}
}
