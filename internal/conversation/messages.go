// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

import (
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// Fixed reply texts.
const (
	MessageWelcome = "Welcome to Cicerone! I suggest places to visit near you.\n" +
		"Answer a short survey (survey), pick the activities you like (set-contexts) " +
		"and share your position (set-location). Then ask for get-recommendation.\n" +
		"Send help for the full list of commands."

	MessageLogin         = "Send me your profile username."
	MessageLoginComplete = "Login completed."
	MessageLoginFailed   = "The profile service is not reachable right now, please try again later."
	MessageLoginDisabled = "Login is not available on this server."

	MessageSurveyStart           = "Let's start the survey!\n"
	MessageSurveyComplete        = "Survey completed, thank you!"
	MessageSurveyAlreadyComplete = "You have already answered the survey. Send reset-answers to start over."
	MessageSurveyReset           = "Your answers have been deleted."
	MessageSurveyEmptyAnswer     = "Please send a non-empty answer."

	MessagePosition        = "Share your position with the button below."
	MessagePositionSaved   = "Position saved."
	MessagePositionMissing = "That was not a position. Send set-location to try again."

	MessageActivitiesChosen = "You have already chosen your activities. Send show-contexts to see them or reset-contexts to clear them."
	MessageActivitiesSaved  = "Your activities have been saved."
	MessageActivitiesError  = "I don't know some of those activities. Send set-contexts to try again, using only the listed activities separated by spaces."
	MessageActivitiesReset  = "Your activities have been cleared."

	MessageCompany       = "Who are you with?"
	MessageRested        = "Are you rested?"
	MessageMood          = "How is your mood?"
	MessageActivity      = "Do you feel like doing some activity?"
	MessageContextUpdate = "Context updated."
	MessageContextError  = "Please use one of the suggested answers. Send the command again to retry."

	MessagePreferencesIncomplete = "Your preferences are incomplete: answer the survey, choose your activities and share your position first."
	MessageMissingCompany        = "I don't know who you are with. Send set-company first."
	MessageMissingRested         = "I don't know if you are rested. Send set-rested first."
	MessageMissingMood           = "I don't know your mood. Send set-mood first."
	MessageMissingActivity       = "I don't know if you want an activity. Send set-activity first."
	MessageNoResult              = "Sorry, I found nothing suitable near you."
	MessageUnavailable           = "No recommendation is available right now, please try again later."

	MessageUnknownCommand = "Unknown command: %s\nSend help for the list of commands."

	MessageHelp = "Commands:\n" +
		"begin - start\n" +
		"login - connect your profile\n" +
		"survey - answer the preference survey\n" +
		"set-location - share your position\n" +
		"set-contexts - choose your activities\n" +
		"show-answers - show your survey answers\n" +
		"show-contexts - show your activities\n" +
		"reset-answers - delete your survey answers\n" +
		"reset-contexts - clear your activities\n" +
		"get-recommendation - get a place to visit\n" +
		"set-company - tell me who you are with\n" +
		"set-rested - tell me if you are rested\n" +
		"set-mood - tell me your mood\n" +
		"set-activity - tell me if you want an activity\n" +
		"get-log - download your preferences\n" +
		"get-users-log - download the users log\n" +
		"help - show this message"

	MessageNotAuthorized      = "You are not authorized to use this command."
	MessageConfiguration      = "Choose the recommendation configuration: 0 random, 1 content-based, 2 context-aware."
	MessageConfigurationSet   = "Configuration %d applied to %d users."
	MessageConfigurationError = "Invalid configuration. Send set-configuration to try again."
	MessageConfigurationShow  = "Current configuration: %d (%s)."

	MessageBusy        = "I'm still working on your previous messages, please wait a moment."
	MessageRateLimited = "You are sending messages too fast, please slow down."
	MessageReportError = "The report could not be generated, please try again later."

	CaptionPreferencesLog = "Preferences log file."
	CaptionUsersLog       = "Users log file."
)

// ConfigurationOptions is the keyboard of the configuration prompt.
var ConfigurationOptions = []string{"0", "1", "2"}

var missingMessages = map[usercontext.Field]string{
	usercontext.FieldCompany:  MessageMissingCompany,
	usercontext.FieldRested:   MessageMissingRested,
	usercontext.FieldMood:     MessageMissingMood,
	usercontext.FieldActivity: MessageMissingActivity,
}
