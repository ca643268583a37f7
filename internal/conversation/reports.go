// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

import (
	"bytes"
	"fmt"
	"time"

	"github.com/tomtom215/cicerone/internal/session"
)

// preferencesLog renders the user's preferences document.
func preferencesLog(t *turn, now time.Time) []byte {
	p := t.prefs
	var b bytes.Buffer

	fmt.Fprintf(&b, "User: %d", t.in.UserID)
	if name := t.session.Username(); name != "" {
		fmt.Fprintf(&b, " (%s)", name)
	}
	fmt.Fprintf(&b, "\nGenerated: %s\n\n", now.UTC().Format(time.RFC3339))

	b.WriteString("== Survey ==\n")
	b.WriteString(p.Survey.String())
	b.WriteString("\n== Activities ==\n")
	b.WriteString(p.Contexts.ShowChosen())

	b.WriteString("\n== Location ==\n")
	if p.Location != nil {
		b.WriteString(p.Location.String())
	} else {
		b.WriteString("not set")
	}

	b.WriteString("\n\n== Context ==\n")
	if p.UserContext != nil {
		b.WriteString(p.UserContext.String())
	} else {
		b.WriteString("not set")
	}

	fmt.Fprintf(&b, "\n\n== Configuration ==\n%d (%s)\n", p.Configuration(), configurationLabel(p.Configuration()))

	b.WriteString("\n== Recommendation ==\n")
	if p.Recommendation != nil {
		b.WriteString(p.Recommendation.String())
	} else {
		b.WriteString("none")
	}
	b.WriteString("\n")
	return b.Bytes()
}

// sessionsLog renders the users log from in-memory sessions, for servers
// running without a journal.
func sessionsLog(summaries []session.Summary) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Users: %d\n", len(summaries))
	for _, s := range summaries {
		name := s.Username
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, "%d\t%s\tconfiguration=%d\tfirst_seen=%s\tlast_seen=%s\n",
			s.UserID, name, s.Configuration,
			s.CreatedAt.UTC().Format(time.RFC3339), s.LastSeen.UTC().Format(time.RFC3339))
	}
	return b.Bytes()
}
