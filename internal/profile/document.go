// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package profile

import (
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// Document is the part of a profile the agent reads. Unknown fields are
// ignored and every facet may be absent.
type Document struct {
	Affects        Affects        `json:"affects"`
	PhysicalStates PhysicalStates `json:"physicalStates"`
}

// Affects holds emotion readings.
type Affects struct {
	Emotions []Emotion `json:"emotions"`
}

// Emotion is one reading; Sentiment is in [-1, 1].
type Emotion struct {
	Timestamp int64   `json:"timestamp"`
	Emotion   string  `json:"emotion"`
	Sentiment float64 `json:"sentiment"`
}

// PhysicalStates holds body readings.
type PhysicalStates struct {
	Sleep []Sleep `json:"sleep"`
}

// Sleep is one night's record.
type Sleep struct {
	Timestamp     int64 `json:"timestamp"`
	MinutesAsleep int   `json:"minutesAsleep"`
}

// Facts derives situational facts from the latest readings: mood is good
// when the latest sentiment is not negative, and the user is rested after
// at least restedMinutes of sleep.
func (d *Document) Facts(restedMinutes int) usercontext.UserContext {
	var uc usercontext.UserContext

	if e, ok := latestEmotion(d.Affects.Emotions); ok {
		good := e.Sentiment >= 0
		uc.Mood = &good
	}
	if s, ok := latestSleep(d.PhysicalStates.Sleep); ok {
		rested := s.MinutesAsleep >= restedMinutes
		uc.Rested = &rested
	}
	return uc
}

// latestEmotion returns the reading with the highest timestamp; the first
// one wins ties.
func latestEmotion(readings []Emotion) (Emotion, bool) {
	if len(readings) == 0 {
		return Emotion{}, false
	}
	best := readings[0]
	for _, r := range readings[1:] {
		if r.Timestamp > best.Timestamp {
			best = r
		}
	}
	return best, true
}

func latestSleep(records []Sleep) (Sleep, bool) {
	if len(records) == 0 {
		return Sleep{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if r.Timestamp > best.Timestamp {
			best = r
		}
	}
	return best, true
}
