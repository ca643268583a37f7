// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package conversation is the per-user dialogue state machine.
//
// Each inbound message is classified as a command token or free input.
// Command tokens run the command's entry handler; free input goes to the
// input handler of the pending multi-turn command. Dispatch is table
// driven:
//
//	(any state, command token)        -> entries[command]
//	(pending multi-turn, free input)  -> inputs[pending]
//	(otherwise)                       -> unknown command reply
//
// Privileged commands (set-configuration, get-configuration) and the input
// of a pending set-configuration are authorized before dispatch.
//
// Transports call Service.Process, which rate limits users and serializes
// each user's turns through a session.Dispatcher.
package conversation
