// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cicerone/internal/conversation"
	"github.com/tomtom215/cicerone/internal/geo"
	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/session"
	"github.com/tomtom215/cicerone/internal/validation"
)

const maxRequestBytes = 64 << 10

// Processor handles one inbound message and waits for its reply.
type Processor interface {
	Process(ctx context.Context, in conversation.Inbound) (conversation.Reply, error)
}

// ReadinessCheck reports whether the server can answer recommendations.
type ReadinessCheck func(ctx context.Context) error

// MessageRequest is the body of POST /api/v1/messages.
type MessageRequest struct {
	UserID   int64            `json:"user_id" validate:"required,ne=0"`
	Username string           `json:"username,omitempty" validate:"max=64"`
	Text     string           `json:"text,omitempty" validate:"max=4096"`
	Location *LocationRequest `json:"location,omitempty"`
}

// LocationRequest is a shared position.
type LocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// MessageResponse carries exactly one of Text and Document.
type MessageResponse struct {
	Kind     string                      `json:"kind"`
	Text     *conversation.TextReply     `json:"text,omitempty"`
	Document *conversation.DocumentReply `json:"document,omitempty"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Error         string  `json:"error,omitempty"`
}

// Handler serves the API endpoints.
type Handler struct {
	processor Processor
	ready     ReadinessCheck
	startedAt time.Time
}

// NewHandler creates a handler. A nil ready check always passes.
func NewHandler(p Processor, ready ReadinessCheck) *Handler {
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}
	return &Handler{processor: p, ready: ready, startedAt: time.Now()}
}

// PostMessage handles one conversation turn.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be a JSON message", nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondAPIError(w, http.StatusBadRequest, verr.ToAPIError())
		return
	}
	if req.Text == "" && req.Location == nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "A message needs text or a location", nil)
		return
	}

	in := conversation.Inbound{
		UserID:     req.UserID,
		Username:   req.Username,
		Text:       req.Text,
		ReceivedAt: time.Now(),
	}
	if req.Location != nil {
		in.Location = &geo.Point{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude}
	}

	reply, err := h.processor.Process(r.Context(), in)
	switch {
	case errors.Is(err, conversation.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", conversation.MessageRateLimited, nil)
		return
	case errors.Is(err, session.ErrBusy):
		respondError(w, http.StatusServiceUnavailable, "BUSY", conversation.MessageBusy, nil)
		return
	case errors.Is(err, session.ErrClosed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "The service is shutting down", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to handle message", err)
		return
	}

	resp := MessageResponse{Kind: reply.Kind()}
	switch rep := reply.(type) {
	case conversation.TextReply:
		resp.Text = &rep
	case conversation.DocumentReply:
		resp.Document = &rep
	}
	respondSuccess(w, resp)
}

// Health reports liveness and readiness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", UptimeSeconds: time.Since(h.startedAt).Seconds()}
	if err := h.ready(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, &Response{Status: "error", Data: resp})
		return
	}
	respondSuccess(w, resp)
}
