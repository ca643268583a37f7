// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package journal keeps an audit trail of handled conversation turns.
//
// Record publishes each turn on an in-process Watermill topic and returns
// immediately. The Journal itself is a suture service: its Serve loop
// consumes the topic and persists turns to BadgerDB, maintaining a per-user
// summary that backs the aggregate users log.
//
// User state is never restored from the journal; it is an audit trail only.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cicerone/internal/conversation"
	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/metrics"
)

// DefaultTopic is the topic turns are published on.
const DefaultTopic = "conversation.turns"

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("journal closed")

// Config configures a Journal.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path     string
	InMemory bool

	// Topic defaults to DefaultTopic.
	Topic string

	// Buffer is the subscriber channel buffer.
	Buffer int64
}

// Journal publishes and persists conversation turns.
type Journal struct {
	db       *badger.DB
	pubsub   *gochannel.GoChannel
	messages <-chan *message.Message
	topic    string

	mu     sync.RWMutex
	closed bool
}

// Open opens the store and subscribes to the topic. Turns recorded before
// Serve runs wait in the topic buffer.
func Open(cfg Config) (*Journal, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("journal: path is required unless in memory")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logger := watermill.NewSlogLogger(logging.NewSlogLogger("journal"))
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.Buffer}, logger)

	messages, err := pubsub.Subscribe(context.Background(), cfg.Topic)
	if err != nil {
		_ = pubsub.Close()
		_ = db.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", cfg.Topic, err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Str("topic", cfg.Topic).
		Msg("Journal opened")

	return &Journal{db: db, pubsub: pubsub, messages: messages, topic: cfg.Topic}, nil
}

// Record publishes t. It does not wait for persistence.
func (j *Journal) Record(ctx context.Context, t conversation.Turn) error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrClosed
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("user_id", strconv.FormatInt(t.UserID, 10))
	msg.Metadata.Set("command", t.Command)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}

	if err := j.pubsub.Publish(j.topic, msg); err != nil {
		return fmt.Errorf("publish turn: %w", err)
	}
	return nil
}

// Serve persists published turns until ctx ends or the journal closes.
func (j *Journal) Serve(ctx context.Context) error {
	log := logging.WithComponent("journal")
	log.Info().Str("topic", j.topic).Msg("Journal subscriber started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-j.messages:
			if !ok {
				log.Info().Msg("Journal subscription closed")
				return suture.ErrDoNotRestart
			}
			err := j.persist(msg)
			metrics.RecordJournalEntry(err)
			if err != nil {
				log.Error().Err(err).
					Str("message_id", msg.UUID).
					Str("user_id", msg.Metadata.Get("user_id")).
					Msg("Failed to persist turn")
			}
			// Failed turns are dropped; redelivery would spin on the same payload.
			msg.Ack()
		}
	}
}

// String names the service in supervisor logs.
func (j *Journal) String() string {
	return "journal-subscriber"
}

func (j *Journal) persist(msg *message.Message) error {
	var t conversation.Turn
	if err := json.Unmarshal(msg.Payload, &t); err != nil {
		return fmt.Errorf("decode turn: %w", err)
	}
	return j.store(msg.UUID, &t)
}

// Close stops the pub/sub and closes the store.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	j.mu.Unlock()

	pubErr := j.pubsub.Close()
	dbErr := j.db.Close()
	return errors.Join(pubErr, dbErr)
}
