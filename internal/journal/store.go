// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cicerone/internal/conversation"
)

// Key layout:
//
//	turn:<user>:<unix nanos, 20 digits>:<message id>  -> Turn
//	user:<user>                                       -> Summary
const (
	prefixTurn = "turn:"
	prefixUser = "user:"
)

// Summary aggregates one user's journal.
type Summary struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	Turns       int       `json:"turns"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	LastCommand string    `json:"last_command"`
}

func turnPrefix(userID int64) []byte {
	return []byte(prefixTurn + strconv.FormatInt(userID, 10) + ":")
}

func turnKey(userID int64, at time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%d:%020d:%s", prefixTurn, userID, at.UnixNano(), id))
}

func userKey(userID int64) []byte {
	return []byte(prefixUser + strconv.FormatInt(userID, 10))
}

func (j *Journal) store(id string, t *conversation.Turn) error {
	if t.At.IsZero() {
		t.At = time.Now()
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	return j.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(turnKey(t.UserID, t.At, id), payload); err != nil {
			return err
		}

		sum := Summary{UserID: t.UserID, FirstSeen: t.At}
		item, err := txn.Get(userKey(t.UserID))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &sum)
			}); err != nil {
				return fmt.Errorf("decode summary: %w", err)
			}
		}

		// Turns may arrive out of order; the newest turn names the user and
		// an older one only fills a missing name.
		sum.Turns++
		if t.At.Before(sum.FirstSeen) {
			sum.FirstSeen = t.At
		}
		latest := !t.At.Before(sum.LastSeen)
		if latest {
			sum.LastSeen = t.At
			sum.LastCommand = t.Command
		}
		if t.Username != "" && (latest || sum.Username == "") {
			sum.Username = t.Username
		}

		encoded, err := json.Marshal(sum)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		return txn.Set(userKey(t.UserID), encoded)
	})
}

// Users returns every user's summary ordered by user ID.
func (j *Journal) Users(ctx context.Context) ([]Summary, error) {
	var out []Summary
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixUser)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var s Summary
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &s)
			}); err != nil {
				return fmt.Errorf("decode summary %q: %w", it.Item().Key(), err)
			}
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b Summary) int {
		switch {
		case a.UserID < b.UserID:
			return -1
		case a.UserID > b.UserID:
			return 1
		}
		return 0
	})
	return out, nil
}

// Turns returns up to limit of the user's most recent turns, oldest first.
// A limit of 0 returns all of them.
func (j *Journal) Turns(ctx context.Context, userID int64, limit int) ([]conversation.Turn, error) {
	var out []conversation.Turn
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := turnPrefix(userID)
		seek := append(bytes.Clone(prefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(out) >= limit {
				break
			}
			var t conversation.Turn
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			}); err != nil {
				return fmt.Errorf("decode turn %q: %w", it.Item().Key(), err)
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// UsersLog renders the aggregate users log document.
func (j *Journal) UsersLog(ctx context.Context) ([]byte, error) {
	users, err := j.Users(ctx)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "Users: %d\n", len(users))
	for _, u := range users {
		name := u.Username
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, "%d\t%s\tturns=%d\tfirst_seen=%s\tlast_seen=%s\tlast_command=%s\n",
			u.UserID, name, u.Turns,
			u.FirstSeen.UTC().Format(time.RFC3339), u.LastSeen.UTC().Format(time.RFC3339),
			u.LastCommand)
	}
	return b.Bytes(), nil
}
