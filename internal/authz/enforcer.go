// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package authz decides who may run privileged conversation commands,
// using a Casbin RBAC model. Chat users are subjects of the form
// "user:<id>"; command tokens are objects; the action is always "run".
//
// The embedded policy grants the admin role the configuration commands.
// Admins are assigned from configuration at startup:
//
//	e, err := authz.NewEnforcer(&authz.EnforcerConfig{AdminIDs: cfg.Security.AdminIDs})
//	ok, err := e.Authorize(userID, "set-configuration")
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/metrics"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// RoleAdmin is the role holding the privileged commands.
const RoleAdmin = "admin"

// ActionRun is the only action of the model.
const ActionRun = "run"

// EnforcerConfig holds configuration for the enforcer.
type EnforcerConfig struct {
	// ModelPath overrides the embedded model when the file exists.
	ModelPath string

	// PolicyPath overrides the embedded policy when the file exists.
	PolicyPath string

	// AdminIDs are granted RoleAdmin.
	AdminIDs []int64
}

// Enforcer wraps a synchronized Casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads the model and policy and assigns the admin role.
func NewEnforcer(config *EnforcerConfig) (*Enforcer, error) {
	if config == nil {
		config = &EnforcerConfig{}
	}

	var (
		m   model.Model
		err error
	)
	if config.ModelPath != "" && fileExists(config.ModelPath) {
		m, err = model.NewModelFromFile(config.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if config.PolicyPath != "" && fileExists(config.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(config.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{enforcer: enforcer}
	for _, id := range config.AdminIDs {
		if _, err := e.AddRoleForUser(id, RoleAdmin); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// loadEmbeddedPolicy parses "p, sub, obj, act" and "g, user, role" lines.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch rule := parts[1:]; parts[0] {
		case "p":
			if len(rule) != 3 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if len(rule) != 2 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("unknown policy type in %q", line)
		}
	}
	return nil
}

// Subject returns the Casbin subject of a chat user.
func Subject(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// Authorize reports whether the user may run the command.
func (e *Enforcer) Authorize(userID int64, command string) (bool, error) {
	allowed, err := e.enforcer.Enforce(Subject(userID), command, ActionRun)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	metrics.RecordAuthorization(command, allowed)
	if !allowed {
		log := logging.WithComponent("authz")
		log.Debug().
			Int64("user_id", userID).
			Str("command", command).
			Msg("Command denied")
	}
	return allowed, nil
}

// AddRoleForUser assigns a role to a chat user.
func (e *Enforcer) AddRoleForUser(userID int64, role string) (bool, error) {
	added, err := e.enforcer.AddGroupingPolicy(Subject(userID), role)
	if err != nil {
		return false, fmt.Errorf("failed to add role: %w", err)
	}
	return added, nil
}

// DeleteRoleForUser removes a role from a chat user.
func (e *Enforcer) DeleteRoleForUser(userID int64, role string) (bool, error) {
	removed, err := e.enforcer.RemoveGroupingPolicy(Subject(userID), role)
	if err != nil {
		return false, fmt.Errorf("failed to remove role: %w", err)
	}
	return removed, nil
}

// UsersForRole returns the subjects holding a role.
func (e *Enforcer) UsersForRole(role string) ([]string, error) {
	return e.enforcer.GetUsersForRole(role)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
