// Package policy resolves custom-command policies from a layered,
// scope-nested authoring context.
package policy

import (
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/zerr"
)

// Scope is a frozen set of policy statuses.
type Scope = domain.PolicySnapshot

// State is a stack of policy scopes. Rule files push a scope when they
// enter a subdirectory and pop it when they leave, so settings made in a
// subdirectory never leak into its parent.
//
// State is not safe for concurrent use; it lives for one evaluation pass.
type State struct {
	scopes []scopeEntry
}

type scopeEntry struct {
	statuses domain.PolicySnapshot
}

var _ domain.PolicyResolver = (*State)(nil)

// NewState returns a State with a root scope where every policy is NEW.
func NewState() *State {
	return &State{scopes: []scopeEntry{{}}}
}

func (s *State) current() *scopeEntry {
	return &s.scopes[len(s.scopes)-1]
}

// PushScope opens a child scope that inherits the current statuses.
func (s *State) PushScope() {
	s.scopes = append(s.scopes, *s.current())
}

// PopScope discards the innermost scope.
func (s *State) PopScope() error {
	if len(s.scopes) == 1 {
		return domain.ErrScopeUnderflow
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
	return nil
}

// Depth returns the number of open scopes, the root included.
func (s *State) Depth() int {
	return len(s.scopes)
}

// SetMinimumVersion resolves every tracked policy in the current scope:
// NEW when it was introduced at or before v, OLD otherwise.
// Explicit SetPolicy calls made earlier in the scope are overwritten.
func (s *State) SetMinimumVersion(v Version) error {
	if v.Compare(CurrentVersion) > 0 {
		err := zerr.With(domain.ErrUnsupportedVersion, "requested", v.String())
		return zerr.With(err, "supported", CurrentVersion.String())
	}

	cur := s.current()
	for info := range domain.KnownPolicies() {
		status := domain.PolicyOld
		if MustParseVersion(info.Since).Compare(v) <= 0 {
			status = domain.PolicyNew
		}
		cur.statuses = cur.statuses.With(info.ID, status)
	}
	return nil
}

// SetPolicy overrides one policy in the current scope.
func (s *State) SetPolicy(id domain.PolicyID, status domain.PolicyStatus) error {
	if !id.Valid() {
		return zerr.With(domain.ErrUnknownPolicy, "policy", id.String())
	}
	cur := s.current()
	cur.statuses = cur.statuses.With(id, status)
	return nil
}

// PolicyStatus implements domain.PolicyResolver for the current scope.
func (s *State) PolicyStatus(id domain.PolicyID) domain.PolicyStatus {
	return s.current().statuses.Status(id)
}

// Scope returns a frozen copy of the current scope's statuses.
func (s *State) Scope() Scope {
	return s.current().statuses
}
