package domain

import (
	"iter"
	"strings"
)

// PolicyStatus is the resolved behavior of a policy.
type PolicyStatus uint8

const (
	// PolicyNew selects the current behavior. It is the zero value.
	PolicyNew PolicyStatus = iota
	// PolicyOld selects the legacy behavior.
	PolicyOld
)

// String returns "NEW" or "OLD".
func (s PolicyStatus) String() string {
	if s == PolicyOld {
		return "OLD"
	}
	return "NEW"
}

// ParsePolicyStatus parses "OLD" or "NEW", case-insensitively.
func ParsePolicyStatus(s string) (PolicyStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OLD":
		return PolicyOld, true
	case "NEW":
		return PolicyNew, true
	default:
		return PolicyNew, false
	}
}

// PolicyID identifies one tracked custom-command policy.
type PolicyID uint8

const (
	// PolicyDepfileTransform controls whether generators rewrite depfile
	// paths relative to the build root.
	PolicyDepfileTransform PolicyID = iota
	// PolicyParallelCommands controls whether custom commands of one target
	// may run concurrently.
	PolicyParallelCommands
	// PolicyRequireOutputs controls whether a rule declaring neither outputs
	// nor byproducts is rejected.
	PolicyRequireOutputs

	policyCount
)

// PolicyInfo describes a tracked policy.
type PolicyInfo struct {
	ID   PolicyID
	Code string
	Name string
	Doc  string
	// Since is the version that introduced the NEW behavior, as "major.minor".
	Since string
}

var policyTable = [policyCount]PolicyInfo{
	PolicyDepfileTransform: {
		ID:    PolicyDepfileTransform,
		Code:  "CR0001",
		Name:  "depfile-transform",
		Doc:   "Generators rewrite depfile paths relative to the build root.",
		Since: "1.2",
	},
	PolicyParallelCommands: {
		ID:    PolicyParallelCommands,
		Code:  "CR0002",
		Name:  "parallel-commands",
		Doc:   "Custom commands of one target may run concurrently.",
		Since: "1.4",
	},
	PolicyRequireOutputs: {
		ID:    PolicyRequireOutputs,
		Code:  "CR0003",
		Name:  "require-outputs",
		Doc:   "A rule with neither outputs nor byproducts is an error.",
		Since: "1.6",
	},
}

// KnownPolicies yields every tracked policy in ID order.
func KnownPolicies() iter.Seq[PolicyInfo] {
	return func(yield func(PolicyInfo) bool) {
		for _, info := range policyTable {
			if !yield(info) {
				return
			}
		}
	}
}

// Info returns the table entry for the policy.
func (id PolicyID) Info() PolicyInfo {
	if id >= policyCount {
		return PolicyInfo{ID: id}
	}
	return policyTable[id]
}

// Valid reports whether id names a tracked policy.
func (id PolicyID) Valid() bool {
	return id < policyCount
}

// String returns the policy code, e.g. "CR0001".
func (id PolicyID) String() string {
	if !id.Valid() {
		return "CR????"
	}
	return policyTable[id].Code
}

// LookupPolicy finds a policy by code or name, case-insensitively.
func LookupPolicy(key string) (PolicyID, bool) {
	for _, info := range policyTable {
		if strings.EqualFold(info.Code, key) || strings.EqualFold(info.Name, key) {
			return info.ID, true
		}
	}
	return 0, false
}

// PolicyResolver resolves a policy to its status in some authoring scope.
type PolicyResolver interface {
	PolicyStatus(id PolicyID) PolicyStatus
}

// PolicySnapshot holds the status of every tracked policy.
// The zero value reads NEW for every policy.
type PolicySnapshot struct {
	statuses [policyCount]PolicyStatus
}

// Status returns the recorded status of id. Unknown ids read NEW.
func (s PolicySnapshot) Status(id PolicyID) PolicyStatus {
	if !id.Valid() {
		return PolicyNew
	}
	return s.statuses[id]
}

// PolicyStatus implements PolicyResolver, so a snapshot can seed another record.
func (s PolicySnapshot) PolicyStatus(id PolicyID) PolicyStatus {
	return s.Status(id)
}

// Record overwrites every entry with the status resolved by r.
func (s *PolicySnapshot) Record(r PolicyResolver) {
	for id := range policyCount {
		s.statuses[id] = r.PolicyStatus(id)
	}
}

// With returns a copy of the snapshot with id set to status.
func (s PolicySnapshot) With(id PolicyID, status PolicyStatus) PolicySnapshot {
	if id.Valid() {
		s.statuses[id] = status
	}
	return s
}

// All yields every tracked policy with its status, in ID order.
func (s PolicySnapshot) All() iter.Seq2[PolicyID, PolicyStatus] {
	return func(yield func(PolicyID, PolicyStatus) bool) {
		for id := range policyCount {
			if !yield(id, s.statuses[id]) {
				return
			}
		}
	}
}
