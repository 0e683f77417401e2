// Copyright 2025 MA-ISA Protocol
//
// Dimension Policies
// Per-dimension divergence thresholds and reconciliation strategies
//
// Threshold evaluation is normative; reconciliation strategy selection is a
// caller concern. The evaluator is a pure function of its inputs and never
// invokes recovery itself.

package policy

import (
	"encoding/binary"

	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
)

// RecoveryStrategy selects how a dimension is reconciled once its divergence
// exceeds the policy threshold.
type RecoveryStrategy struct {
	kind       strategyKind
	customCode uint32
}

type strategyKind uint8

const (
	kindImmediateHeal strategyKind = iota
	kindMonitorOnly
	kindQuarantine
	kindFullRecovery
	kindCustom
)

// Fixed strategy catalog.
var (
	ImmediateHeal = RecoveryStrategy{kind: kindImmediateHeal}
	MonitorOnly   = RecoveryStrategy{kind: kindMonitorOnly}
	Quarantine    = RecoveryStrategy{kind: kindQuarantine}
	FullRecovery  = RecoveryStrategy{kind: kindFullRecovery}
)

// Custom returns a strategy carrying a numeric code resolved by the caller's
// own registry.
func Custom(code uint32) RecoveryStrategy {
	return RecoveryStrategy{kind: kindCustom, customCode: code}
}

// CustomCode returns the registry code and whether this is a custom strategy.
func (s RecoveryStrategy) CustomCode() (uint32, bool) {
	return s.customCode, s.kind == kindCustom
}

func (s RecoveryStrategy) String() string {
	switch s.kind {
	case kindImmediateHeal:
		return "ImmediateHeal"
	case kindMonitorOnly:
		return "MonitorOnly"
	case kindQuarantine:
		return "Quarantine"
	case kindFullRecovery:
		return "FullRecovery"
	default:
		return "Custom"
	}
}

// DimensionPolicy controls when a single dimension is considered in breach.
type DimensionPolicy struct {
	// Name labels the dimension for logging and operator output.
	Name string

	// MaxDivergence is the threshold the projected divergence is compared
	// against. The projection takes the least-significant 8 bytes of the
	// divergence, interpreted little-endian.
	MaxDivergence uint64

	// Strategy to apply when the threshold is exceeded.
	Strategy RecoveryStrategy

	// Critical marks a safety-relevant dimension.
	Critical bool

	// Weight is the dimension's relative importance, clamped to [0, 1].
	Weight float32

	// Enabled gates evaluation; a disabled policy never breaches.
	Enabled bool
}

// NewPolicy returns a policy with default settings: threshold at half the
// projected space, immediate heal, weight 1.0, enabled.
func NewPolicy(name string) DimensionPolicy {
	return DimensionPolicy{
		Name:          name,
		MaxDivergence: ^uint64(0) / 2,
		Strategy:      ImmediateHeal,
		Weight:        1.0,
		Enabled:       true,
	}
}

// WithThreshold sets the divergence threshold.
func (p DimensionPolicy) WithThreshold(maxDivergence uint64) DimensionPolicy {
	p.MaxDivergence = maxDivergence
	return p
}

// WithRecovery sets the recovery strategy.
func (p DimensionPolicy) WithRecovery(strategy RecoveryStrategy) DimensionPolicy {
	p.Strategy = strategy
	return p
}

// AsCritical marks the dimension safety-relevant.
func (p DimensionPolicy) AsCritical() DimensionPolicy {
	p.Critical = true
	return p
}

// WithWeight sets the dimension weight, clamped to [0, 1].
func (p DimensionPolicy) WithWeight(weight float32) DimensionPolicy {
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	p.Weight = weight
	return p
}

// projectDivergence extracts the comparable u64 from a divergence value.
func projectDivergence(divergence *accumulator.State256) uint64 {
	return binary.LittleEndian.Uint64(divergence[:8])
}

// ExceedsThreshold reports whether a divergence value breaches this policy.
func (p *DimensionPolicy) ExceedsThreshold(divergence *accumulator.State256) bool {
	if !p.Enabled {
		return false
	}
	return projectDivergence(divergence) > p.MaxDivergence
}

// Violation pairs a breached dimension index with its policy.
type Violation struct {
	Index  int
	Policy *DimensionPolicy
}

// PolicySet holds one policy per dimension index, in order.
type PolicySet struct {
	policies []DimensionPolicy
}

// NewPolicySet returns an empty set.
func NewPolicySet() *PolicySet {
	return &PolicySet{}
}

// Add appends a policy at the next dimension index.
func (s *PolicySet) Add(policy DimensionPolicy) {
	s.policies = append(s.policies, policy)
}

// Get returns the policy for a dimension index, or nil.
func (s *PolicySet) Get(index int) *DimensionPolicy {
	if index < 0 || index >= len(s.policies) {
		return nil
	}
	return &s.policies[index]
}

// Len returns the number of policies.
func (s *PolicySet) Len() int {
	return len(s.policies)
}

// Evaluate checks every divergence against its dimension's policy and
// returns the dimensions in breach. Dimensions without a policy pass.
func (s *PolicySet) Evaluate(divergences []accumulator.State256) []Violation {
	var violations []Violation
	for i := range divergences {
		policy := s.Get(i)
		if policy != nil && policy.ExceedsThreshold(&divergences[i]) {
			violations = append(violations, Violation{Index: i, Policy: policy})
		}
	}
	return violations
}
