// Copyright 2025 MA-ISA Protocol
//
// Cross-Dimension Constraints
// Relational predicates over a divergence vector, spanning multiple
// dimensions ("A must not diverge more than 2x B", "A+B stays under a cap")
//
// Constraint evaluation is optional for conformance. Evaluators are pure and
// never error; violated constraints are reported as data.

package policy

import (
	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
)

// ConstraintType is the tagged kind of a cross-dimension relationship.
type ConstraintType struct {
	kind           constraintKind
	ratio          uint32
	threshold      uint64
	minCorrelation int32
	customCode     uint32
}

type constraintKind uint8

const (
	kindMaxRatio constraintKind = iota
	kindSumBelow
	kindConditionalCheck
	kindCorrelation
	kindCustomConstraint
)

// MaxRatio bounds dimensions[0]'s divergence to ratio times dimensions[1]'s.
func MaxRatio(ratio uint32) ConstraintType {
	return ConstraintType{kind: kindMaxRatio, ratio: ratio}
}

// SumBelow bounds the sum of the named dimensions' divergences.
func SumBelow(threshold uint64) ConstraintType {
	return ConstraintType{kind: kindSumBelow, threshold: threshold}
}

// ConditionalCheck is a stub whose semantics live in external logic.
func ConditionalCheck() ConstraintType {
	return ConstraintType{kind: kindConditionalCheck}
}

// Correlation is a stub for statistical analysis over historical data.
// minCorrelation is scaled -100..100.
func Correlation(minCorrelation int32) ConstraintType {
	return ConstraintType{kind: kindCorrelation, minCorrelation: minCorrelation}
}

// CustomConstraint carries a numeric code resolved by an external registry.
func CustomConstraint(code uint32) ConstraintType {
	return ConstraintType{kind: kindCustomConstraint, customCode: code}
}

// DimensionConstraint is a predicate over the divergence vector involving
// one or more dimensions.
type DimensionConstraint struct {
	// Name describes the constraint for operator output.
	Name string

	// Dimensions are the indices the predicate reads, in positional order.
	Dimensions []int

	// Type selects the predicate.
	Type ConstraintType

	// Enabled gates evaluation.
	Enabled bool

	// Severity ranks the constraint 0-10, 10 being critical.
	Severity uint8
}

// NewConstraint returns an enabled constraint at severity 5.
func NewConstraint(name string, dimensions []int, constraintType ConstraintType) DimensionConstraint {
	return DimensionConstraint{
		Name:       name,
		Dimensions: dimensions,
		Type:       constraintType,
		Enabled:    true,
		Severity:   5,
	}
}

// WithSeverity sets the severity, capped at 10.
func (c DimensionConstraint) WithSeverity(severity uint8) DimensionConstraint {
	if severity > 10 {
		severity = 10
	}
	c.Severity = severity
	return c
}

func (c *DimensionConstraint) divergenceValue(divergences []accumulator.State256, index int) uint64 {
	if index < 0 || index >= len(divergences) {
		return 0
	}
	return projectDivergence(&divergences[index])
}

// Evaluate reports whether this constraint is violated by the given
// divergence vector.
func (c *DimensionConstraint) Evaluate(divergences []accumulator.State256) bool {
	if !c.Enabled || len(c.Dimensions) == 0 {
		return false
	}

	switch c.Type.kind {
	case kindMaxRatio:
		if len(c.Dimensions) < 2 {
			return false
		}
		divA := c.divergenceValue(divergences, c.Dimensions[0])
		divB := c.divergenceValue(divergences, c.Dimensions[1])
		if divB == 0 {
			return divA > 0
		}
		limit := divB * uint64(c.Type.ratio)
		if c.Type.ratio != 0 && limit/uint64(c.Type.ratio) != divB {
			limit = ^uint64(0) // saturate on overflow
		}
		return divA > limit

	case kindSumBelow:
		var sum uint64
		for _, idx := range c.Dimensions {
			sum += c.divergenceValue(divergences, idx)
		}
		return sum > c.Type.threshold

	default:
		// ConditionalCheck, Correlation, and Custom require external logic
		return false
	}
}

// ConstraintViolation pairs a violated constraint index with the constraint.
type ConstraintViolation struct {
	Index      int
	Constraint *DimensionConstraint
}

// ConstraintSet holds the constraints for an integrity state.
type ConstraintSet struct {
	constraints []DimensionConstraint
}

// NewConstraintSet returns an empty set.
func NewConstraintSet() *ConstraintSet {
	return &ConstraintSet{}
}

// Add appends a constraint.
func (s *ConstraintSet) Add(constraint DimensionConstraint) {
	s.constraints = append(s.constraints, constraint)
}

// Get returns a constraint by index, or nil.
func (s *ConstraintSet) Get(index int) *DimensionConstraint {
	if index < 0 || index >= len(s.constraints) {
		return nil
	}
	return &s.constraints[index]
}

// Len returns the number of constraints.
func (s *ConstraintSet) Len() int {
	return len(s.constraints)
}

// Evaluate returns the violated constraints for a divergence vector.
func (s *ConstraintSet) Evaluate(divergences []accumulator.State256) []ConstraintViolation {
	var violations []ConstraintViolation
	for i := range s.constraints {
		if s.constraints[i].Evaluate(divergences) {
			violations = append(violations, ConstraintViolation{Index: i, Constraint: &s.constraints[i]})
		}
	}
	return violations
}
