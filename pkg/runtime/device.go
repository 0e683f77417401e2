// Copyright 2025 MA-ISA Protocol
//
// Device Runtime
// Composes the accumulators with entropy, time, and persistence, and applies
// the convergence recovery protocol with an audit record
//
// A DeviceRuntime is not internally synchronized. If multiple actors share
// one, an external lock must serialize RecordEvent, ApplyConvergence, and
// Save.

package runtime

import (
	"encoding/binary"
	"log"
	"strconv"

	"github.com/google/uuid"

	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
	"github.com/maisa-protocol/integrity-accumulator/pkg/distance"
	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

// RecoveryAudit records one successful convergence application. Produced
// once per ApplyConvergence; never mutated.
type RecoveryAudit struct {
	ID                  string                `json:"id"`
	Timestamp           uint64                `json:"timestamp"`
	PreState            state.DimensionVector `json:"pre_state"`
	ConvergenceConstant state.DimensionVector `json:"convergence_constant"`
	PostState           state.DimensionVector `json:"post_state"`
	Reason              string                `json:"reason"`
}

// DeviceRuntime evolves a device's integrity state with every event and
// reconciles it against a trusted reference when drift is detected.
type DeviceRuntime struct {
	state         *state.IntegrityState
	entropy       *EntropySource
	clock         *MonotonicClock
	persistence   Persistence
	lastTimestamp uint64
	logger        *log.Logger
	metrics       *Metrics
}

// Option is a functional option for configuring the runtime.
type Option func(*DeviceRuntime)

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *DeviceRuntime) {
		r.logger = logger
	}
}

// WithMetrics attaches prometheus collectors built with NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(r *DeviceRuntime) {
		r.metrics = m
	}
}

// New builds a runtime with a fresh integrity state derived from the master
// seed.
func New(masterSeed accumulator.State256, persistence Persistence, opts ...Option) *DeviceRuntime {
	r := &DeviceRuntime{
		state:       state.FromMasterSeed(masterSeed),
		entropy:     NewEntropySource(),
		clock:       NewMonotonicClock(),
		persistence: persistence,
		logger:      log.New(log.Writer(), "[Device] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadOrCreate restores the persisted state if one exists, otherwise builds
// fresh from the master seed. A load failure propagates; falling back to a
// fresh state silently would mask tampering.
func LoadOrCreate(masterSeed accumulator.State256, persistence Persistence, opts ...Option) (*DeviceRuntime, error) {
	var s *state.IntegrityState
	if persistence.Exists() {
		loaded, err := persistence.Load()
		if err != nil {
			return nil, err
		}
		s = loaded
	} else {
		s = state.FromMasterSeed(masterSeed)
	}

	r := &DeviceRuntime{
		state:       s,
		entropy:     NewEntropySource(),
		clock:       NewMonotonicClock(),
		persistence: persistence,
		logger:      log.New(log.Writer(), "[Device] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// State exposes the underlying integrity state. Callers must not mutate it
// concurrently with runtime writes.
func (r *DeviceRuntime) State() *state.IntegrityState {
	return r.state
}

// StateVector snapshots the current dimension states. Pure read.
func (r *DeviceRuntime) StateVector() state.DimensionVector {
	return r.state.StateVector()
}

// tick reads the clock and computes the elapsed time since the previous
// recorded event, updating the stored timestamp.
func (r *DeviceRuntime) tick() (now, deltaT uint64, err error) {
	now, err = r.clock.Now()
	if err != nil {
		return 0, 0, err
	}
	if now > r.lastTimestamp {
		deltaT = now - r.lastTimestamp
	}
	r.lastTimestamp = now
	return now, deltaT, nil
}

// RecordEvent accumulates a payload into the nominated dimension only.
func (r *DeviceRuntime) RecordEvent(dimensionIndex int, payload []byte) (state.DimensionVector, error) {
	dim, err := r.state.Dimension(dimensionIndex)
	if err != nil {
		return state.DimensionVector{}, err
	}

	_, deltaT, err := r.tick()
	if err != nil {
		return state.DimensionVector{}, err
	}

	entropy, err := r.entropy.Gather(32)
	if err != nil {
		return state.DimensionVector{}, err
	}
	defer wipe(entropy)

	dim.Accumulate(payload, entropy, deltaT)
	r.metrics.eventRecorded(strconv.Itoa(dimensionIndex))

	return r.state.StateVector(), nil
}

// RecordEventWith accumulates a payload with caller-supplied entropy and
// elapsed time instead of drawing from the OS. This backs replay tooling and
// deterministic verification, where the same event stream must reproduce the
// same trajectory.
func (r *DeviceRuntime) RecordEventWith(dimensionIndex int, payload, entropy []byte, deltaT uint64) (state.DimensionVector, error) {
	dim, err := r.state.Dimension(dimensionIndex)
	if err != nil {
		return state.DimensionVector{}, err
	}

	dim.Accumulate(payload, entropy, deltaT)
	r.metrics.eventRecorded(strconv.Itoa(dimensionIndex))

	return r.state.StateVector(), nil
}

// RecordSale is the three-axis convenience entry point: the payload feeds
// dimension 0, the current clock reading feeds dimension 1, and a fresh
// entropy draw feeds dimension 2, all sharing one entropy sample and delta.
func (r *DeviceRuntime) RecordSale(payload []byte) (state.DimensionVector, error) {
	now, deltaT, err := r.tick()
	if err != nil {
		return state.DimensionVector{}, err
	}

	entropy, err := r.entropy.Gather(32)
	if err != nil {
		return state.DimensionVector{}, err
	}
	defer wipe(entropy)

	var timeBytes [8]byte
	binary.LittleEndian.PutUint64(timeBytes[:], now)

	hwSample, err := r.entropy.Gather32()
	if err != nil {
		return state.DimensionVector{}, err
	}
	defer wipe(hwSample[:])

	dim0, _ := r.state.Dimension(0)
	dim1, _ := r.state.Dimension(1)
	dim2, _ := r.state.Dimension(2)

	dim0.Accumulate(payload, entropy, deltaT)
	dim1.Accumulate(timeBytes[:], entropy, deltaT)
	dim2.Accumulate(hwSample[:], entropy, deltaT)

	for i := 0; i < state.DimensionCount; i++ {
		r.metrics.eventRecorded(strconv.Itoa(i))
	}

	return r.state.StateVector(), nil
}

// Save persists the current state through the configured backend.
func (r *DeviceRuntime) Save() error {
	if err := r.persistence.Save(r.state); err != nil {
		r.metrics.persistenceFailed()
		return err
	}
	return nil
}

// CalculateDivergence returns the directional distance from this device's
// state to a trusted reference, per dimension: compute(self_i, trusted_i).
// Directional, not minimum-arc: the sign in the modular sense is what makes
// the convergence constant derivable.
func (r *DeviceRuntime) CalculateDivergence(trusted *state.DimensionVector) state.DimensionVector {
	current := r.state.StateVector()
	var out state.DimensionVector
	for i := range current.Values {
		out.Values[i] = distance.Compute(&current.Values[i], &trusted.Values[i])
	}
	return out
}

// CalculateConvergenceConstant returns K with K_i = compute(trusted_i,
// self_i), the unique addend satisfying (self_i + K_i) mod 2^256 ==
// trusted_i.
func (r *DeviceRuntime) CalculateConvergenceConstant(trusted *state.DimensionVector) state.DimensionVector {
	current := r.state.StateVector()
	var k state.DimensionVector
	for i := range current.Values {
		k.Values[i] = distance.Compute(&trusted.Values[i], &current.Values[i])
	}
	return k
}

// ApplyConvergence adds K to every dimension with full carry propagation,
// preserving counters, then persists the healed state and returns an audit
// record. On a save failure the in-memory state is already healed; callers
// may retry Save.
func (r *DeviceRuntime) ApplyConvergence(k *state.DimensionVector, reason string) (*RecoveryAudit, error) {
	now, err := r.clock.Now()
	if err != nil {
		return nil, err
	}

	preState := r.state.StateVector()

	for i := 0; i < state.DimensionCount; i++ {
		dim, _ := r.state.Dimension(i)
		current := dim.State()
		healed := distance.Add(&current, &k.Values[i])
		if err := r.state.ReplaceDimension(i, accumulator.FromState(healed, dim.Counter())); err != nil {
			return nil, err
		}
	}

	postState := r.state.StateVector()

	audit := &RecoveryAudit{
		ID:                  uuid.New().String(),
		Timestamp:           now,
		PreState:            preState,
		ConvergenceConstant: *k,
		PostState:           postState,
		Reason:              reason,
	}

	if err := r.Save(); err != nil {
		return nil, err
	}

	r.metrics.recoveryApplied()
	r.logger.Printf("applied convergence constant, audit %s: %s", audit.ID, reason)

	return audit, nil
}

// RecoverFromTrustedState computes and applies the convergence constant in
// one step.
func (r *DeviceRuntime) RecoverFromTrustedState(trusted *state.DimensionVector, reason string) (*RecoveryAudit, error) {
	k := r.CalculateConvergenceConstant(trusted)
	return r.ApplyConvergence(&k, reason)
}
