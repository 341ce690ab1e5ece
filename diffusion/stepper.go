package diffusion

import (
	"github.com/ace-step/aceinfer/dit"
	"github.com/ace-step/aceinfer/kvcache"
	"github.com/ace-step/aceinfer/ml"
)

// Conditions bundles the per-run conditioning tensors a stepper needs,
// independent of how they were produced (spec.md §6.1 DiTConditions,
// minus the fields the pipeline has already consumed before stepping).
type Conditions struct {
	ContextLatents *ml.Array
	EncoderStates  *ml.Array
	EncoderMask    *ml.Array
}

// DiffusionStepper is the capability interface spec.md §9 calls for: one
// decoder forward producing a velocity prediction for a given latent and
// timestep. realStepper wraps the trained DiT; fakeStepper returns zeros
// for shape/control-flow tests (spec.md §8's concrete scenarios).
type DiffusionStepper interface {
	Velocity(x *ml.Array, t float32, cond Conditions, cache *kvcache.Cross) (*ml.Array, error)
}

// realStepper is the DiffusionStepper backed by a trained DiT decoder.
// spec.md §9's "timestep_r semantics" open question is resolved here per
// the spec's corrected behavior: timestep_r is always set equal to t, so
// the decoder's second embedding head always observes 0 (see DESIGN.md).
type realStepper struct {
	decoder *dit.Decoder
}

// NewRealStepper wraps a trained DiT decoder as a DiffusionStepper.
func NewRealStepper(decoder *dit.Decoder) DiffusionStepper {
	return &realStepper{decoder: decoder}
}

func (s *realStepper) Velocity(x *ml.Array, t float32, cond Conditions, cache *kvcache.Cross) (*ml.Array, error) {
	b := x.Dim(0)
	timestep := ml.Full(t, b)
	timestepR := ml.Full(t, b) // timestep_r = timestep (spec.md §9 open question, corrected behavior)
	return s.decoder.Forward(x, cond.ContextLatents, cond.EncoderStates, cond.EncoderMask, timestep, timestepR, cache)
}

// fakeStepper returns an all-zero velocity of the input's shape, used by
// the pipeline's shape/control-flow test scenarios (spec.md §8).
type fakeStepper struct{}

// NewFakeStepper returns a DiffusionStepper that performs no real
// computation, matching spec.md §8's "fake stepper returning zeros".
func NewFakeStepper() DiffusionStepper { return fakeStepper{} }

func (fakeStepper) Velocity(x *ml.Array, _ float32, _ Conditions, _ *kvcache.Cross) (*ml.Array, error) {
	return ml.NewZeros(x.Shape()...), nil
}
