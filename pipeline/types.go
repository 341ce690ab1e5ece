// Package pipeline orchestrates one end-to-end generation run: condition,
// initialize a latent, step the diffusion schedule, decode, normalize
// (spec.md §4.10).
package pipeline

import (
	"time"

	"github.com/ace-step/aceinfer/conditioning"
	"github.com/google/uuid"
)

// GenerationParams is the caller-facing request: the upstream condition
// parameters plus the knobs this package itself interprets.
type GenerationParams struct {
	Conditioning conditioning.Params

	// DurationSeconds, when > 0, sets the target audio length; otherwise
	// the pipeline defaults to a 100-step latent (spec.md §4.10 step 1).
	DurationSeconds float32
	SampleRate      int
	Seed            int64

	// InferenceSteps and Shift feed diffusion.Schedule directly;
	// Timesteps, when non-empty, takes precedence over InferenceSteps
	// (spec.md §4.1).
	InferenceSteps int
	Shift          float32
	Timesteps      []float32

	CFG CFGParams
}

// CFGParams mirrors diffusion.CFGConfig's tunables at the request
// boundary, minus the null embedding (which conditioning.DiTConditions
// supplies per-run, or else the DiT checkpoint).
type CFGParams struct {
	GuidanceScale float32
	IntervalStart float32
	IntervalEnd   float32
	Momentum      float32
	NormThreshold float32
}

// GenerationConfig are the engine-level settings fixed for the lifetime of
// a Pipeline (checkpoint paths), as opposed to
// GenerationParams which vary per call.
type GenerationConfig struct {
	DiTPath string
	VAEPath string
}

// AudioEntry is one decoded, trimmed, peak-normalized waveform — one per
// batch row (spec.md §4.10 step 9).
type AudioEntry struct {
	Samples    []float32
	Channels   int
	SampleRate int
}

// GenerationStatus is the result of one Generate call: either a populated
// Audio slice, or an error classified per aceerrors.Kind (spec.md §6.4,
// §7).
type GenerationStatus struct {
	RunID    uuid.UUID
	Duration time.Duration

	Audio []AudioEntry

	Err error
}

func (s *GenerationStatus) Success() bool { return s.Err == nil }
