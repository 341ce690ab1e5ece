// Package conditioning defines the boundary between this engine and the
// text/lyrics condition encoder it consumes but does not implement
// (spec.md §1's "condition encoder" non-goal): a narrow interface the
// pipeline calls once per run to turn generation parameters into the
// tensors the DiT decoder is actually conditioned on.
package conditioning

import (
	"context"

	"github.com/ace-step/aceinfer/ml"
)

// DiTConditions are the tensors dit.Decoder.Forward consumes, produced
// from whatever text/lyrics encoder sits upstream of this module (spec.md
// §3's Conditions entity).
type DiTConditions struct {
	// EncoderHiddenStates is [B, encL, EncoderDim].
	EncoderHiddenStates *ml.Array
	// EncoderAttentionMask is [B, encL], 1 for real tokens, 0 for padding.
	// Nil means every position is attended to.
	EncoderAttentionMask *ml.Array
	// ContextLatents is [B, T, ContextChans], concatenated channel-wise
	// onto the noisy latent before patching in (spec.md §4.5).
	ContextLatents *ml.Array
	// NullConditionEmbedding is [1, 1, EncoderDim], broadcast in place of
	// EncoderHiddenStates for the unconditional CFG branch. Nil makes the
	// pipeline fall back to the DiT checkpoint's null embedding; with
	// neither available, CFG is disabled regardless of GuidanceScale
	// (spec.md §4.7).
	NullConditionEmbedding *ml.Array
	// InitialLatents is [B, T, LatentChans], used instead of a fresh
	// random draw when the caller wants to continue or inpaint from a
	// known latent state. Nil means draw from the seed.
	InitialLatents *ml.Array
}

// Params is the caller-supplied generation request this module turns into
// DiTConditions: caption, lyrics, duration and any other upstream-encoder
// inputs. Left as a plain map here since every concrete field belongs to
// the condition encoder this package deliberately does not implement.
type Params map[string]any

// Provider turns generation parameters into DiT conditioning, given the
// latent time length T the pipeline has already computed and the target
// sample rate. Implementations own whatever text/lyrics encoder actually
// produces EncoderHiddenStates; this package only fixes the contract.
type Provider interface {
	Condition(ctx context.Context, params Params, latentLength, sampleRate int) (*DiTConditions, error)
}
