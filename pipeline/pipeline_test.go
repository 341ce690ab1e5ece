package pipeline

import (
	"context"
	"testing"

	"github.com/ace-step/aceinfer/aceerrors"
	"github.com/ace-step/aceinfer/conditioning"
	"github.com/ace-step/aceinfer/dit"
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/vae"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	batch int
	// encBatch, when non-zero, overrides the encoder-side batch size.
	encBatch int
	err      error
}

func (p fakeProvider) Condition(ctx context.Context, params conditioning.Params, latentLength, sampleRate int) (*conditioning.DiTConditions, error) {
	if p.err != nil {
		return nil, p.err
	}
	encBatch := p.batch
	if p.encBatch != 0 {
		encBatch = p.encBatch
	}
	return &conditioning.DiTConditions{
		ContextLatents:       ml.NewZeros(p.batch, latentLength, 128),
		EncoderHiddenStates:  ml.NewZeros(encBatch, 7, 2048),
		EncoderAttentionMask: ml.Full(1, encBatch, 7),
	}, nil
}

func testConfigs() (dit.Config, vae.Config) {
	ditCfg := dit.DefaultConfig()
	vaeCfg := vae.DefaultConfig()
	return ditCfg, vaeCfg
}

func TestGenerateWithFakeStepperProducesExpectedSampleCount(t *testing.T) {
	ditCfg, vaeCfg := testConfigs()
	p := NewFake(ditCfg, vaeCfg, fakeProvider{batch: 1})

	status := p.Generate(context.Background(), GenerationParams{
		DurationSeconds: 0, // defaults to 100-step latent
		SampleRate:      44100,
		InferenceSteps:  4,
		Shift:           1.0,
	})

	require.NoError(t, status.Err)
	require.Len(t, status.Audio, 1)
	assert.Equal(t, defaultLatentLength*vae.SamplesPerStep, len(status.Audio[0].Samples)/status.Audio[0].Channels)
}

func TestGenerateMissingProviderIsFatal(t *testing.T) {
	ditCfg, vaeCfg := testConfigs()
	p := NewFake(ditCfg, vaeCfg, nil)

	status := p.Generate(context.Background(), GenerationParams{InferenceSteps: 2, Shift: 1.0})
	require.Error(t, status.Err)
	assert.ErrorIs(t, status.Err, aceerrors.ErrMissingConditioning)
}

func TestGenerateBroadcastsSingleBatchConditioning(t *testing.T) {
	ditCfg, vaeCfg := testConfigs()
	// Encoder states arrive with batch 1 while context latents carry batch
	// 2; the encoder side must broadcast up to 2.
	p := NewFake(ditCfg, vaeCfg, fakeProvider{batch: 2, encBatch: 1})

	status := p.Generate(context.Background(), GenerationParams{InferenceSteps: 2, Shift: 1.0})
	require.NoError(t, status.Err)
	require.Len(t, status.Audio, 2)
}

func TestLatentLengthDefaultsAndFloors(t *testing.T) {
	assert.Equal(t, defaultLatentLength, latentLength(0, 44100))
	assert.Equal(t, minLatentLength, latentLength(0.001, 44100))
	assert.Greater(t, latentLength(120, 44100), minLatentLength)
}
