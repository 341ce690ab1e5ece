package pipeline

import (
	"context"
	"time"

	"github.com/ace-step/aceinfer/aceerrors"
	"github.com/ace-step/aceinfer/conditioning"
	"github.com/ace-step/aceinfer/dit"
	"github.com/ace-step/aceinfer/diffusion"
	"github.com/ace-step/aceinfer/kvcache"
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/vae"
	"github.com/ace-step/aceinfer/weights"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// defaultLatentLength is used whenever the caller gives no positive
// duration (spec.md §4.10 step 1).
const defaultLatentLength = 100

// minLatentLength is the floor T is never allowed to drop below, even for
// very short requested durations.
const minLatentLength = 128

// vaeDecoder is the narrow surface Pipeline needs from a VAE decoder,
// satisfied by *vae.Decoder and, in tests, by a fake returning zeros.
type vaeDecoder interface {
	Forward(latent *ml.Array) (*ml.Array, error)
}

// Pipeline ties weight loading, conditioning, the diffusion loop, and VAE
// decoding into the single end-to-end operation spec.md §4.10 describes.
type Pipeline struct {
	ditCfg dit.Config
	vaeCfg vae.Config

	stepper  diffusion.DiffusionStepper
	vae      vaeDecoder
	provider conditioning.Provider

	checkpointNullEmbedding *ml.Array
}

// New loads the DiT and VAE checkpoints concurrently (spec.md §5's one
// legitimate setup-time fan-out) and returns a Pipeline ready to generate.
func New(cfg GenerationConfig, ditCfg dit.Config, vaeCfg vae.Config, provider conditioning.Provider) (*Pipeline, error) {
	var ditCkpt *weights.Checkpoint
	var vaeDec *vae.Decoder

	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		ckpt, err := weights.LoadDiT(cfg.DiTPath, ditCfg)
		if err != nil {
			return err
		}
		ditCkpt = ckpt
		return nil
	})
	g.Go(func() error {
		dec, err := weights.LoadVAE(cfg.VAEPath, vaeCfg)
		if err != nil {
			return err
		}
		vaeDec = dec
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Pipeline{
		ditCfg:                  ditCfg,
		vaeCfg:                  vaeCfg,
		stepper:                 diffusion.NewRealStepper(ditCkpt.Decoder),
		vae:                     vaeDec,
		provider:                provider,
		checkpointNullEmbedding: ditCkpt.NullConditionEmbedding,
	}, nil
}

// NewFake builds a Pipeline around a zero-computation stepper and VAE
// decoder, for the control-flow/shape scenarios of spec.md §8 that don't
// need trained weights.
func NewFake(ditCfg dit.Config, vaeCfg vae.Config, provider conditioning.Provider) *Pipeline {
	return &Pipeline{
		ditCfg:   ditCfg,
		vaeCfg:   vaeCfg,
		stepper:  diffusion.NewFakeStepper(),
		vae:      fakeVAEDecoder{channels: vaeCfg.AudioChannels},
		provider: provider,
	}
}

type fakeVAEDecoder struct{ channels int }

func (f fakeVAEDecoder) Forward(latent *ml.Array) (*ml.Array, error) {
	b, t := latent.Dim(0), latent.Dim(1)
	return ml.NewZeros(b, t*vae.SamplesPerStep, f.channels), nil
}

// latentLength computes T per spec.md §4.10 step 1.
func latentLength(durationSeconds float32, sampleRate int) int {
	if durationSeconds <= 0 {
		return defaultLatentLength
	}
	t := int((durationSeconds*float32(sampleRate))/float32(vae.SamplesPerStep) + 0.999999)
	if t < minLatentLength {
		return minLatentLength
	}
	return t
}

// Generate runs one full caption+lyrics-to-audio pass (spec.md §4.10). It
// never returns a Go error: every failure mode is classified into
// GenerationStatus.Err per the aceerrors taxonomy (spec.md §7) so callers
// get one uniform result shape.
func (p *Pipeline) Generate(ctx context.Context, params GenerationParams) *GenerationStatus {
	status := &GenerationStatus{RunID: uuid.New()}
	start := time.Now()
	defer func() { status.Duration = time.Since(start) }()

	sampleRate := params.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	T := latentLength(params.DurationSeconds, sampleRate)

	schedule := diffusion.Schedule(params.Shift, params.InferenceSteps, params.Timesteps)

	cond, err := p.condition(ctx, params, T, sampleRate)
	if err != nil {
		status.Err = err
		return status
	}

	latent, err := p.initLatent(cond, params, T)
	if err != nil {
		status.Err = err
		return status
	}

	stepCond := diffusion.Conditions{
		ContextLatents: cond.ContextLatents,
		EncoderStates:  cond.EncoderHiddenStates,
		EncoderMask:    cond.EncoderAttentionMask,
	}

	nullEmbedding := cond.NullConditionEmbedding
	if nullEmbedding == nil {
		nullEmbedding = p.checkpointNullEmbedding
	}
	cfgConfig := diffusion.CFGConfig{
		GuidanceScale: params.CFG.GuidanceScale,
		IntervalStart: params.CFG.IntervalStart,
		IntervalEnd:   params.CFG.IntervalEnd,
		Momentum:      params.CFG.Momentum,
		NormThreshold: params.CFG.NormThreshold,
		NullEmbedding: nullEmbedding,
	}

	cache := kvcache.NewCross(true)
	momentum := &diffusion.MomentumState{}

	for i, t := range schedule {
		var nextT *float32
		if i+1 < len(schedule) {
			nt := schedule[i+1]
			nextT = &nt
		}
		latent, err = diffusion.Step(p.stepper, latent, t, nextT, stepCond, cfgConfig, momentum, cache)
		if err != nil {
			status.Err = err
			return status
		}
	}

	audio, err := p.vae.Forward(latent)
	if err != nil {
		status.Err = err
		return status
	}
	audio, err = vae.Trim(audio, T)
	if err != nil {
		status.Err = err
		return status
	}

	status.Audio = splitAndNormalize(audio, sampleRate)
	return status
}

// condition invokes the conditioning provider and reconciles its batch
// dimension against the rest of the run (spec.md §4.10 step 3): any
// ContextLatents/EncoderHiddenStates batch row of size 1 broadcasts up to
// the other's batch size; any other mismatch is fatal.
func (p *Pipeline) condition(ctx context.Context, params GenerationParams, T, sampleRate int) (*conditioning.DiTConditions, error) {
	if p.provider == nil {
		return nil, aceerrors.New(aceerrors.MissingConditioning, "no conditioning provider configured")
	}

	cond, err := p.provider.Condition(ctx, params.Conditioning, T, sampleRate)
	if err != nil {
		return nil, err
	}
	if cond == nil || cond.ContextLatents == nil || cond.EncoderHiddenStates == nil {
		return nil, aceerrors.New(aceerrors.MissingConditioning, "conditioning provider returned no conditions")
	}

	b, err := reconcileBatch(cond)
	if err != nil {
		return nil, err
	}
	cond.ContextLatents = broadcastBatch(cond.ContextLatents, b)
	cond.EncoderHiddenStates = broadcastBatch(cond.EncoderHiddenStates, b)
	if cond.EncoderAttentionMask != nil {
		cond.EncoderAttentionMask = broadcastBatch(cond.EncoderAttentionMask, b)
	}
	if cond.InitialLatents != nil {
		cond.InitialLatents = broadcastBatch(cond.InitialLatents, b)
	}
	return cond, nil
}

func reconcileBatch(cond *conditioning.DiTConditions) (int, error) {
	a, b := cond.ContextLatents.Dim(0), cond.EncoderHiddenStates.Dim(0)
	switch {
	case a == b:
		return a, nil
	case a == 1:
		return b, nil
	case b == 1:
		return a, nil
	default:
		return 0, aceerrors.New(aceerrors.ConditionBatchMismatch,
			"context latents batch %d incompatible with encoder states batch %d", a, b)
	}
}

func broadcastBatch(a *ml.Array, b int) *ml.Array {
	if a.Dim(0) == b {
		return a
	}
	shape := append([]int(nil), a.Shape()...)
	shape[0] = b
	return ml.BroadcastTo(a, shape)
}

// initLatent draws the starting noisy latent from the seed, or uses the
// conditioning-supplied InitialLatents when present (spec.md §4.10 step
// 4).
func (p *Pipeline) initLatent(cond *conditioning.DiTConditions, params GenerationParams, T int) (*ml.Array, error) {
	if cond.InitialLatents != nil {
		return cond.InitialLatents, nil
	}
	b := cond.ContextLatents.Dim(0)
	return ml.RandN(params.Seed, b, T, p.ditCfg.LatentChans), nil
}

// splitAndNormalize turns the decoded [B, samples, channels] tensor into
// one peak-normalized AudioEntry per batch row (spec.md §4.10 step 9).
func splitAndNormalize(audio *ml.Array, sampleRate int) []AudioEntry {
	b, channels := audio.Dim(0), audio.Dim(2)
	entries := make([]AudioEntry, b)

	for i := 0; i < b; i++ {
		row := ml.Slice(audio, 0, i, i+1)
		if peak := ml.MaxAbs(row); peak > 1 {
			row = ml.MulScalar(row, 1/peak)
		}
		samples := make([]float32, row.Numel())
		copy(samples, row.Data())
		entries[i] = AudioEntry{Samples: samples, Channels: channels, SampleRate: sampleRate}
	}
	return entries
}
