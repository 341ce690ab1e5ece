package vae

import (
	"github.com/ace-step/aceinfer/aceerrors"
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/nn"
)

// Decoder is the full Oobleck-family decoder: a stage-1 convolution up to
// the widest channel width, one DecoderBlock per upsampling ratio, and a
// stage-2 Snake + final convolution down to the audio channel count
// (spec.md §4.8).
type Decoder struct {
	StageIn  *nn.Conv1D      `weight:"conv_in"`
	Blocks   []*DecoderBlock `weight:"decoder_block"`
	FinalSnake *nn.Snake     `weight:"snake_final"`
	StageOut *nn.Conv1D      `weight:"conv_final"`

	cfg Config
}

// Init wires every computed (non-weight) hyperparameter after the weight
// loader has populated the tensor fields: kernel/padding of the stage
// convs and the per-block ratio/dilation schedule.
func (d *Decoder) Init(cfg Config) {
	d.cfg = cfg
	d.StageIn.Padding = cfg.KernelSize / 2
	d.StageIn.Stride = 1
	d.FinalSnake.Logscale = true
	d.StageOut.Padding = cfg.KernelSize / 2
	d.StageOut.Stride = 1

	for i, block := range d.Blocks {
		initDecoderBlock(block, cfg.Ratios[i])
	}
}

// SamplesPerStep is the number of audio samples each latent time step
// decodes to: the product of every upsampling ratio times the kernel-size
// overlap the stage convs contribute, 2048 for the reference model.
const SamplesPerStep = 2048

// Forward decodes a latent [B, T, LatentChannels] to a waveform
// [B, T', AudioChannels] with T' close to but not guaranteed equal to
// T·SamplesPerStep; callers trim (spec.md §4.8's "some transposed-conv
// paths can overshoot by a few samples").
func (d *Decoder) Forward(latent *ml.Array) (*ml.Array, error) {
	if latent.Ndim() != 3 || latent.Dim(-1) != d.cfg.LatentChannels {
		return nil, aceerrors.New(aceerrors.InvalidLatentShape,
			"vae decoder expected [B,T,%d], got %v", d.cfg.LatentChannels, latent.Shape())
	}

	h := d.StageIn.Forward(latent)
	for _, block := range d.Blocks {
		h = block.Forward(h)
	}
	h = d.FinalSnake.Forward(h)
	h = d.StageOut.Forward(h)

	if h.Ndim() != 3 {
		return nil, aceerrors.New(aceerrors.InvalidDecodedAudioShape, "vae decoder produced rank %d", h.Ndim())
	}
	return h, nil
}

// Trim crops decoded audio to the exact expected sample count T·2048
// along the time axis, silently discarding any transposed-conv overshoot.
func Trim(audio *ml.Array, latentLength int) (*ml.Array, error) {
	want := latentLength * SamplesPerStep
	switch audio.Ndim() {
	case 2, 3:
	default:
		return nil, aceerrors.New(aceerrors.InvalidDecodedAudioShape, "decoded audio rank %d, want 2 or 3", audio.Ndim())
	}
	got := audio.Dim(1)
	if got == want {
		return audio, nil
	}
	if got < want {
		return nil, aceerrors.New(aceerrors.InvalidDecodedAudioShape,
			"decoded audio has %d samples, want at least %d", got, want)
	}
	return ml.Slice(audio, 1, 0, want), nil
}
