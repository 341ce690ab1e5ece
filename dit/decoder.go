package dit

import (
	"github.com/ace-step/aceinfer/aceerrors"
	"github.com/ace-step/aceinfer/kvcache"
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/nn"
)

// Decoder is the full DiT: patch-in, dual timestep embedding, condition
// embedder, a stack of alternating sliding/full attention Layers, output
// AdaLN, and patch-out (spec.md §4.5). It predicts a velocity field over
// the noisy latent.
type Decoder struct {
	PatchIn  *nn.Conv1D          `weight:"patch_in"`
	TimeT    *nn.TimestepEmbedding `weight:"t_embedder"`
	TimeR    *nn.TimestepEmbedding `weight:"r_embedder"`
	CondEmbed *nn.Linear         `weight:"cond_embedder"`
	Layers   []*Layer            `weight:"layers"`
	OutputTable *ml.Array        `weight:"output_scale_shift_table"`
	PatchOut *nn.ConvTranspose1D `weight:"patch_out"`

	cfg Config

	ropeCache    map[int][2]*ml.Array
	slidingCache map[int]*ml.Array
}

// Init wires every computed hyperparameter after weight population: head
// counts on every layer's attention modules, timestep-embedder dims, and
// lazily-memoized rotary/sliding-mask caches (spec.md §9's "write-once per
// sequence length").
func (d *Decoder) Init(cfg Config) {
	d.cfg = cfg
	d.ropeCache = make(map[int][2]*ml.Array)
	d.slidingCache = make(map[int]*ml.Array)

	d.TimeT.FreqDim, d.TimeT.ModelDim = 256, cfg.Dim
	d.TimeR.FreqDim, d.TimeR.ModelDim = 256, cfg.Dim

	d.PatchIn.Stride = cfg.PatchSize
	d.PatchIn.Padding = 0
	d.PatchOut.Stride = cfg.PatchSize
	d.PatchOut.Padding = 0

	for i, layer := range d.Layers {
		layer.init(i, cfg.NHeads, cfg.NKVHeads, cfg.headDim(), cfg.NormEps, cfg.SlidingWindow)
	}
}

func (d *Decoder) rotary(length int) (*ml.Array, *ml.Array) {
	if pair, ok := d.ropeCache[length]; ok {
		return pair[0], pair[1]
	}
	cos, sin := nn.BuildRotary(length, d.cfg.headDim(), d.cfg.RopeTheta)
	d.ropeCache[length] = [2]*ml.Array{cos, sin}
	return cos, sin
}

func (d *Decoder) slidingMask(length int) *ml.Array {
	if m, ok := d.slidingCache[length]; ok {
		return m
	}
	m := nn.SlidingWindowMask(length, d.cfg.SlidingWindow)
	d.slidingCache[length] = m
	return m
}

// padToMultiple zero-pads the time axis (axis 1) up to the next multiple
// of n, returning the padded array and the amount of padding added.
func padToMultiple(x *ml.Array, n int) (*ml.Array, int) {
	t := x.Dim(1)
	rem := t % n
	if rem == 0 {
		return x, 0
	}
	pad := n - rem
	return ml.Pad(x, 1, 0, pad), pad
}

// Forward predicts the velocity field v of shape [B, T, LatentChans] given
// the current noisy latent, its paired context latents, encoder
// conditioning, and the two timestep scalars (spec.md §4.5–§4.6). The
// first embedding head sees timestep, the second timestep − timestepR.
func (d *Decoder) Forward(hidden, contextLatents, encoderStates, encoderMask, timestep, timestepR *ml.Array, cache *kvcache.Cross) (*ml.Array, error) {
	if hidden.Ndim() != 3 || hidden.Dim(-1) != d.cfg.LatentChans {
		return nil, aceerrors.New(aceerrors.InvalidLatentShape, "dit decoder expected [B,T,%d], got %v", d.cfg.LatentChans, hidden.Shape())
	}
	origLen := hidden.Dim(1)

	tembT, projT := d.TimeT.Forward(timestep)
	tembR, projR := d.TimeR.Forward(ml.Sub(timestep, timestepR))
	temb := ml.Add(tembT, tembR)
	timestepProj := ml.Add(projT, projR)

	x := ml.Concat(2, contextLatents, hidden)
	x, _ = padToMultiple(x, d.cfg.PatchSize)
	h := d.PatchIn.Forward(x) // [B, ceil(T/patch), D]

	encHidden := d.CondEmbed.Forward(encoderStates)
	var additiveMask *ml.Array
	if encoderMask != nil {
		additiveMask = nn.EncoderMaskToAdditive(encoderMask)
	}

	length := h.Dim(1)
	cos, sin := d.rotary(length)
	sliding := d.slidingMask(length)

	for _, layer := range d.Layers {
		h = layer.Forward(h, timestepProj, cos, sin, sliding, encHidden, additiveMask, cache)
	}

	shiftScale := ml.Add(ml.ExpandDims(temb, 1), d.OutputTable)
	b := shiftScale.Dim(0)
	dModel := shiftScale.Dim(2)
	shift := ml.Reshape(ml.Slice(shiftScale, 1, 0, 1), b, 1, dModel)
	scale := ml.Reshape(ml.Slice(shiftScale, 1, 1, 2), b, 1, dModel)

	normed := nn.RMSNormNoAffine(h, 1e-6)
	h = ml.Add(ml.Mul(normed, ml.BroadcastTo(ml.AddScalar(scale, 1), normed.Shape())), ml.BroadcastTo(shift, normed.Shape()))

	v := d.PatchOut.Forward(h) // [B, patched_len*patch, LatentChans]
	v = ml.Slice(v, 1, 0, origLen)
	return v, nil
}
