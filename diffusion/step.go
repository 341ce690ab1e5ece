package diffusion

import (
	"github.com/ace-step/aceinfer/kvcache"
	"github.com/ace-step/aceinfer/ml"
)

// CFGConfig controls the classifier-free guidance path of spec.md §4.7.
type CFGConfig struct {
	GuidanceScale     float32
	IntervalStart     float32
	IntervalEnd       float32
	Momentum          float32
	NormThreshold     float32
	NullEmbedding     *ml.Array // [1,1,H_enc]; required to enable CFG
}

// active reports whether CFG should run at timestep t: a guidance scale
// above 1, a null embedding available, and t inside the configured
// interval.
func (c CFGConfig) active(t float32) bool {
	return c.GuidanceScale > 1 && c.NullEmbedding != nil && t >= c.IntervalStart && t <= c.IntervalEnd
}

// Step advances the latent x from t to nextT (nextT == nil on the final
// step) by one velocity prediction — APG-combined CFG when active, a
// single conditional forward otherwise — followed by the ODE update of
// spec.md §4.6.
//
// CFG is expressed here as two independent stepper calls (conditional,
// then null-conditioned) rather than one physically doubled batch: both
// forwards disable the cross-attention cache regardless (spec.md §4.7),
// and every op in this module's attention/conv stack is already
// batch-independent, so the two forms are numerically identical while
// avoiding the bookkeeping of splitting a combined batch back apart.
func Step(stepper DiffusionStepper, x *ml.Array, t float32, nextT *float32, cond Conditions, cfg CFGConfig, momentum *MomentumState, cache *kvcache.Cross) (*ml.Array, error) {
	var v *ml.Array
	var err error

	if cfg.active(t) {
		disabledCache := kvcache.NewCross(false)
		pCond, perr := stepper.Velocity(x, t, cond, disabledCache)
		if perr != nil {
			return nil, perr
		}
		nullCond := cond
		nullCond.EncoderStates = ml.BroadcastTo(cfg.NullEmbedding, cond.EncoderStates.Shape())
		pUncond, perr := stepper.Velocity(x, t, nullCond, disabledCache)
		if perr != nil {
			return nil, perr
		}
		v = APG(pCond, pUncond, APGConfig{
			GuidanceScale: cfg.GuidanceScale,
			Momentum:      cfg.Momentum,
			NormThreshold: cfg.NormThreshold,
		}, momentum)
	} else {
		v, err = stepper.Velocity(x, t, cond, cache)
		if err != nil {
			return nil, err
		}
	}

	return odeStep(x, v, t, nextT), nil
}

// odeStep applies spec.md §4.6: x - v·(t - nextT), or x - v·t on the last
// step (nextT == nil), preserved as a hard rule per spec.md §9.
func odeStep(x, v *ml.Array, t float32, nextT *float32) *ml.Array {
	dt := t
	if nextT != nil {
		dt = t - *nextT
	}
	return ml.Sub(x, ml.MulScalar(v, dt))
}
