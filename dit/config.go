// Package dit implements the Diffusion Transformer decoder: self- and
// cross-attention layers modulated by AdaLN timestep conditioning,
// predicting a velocity field over a noisy acoustic latent (spec.md
// §4.3–§4.5).
package dit

// Config is the DiT decoder's architecture hyperparameters. Defaults
// match the reference ACE-Step DiT.
type Config struct {
	Dim          int
	NHeads       int
	NKVHeads     int
	NLayers      int
	PatchSize    int
	LatentChans  int // C_lat, 64
	ContextChans int // C_ctx, 128
	EncoderDim   int // H_enc, 2048
	NormEps      float32
	RopeTheta    float32
	SlidingWindow int
}

// DefaultConfig returns the reference ACE-Step DiT topology: 24 layers,
// model width 2304, 24 query heads grouped into 8 kv heads, patch size 2,
// rotary theta 10000, a sliding window of 64 positions on odd layers.
func DefaultConfig() Config {
	return Config{
		Dim:           2304,
		NHeads:        24,
		NKVHeads:      8,
		NLayers:       24,
		PatchSize:     2,
		LatentChans:   64,
		ContextChans:  128,
		EncoderDim:    2048,
		NormEps:       1e-6,
		RopeTheta:     10000,
		SlidingWindow: 64,
	}
}

func (c Config) headDim() int { return c.Dim / c.NHeads }
