// Package vae implements the Oobleck-family variational decoder
// (spec.md §4.8): a stack of upsampling decoder blocks built from Snake
// activations and residual dilated 1-D convolutions, converting an
// acoustic latent back to a stereo waveform.
package vae

// Config describes the decoder's channel/kernel topology. The defaults
// match the reference ACE-Step decoder: latent channels 64, five
// upsampling stages with ratios [2,4,4,6,10] (product 1920), a base
// channel width of 64 multiplied by every ratio up to 1920·64 at the
// widest stage, and stereo output.
type Config struct {
	LatentChannels int
	BaseChannels   int
	AudioChannels  int
	Ratios         []int
	KernelSize     int // stage-1/stage-2 conv kernel, default 7
}

// DefaultConfig returns the reference ACE-Step Oobleck decoder topology.
func DefaultConfig() Config {
	return Config{
		LatentChannels: 64,
		BaseChannels:   64,
		AudioChannels:  2,
		Ratios:         []int{2, 4, 4, 6, 10},
		KernelSize:     7,
	}
}

func (c Config) widestChannels() int {
	ch := c.BaseChannels
	for _, r := range c.Ratios {
		ch *= r
	}
	return ch
}
