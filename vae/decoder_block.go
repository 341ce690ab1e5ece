package vae

import (
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/nn"
)

// DecoderBlock upsamples by one ratio: Snake, then a transposed
// convolution (kernel 2r, stride r, padding (r+1)/2), then three residual
// units with dilations 1, 3, 9 (spec.md §4.8).
type DecoderBlock struct {
	Snake   *nn.Snake              `weight:"snake1"`
	Upsample *nn.ConvTranspose1D   `weight:"conv_t1"`
	Residuals [3]*ResidualUnit     `weight:"res_unit"`
}

func (d *DecoderBlock) Forward(x *ml.Array) *ml.Array {
	h := d.Snake.Forward(x)
	h = d.Upsample.Forward(h)
	for _, r := range d.Residuals {
		h = r.Forward(h)
	}
	return h
}

var residualDilations = [3]int{1, 3, 9}

// initDecoderBlock wires the ratio-dependent transposed-conv stride and
// the fixed 1/3/9 residual dilations after weight population.
func initDecoderBlock(d *DecoderBlock, ratio int) {
	d.Snake.Logscale = true
	d.Upsample.Stride = ratio
	d.Upsample.Padding = (ratio + 1) / 2
	for i, r := range d.Residuals {
		initResidualUnit(r, residualDilations[i])
	}
}
