package nn

import "github.com/ace-step/aceinfer/ml"

// Conv1D wraps a channels-last 1-D convolution with weights stored as
// [out, kernel, in] (spec.md §3's runtime convention, produced by the
// weight loader's layout conversion).
type Conv1D struct {
	Weight *ml.Array `weight:"weight"`
	Bias   *ml.Array `weight:"bias,optional"`

	Stride, Padding, Dilation int `weight:"-"`
}

func (c *Conv1D) Forward(x *ml.Array) *ml.Array {
	dilation := c.Dilation
	if dilation == 0 {
		dilation = 1
	}
	stride := c.Stride
	if stride == 0 {
		stride = 1
	}
	return ml.Conv1D(x, c.Weight, c.Bias, stride, c.Padding, dilation)
}

// ConvTranspose1D wraps a channels-last transposed 1-D convolution, weight
// also stored [out, kernel, in] after layout conversion.
type ConvTranspose1D struct {
	Weight *ml.Array `weight:"weight"`
	Bias   *ml.Array `weight:"bias,optional"`

	Stride, Padding int `weight:"-"`
}

func (c *ConvTranspose1D) Forward(x *ml.Array) *ml.Array {
	stride := c.Stride
	if stride == 0 {
		stride = 1
	}
	return ml.ConvTranspose1D(x, c.Weight, c.Bias, stride, c.Padding)
}
