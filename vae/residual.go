package vae

import (
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/nn"
)

// ResidualUnit is `y = conv2(snake(conv1(snake(x))))` with conv1 dilated
// and conv2 a plain 1x1, the input center-cropped to conv2's output
// length before the residual add (spec.md §4.8).
type ResidualUnit struct {
	Snake1 *nn.Snake   `weight:"snake1"`
	Conv1  *nn.Conv1D  `weight:"conv1"`
	Snake2 *nn.Snake   `weight:"snake2"`
	Conv2  *nn.Conv1D  `weight:"conv2"`
}

func (r *ResidualUnit) Forward(x *ml.Array) *ml.Array {
	y := r.Conv1.Forward(r.Snake1.Forward(x))
	y = r.Conv2.Forward(r.Snake2.Forward(y))

	diff := x.Dim(1) - y.Dim(1)
	cropped := x
	if diff > 0 {
		start := diff / 2
		cropped = ml.Slice(x, 1, start, start+y.Dim(1))
	}
	return ml.Add(cropped, y)
}

// initResidualUnit sets the computed (not loaded-from-weights) convolution
// hyperparameters after weight population: conv1 carries the unit's
// dilation and symmetric padding 3d (kernel 7), conv2 is a plain 1x1.
// Logscale is likewise a fixed architectural choice, not a weight.
func initResidualUnit(r *ResidualUnit, dilation int) {
	r.Snake1.Logscale = true
	r.Snake2.Logscale = true
	r.Conv1.Dilation = dilation
	r.Conv1.Padding = 3 * dilation
	r.Conv1.Stride = 1
	r.Conv2.Dilation = 1
	r.Conv2.Padding = 0
	r.Conv2.Stride = 1
}
