package nn

import (
	"testing"

	"github.com/ace-step/aceinfer/ml"
	"github.com/stretchr/testify/assert"
)

func TestSnakeZeroAlphaIsIdentity(t *testing.T) {
	s := &Snake{
		Alpha: ml.NewZeros(2),
		Beta:  ml.NewZeros(2),
	}
	x := ml.NewFromFloats([]float32{1, -2, 3, 4}, 1, 2, 2)
	out := s.Forward(x)
	assert.Equal(t, x.Data(), out.Data())
}

func TestSnakeLogscaleExponentiatesParams(t *testing.T) {
	// alpha=beta=log(1)=0 in logscale mode is equivalent to alpha=beta=1
	// in linear mode.
	logscale := &Snake{Alpha: ml.NewZeros(1), Beta: ml.NewZeros(1), Logscale: true}
	linear := &Snake{Alpha: ml.Full(1, 1), Beta: ml.Full(1, 1)}

	x := ml.NewFromFloats([]float32{0.3, -0.7, 1.1}, 1, 3, 1)
	a := logscale.Forward(x)
	b := linear.Forward(x)
	for i := range a.Data() {
		assert.InDelta(t, b.Data()[i], a.Data()[i], 1e-6)
	}
}

func TestSnakeIncreasesMonotonicallyAroundZero(t *testing.T) {
	s := &Snake{Alpha: ml.Full(1, 1), Beta: ml.Full(1, 1)}
	small := s.Forward(ml.NewFromFloats([]float32{0.1}, 1, 1, 1))
	large := s.Forward(ml.NewFromFloats([]float32{0.2}, 1, 1, 1))
	assert.Less(t, small.Data()[0], large.Data()[0])
}
