package nn

import (
	"github.com/ace-step/aceinfer/ml"
	"github.com/chewxy/math32"
)

// BuildRotary precomputes the (cos, sin) tables for 1-D rotary position
// embedding over `length` positions and `headDim` channels, each of shape
// [length, headDim/2]. Generalized from the teacher's 3-axis image rotary
// table to the single time axis this spec's audio sequence uses.
func BuildRotary(length, headDim int, theta float32) (cos, sin *ml.Array) {
	half := headDim / 2
	freqs := make([]float32, half)
	for i := 0; i < half; i++ {
		freqs[i] = 1 / math32.Pow(theta, float32(2*i)/float32(headDim))
	}

	cosData := make([]float32, length*half)
	sinData := make([]float32, length*half)
	for p := 0; p < length; p++ {
		for i := 0; i < half; i++ {
			angle := float32(p) * freqs[i]
			cosData[p*half+i] = math32.Cos(angle)
			sinData[p*half+i] = math32.Sin(angle)
		}
	}
	return ml.NewFromFloats(cosData, length, half), ml.NewFromFloats(sinData, length, half)
}

// ApplyRotary rotates x [B, H, L, headDim] using cos/sin [L, headDim/2],
// pairing even/odd channels the same way the teacher's image RoPE does:
// (x1,x2) -> (x1·cos − x2·sin, x1·sin + x2·cos) interleaved back together.
func ApplyRotary(x, cos, sin *ml.Array) *ml.Array {
	b, h, l, d := x.Dim(0), x.Dim(1), x.Dim(2), x.Dim(3)
	half := d / 2

	x1 := ml.NewZeros(b, h, l, half)
	x2 := ml.NewZeros(b, h, l, half)
	for bi := 0; bi < b; bi++ {
		for hi := 0; hi < h; hi++ {
			for li := 0; li < l; li++ {
				for i := 0; i < half; i++ {
					v1 := x.Data()[((bi*h+hi)*l+li)*d+2*i]
					v2 := x.Data()[((bi*h+hi)*l+li)*d+2*i+1]
					x1.Data()[((bi*h+hi)*l+li)*half+i] = v1
					x2.Data()[((bi*h+hi)*l+li)*half+i] = v2
				}
			}
		}
	}

	cosB := ml.BroadcastTo(ml.Reshape(cos.Clone(), 1, 1, l, half), []int{b, h, l, half})
	sinB := ml.BroadcastTo(ml.Reshape(sin.Clone(), 1, 1, l, half), []int{b, h, l, half})

	r1 := ml.Sub(ml.Mul(x1, cosB), ml.Mul(x2, sinB))
	r2 := ml.Add(ml.Mul(x1, sinB), ml.Mul(x2, cosB))

	out := ml.NewZeros(b, h, l, d)
	for bi := 0; bi < b; bi++ {
		for hi := 0; hi < h; hi++ {
			for li := 0; li < l; li++ {
				for i := 0; i < half; i++ {
					out.Data()[((bi*h+hi)*l+li)*d+2*i] = r1.Data()[((bi*h+hi)*l+li)*half+i]
					out.Data()[((bi*h+hi)*l+li)*d+2*i+1] = r2.Data()[((bi*h+hi)*l+li)*half+i]
				}
			}
		}
	}
	return out
}
