package ml

import (
	"fmt"

	"github.com/pdevine/tensor"
)

// MatMul multiplies the trailing two axes of a and b, batching over any
// leading axes (which must match). a is [..., M, K], b is [..., K, N],
// result is [..., M, N]. The actual 2-D product is delegated to
// pdevine/tensor's Dense.MatMul so the batching loop here stays backend
// agnostic.
func MatMul(a, b *Array) *Array {
	an, bn := a.Ndim(), b.Ndim()
	if an < 2 || bn < 2 {
		panic("ml: MatMul requires rank >= 2 operands")
	}
	m, k := a.Dim(-2), a.Dim(-1)
	k2, n := b.Dim(-2), b.Dim(-1)
	if k != k2 {
		panic(fmt.Sprintf("ml: MatMul inner dimension mismatch %d vs %d", k, k2))
	}

	batch := a.shape[:an-2]
	if !sameShape(batch, b.shape[:bn-2]) {
		panic(fmt.Sprintf("ml: MatMul batch shape mismatch %v vs %v", batch, b.shape[:bn-2]))
	}

	outShape := append(append([]int(nil), batch...), m, n)
	out := NewZeros(outShape...)

	nBatch := numel(batch)
	aMat := m * k
	bMat := k * n
	oMat := m * n
	for i := 0; i < nBatch; i++ {
		aSlice := a.data[i*aMat : (i+1)*aMat]
		bSlice := b.data[i*bMat : (i+1)*bMat]

		ta := tensor.New(tensor.WithShape(m, k), tensor.WithBacking(append([]float32(nil), aSlice...)))
		tb := tensor.New(tensor.WithShape(k, n), tensor.WithBacking(append([]float32(nil), bSlice...)))

		res, err := ta.MatMul(tb)
		if err != nil {
			panic(fmt.Sprintf("ml: MatMul: %v", err))
		}
		dense, ok := res.(*tensor.Dense)
		if !ok {
			panic("ml: MatMul: unexpected tensor result type")
		}
		copy(out.data[i*oMat:(i+1)*oMat], dense.Float32s())
	}
	return out
}
