package network

import (
	"fmt"

	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Linear is a single layer model: softmax(xW + b) for the policy head and
// tanh(x.w + c) for the value head.
type Linear struct {
	in, out int
	weight  blas32.General // in x out
	bias    []float32
	value   blas32.Vector
	vBias   float32
}

// NewLinear initializes weights with He scaling from a seeded source.
func NewLinear(in, out int, seed uint64) *Linear {
	if in <= 0 || out <= 0 {
		panic("layer sizes must be positive")
	}
	rng := rand.New(rand.NewSource(seed))
	scale := math32.Sqrt(2 / float32(in))
	l := &Linear{
		in:     in,
		out:    out,
		weight: blas32.General{Rows: in, Cols: out, Stride: out, Data: make([]float32, in*out)},
		bias:   make([]float32, out),
		value:  blas32.Vector{N: in, Inc: 1, Data: make([]float32, in)},
	}
	for i := range l.weight.Data {
		l.weight.Data[i] = float32(rng.NormFloat64()) * scale
	}
	for i := range l.value.Data {
		l.value.Data[i] = float32(rng.NormFloat64()) * scale
	}
	return l
}

func (l *Linear) check(x []float32) error {
	if len(x) != l.in {
		return fmt.Errorf("got %d features, want %d: %w", len(x), l.in, ErrShape)
	}
	return nil
}

func (l *Linear) Predict(x []float32) ([]float32, float32, error) {
	if err := l.check(x); err != nil {
		return nil, 0, err
	}
	xv := blas32.Vector{N: l.in, Inc: 1, Data: x}
	y := blas32.Vector{N: l.out, Inc: 1, Data: append([]float32(nil), l.bias...)}
	blas32.Gemv(blas.Trans, 1.0, l.weight, xv, 1.0, y)
	softmax(y.Data)
	v := math32.Tanh(blas32.Dot(l.value, xv) + l.vBias)
	return y.Data, v, nil
}

func (l *Linear) BatchPredict(xs [][]float32) ([][]float32, []float32, error) {
	if len(xs) == 0 {
		return nil, nil, nil
	}
	n := len(xs)
	x := blas32.General{Rows: n, Cols: l.in, Stride: l.in, Data: make([]float32, n*l.in)}
	for i, row := range xs {
		if err := l.check(row); err != nil {
			return nil, nil, fmt.Errorf("batch row %d: %w", i, err)
		}
		copy(x.Data[i*l.in:], row)
	}
	y := blas32.General{Rows: n, Cols: l.out, Stride: l.out, Data: make([]float32, n*l.out)}
	for i := 0; i < n; i++ {
		copy(y.Data[i*l.out:], l.bias)
	}
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1.0, x, l.weight, 1.0, y)
	vs := blas32.Vector{N: n, Inc: 1, Data: make([]float32, n)}
	blas32.Gemv(blas.NoTrans, 1.0, x, l.value, 0.0, vs)

	ps := make([][]float32, n)
	for i := range ps {
		ps[i] = y.Data[i*l.out : (i+1)*l.out : (i+1)*l.out]
		softmax(ps[i])
		vs.Data[i] = math32.Tanh(vs.Data[i] + l.vBias)
	}
	return ps, vs.Data, nil
}

func softmax(x []float32) {
	maxX := x[0]
	for _, e := range x[1:] {
		maxX = max(maxX, e)
	}
	sum := float32(0.0)
	for i, e := range x {
		x[i] = math32.Exp(e - maxX) // Shifted against overflow
		sum += x[i]
	}
	for i := range x {
		x[i] /= sum
	}
}
