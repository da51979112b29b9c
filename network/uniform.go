package network

// Uniform predicts a uniform policy and a zero value for every state.
type Uniform struct {
	out int
}

func NewUniform(out int) *Uniform {
	if out <= 0 {
		panic("output size must be positive")
	}
	return &Uniform{out: out}
}

func (u *Uniform) policy() []float32 {
	p := make([]float32, u.out)
	for i := range p {
		p[i] = 1 / float32(u.out)
	}
	return p
}

func (u *Uniform) Predict(_ []float32) ([]float32, float32, error) {
	return u.policy(), 0, nil
}

func (u *Uniform) BatchPredict(xs [][]float32) ([][]float32, []float32, error) {
	ps := make([][]float32, len(xs))
	for i := range ps {
		ps[i] = u.policy()
	}
	return ps, make([]float32, len(xs)), nil
}
