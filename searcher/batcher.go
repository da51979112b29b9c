package searcher

// Batcher queues states awaiting network evaluation and hands them to
// evaluate in chunks of at most size.
type Batcher struct {
	size     int
	pending  []StateId
	evaluate func([]StateId) error
}

func NewBatcher(size int, evaluate func([]StateId) error) *Batcher {
	if size < 1 {
		panic("batch size must be positive")
	}
	return &Batcher{size: size, evaluate: evaluate}
}

// Enqueue adds s to the queue, flushing first when a full batch is waiting.
// s stays queued even when that flush fails.
func (b *Batcher) Enqueue(s StateId) error {
	var err error
	if len(b.pending) >= b.size {
		err = b.Flush()
	}
	b.pending = append(b.pending, s)
	return err
}

// Flush evaluates every pending state, oldest first. A chunk that fails to
// evaluate stays at the head of the queue for the next flush.
func (b *Batcher) Flush() error {
	for len(b.pending) > 0 {
		n := min(b.size, len(b.pending))
		chunk := b.pending[:n:n]
		if err := b.evaluate(chunk); err != nil {
			return err
		}
		b.pending = b.pending[n:]
	}
	return nil
}

func (b *Batcher) Pending() int {
	return len(b.pending)
}

func (b *Batcher) Clear() {
	b.pending = nil
}
