package courier

import (
	"context"
	"sync"
)

// Delivery records one send observed by a Recorder.
type Delivery struct {
	Handle string
	Text   string
}

// Recorder is a Courier fake for tests: it captures deliveries and can be
// told to fail.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery

	// Err, when set, is returned by every Send.
	Err error
}

// Send records the delivery or returns the configured error.
func (r *Recorder) Send(ctx context.Context, handle string, text string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, Delivery{Handle: handle, Text: text})
	return nil
}

// Deliveries returns a copy of everything sent so far.
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}
