package importer

import "context"

// Gate admits at most one catalog-mutating run at a time, process-wide.
// The lease spans a whole run, both passes included: volume numbering and
// conflict detection are run-scoped, so two interleaved runs could each
// decide the other's rows do not exist yet and create duplicates.
type Gate struct {
	ch chan struct{}
}

func NewGate() *Gate {
	g := &Gate{ch: make(chan struct{}, 1)}
	g.ch <- struct{}{}
	return g
}

// Acquire blocks until the gate is free or the context is done.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case <-g.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the gate for the next run. Must be called exactly once per
// successful Acquire.
func (g *Gate) Release() {
	g.ch <- struct{}{}
}
