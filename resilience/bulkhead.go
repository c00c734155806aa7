package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrBulkheadTimeout is returned by Acquire when MaxWait passes without a
// free slot.
var ErrBulkheadTimeout = errors.New("bulkhead wait timeout")

// BulkheadConfig sizes a Bulkhead and hooks its events.
type BulkheadConfig struct {
	Name          string
	MaxConcurrent int           // values below 1 mean 1
	MaxWait       time.Duration // zero waits until ctx is done

	OnAcquire func(name string, waited time.Duration)
	OnRelease func(name string)
	OnReject  func(name string, err error)
}

// Bulkhead caps how many callers hold it at once. whisperd runs it with a
// single slot as the inference gate, which admits waiters in the order the
// Go runtime wakes them and never runs two inferences together.
type Bulkhead struct {
	cfg   BulkheadConfig
	slots chan struct{}
}

// NewBulkhead creates a Bulkhead with cfg.MaxConcurrent slots.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	cfg.MaxConcurrent = max(cfg.MaxConcurrent, 1)
	return &Bulkhead{cfg: cfg, slots: make(chan struct{}, cfg.MaxConcurrent)}
}

// Acquire takes a slot, waiting while all are held. It fails with
// ErrBulkheadTimeout after MaxWait, or with ctx.Err() when ctx ends first.
// A canceled ctx never acquires, even if a slot is free. Each successful
// Acquire must be matched by one Release.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	began := time.Now()
	err := b.wait(ctx)
	if err != nil {
		if b.cfg.OnReject != nil {
			b.cfg.OnReject(b.cfg.Name, err)
		}
		return err
	}
	if b.cfg.OnAcquire != nil {
		b.cfg.OnAcquire(b.cfg.Name, time.Since(began))
	}
	return nil
}

func (b *Bulkhead) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case b.slots <- struct{}{}:
		return nil
	default:
	}

	var expired <-chan time.Time
	if b.cfg.MaxWait > 0 {
		t := time.NewTimer(b.cfg.MaxWait)
		defer t.Stop()
		expired = t.C
	}
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-expired:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire. It may run on any goroutine.
func (b *Bulkhead) Release() {
	<-b.slots
	if b.cfg.OnRelease != nil {
		b.cfg.OnRelease(b.cfg.Name)
	}
}

// InUse returns how many slots are held.
func (b *Bulkhead) InUse() int { return len(b.slots) }
