package transcription

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/whisperd/errors"
	"github.com/kbukum/whisperd/logger"
	"github.com/kbukum/whisperd/observability"
	"github.com/kbukum/whisperd/resilience"
)

// detachedLimit caps a backend call that outlives its caller. The caller is
// released at DispatcherConfig.Timeout; the gate is held until this limit.
const detachedLimit = 30 * time.Minute

// DispatcherConfig bounds time spent waiting for and inside the inference gate.
type DispatcherConfig struct {
	// Timeout bounds one inference call. Zero means no limit.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// MaxWait bounds the wait for the gate. Zero waits as long as the request lives.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait" validate:"gte=0"`
}

// Dispatcher runs one inference at a time against the configured backend.
type Dispatcher struct {
	backend Backend
	gate    *resilience.Bulkhead
	cfg     DispatcherConfig
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewDispatcher creates a dispatcher with a single-slot gate. metrics may be nil.
func NewDispatcher(backend Backend, cfg DispatcherConfig, metrics *observability.Metrics, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{
		backend: backend,
		cfg:     cfg,
		metrics: metrics,
		log:     log.WithComponent("dispatcher"),
	}
	d.gate = resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "inference",
		MaxConcurrent: 1,
		MaxWait:       cfg.MaxWait,
		OnAcquire: func(_ string, waited time.Duration) {
			d.metrics.RecordGateAcquired(context.Background(), waited)
		},
		OnRelease: func(string) {
			d.metrics.RecordGateReleased(context.Background())
		},
		OnReject: func(name string, err error) {
			d.log.Warn("inference gate rejected request", logger.Fields("gate", name, logger.FieldError, err.Error()))
		},
	})
	return d
}

// Backend returns the wrapped backend.
func (d *Dispatcher) Backend() Backend { return d.backend }

// Busy reports whether an inference is running.
func (d *Dispatcher) Busy() bool { return d.gate.InUse() > 0 }

type outcome struct {
	res *Result
	err error
}

// Transcribe waits for the gate, then runs the backend under the configured
// timeout. If the caller gives up first, the backend keeps the gate until it
// actually returns, so the next request never overlaps a running inference.
// Backends that are not Interruptible run on a context detached from the
// caller, since cancelling them would only abandon work the runtime still does.
func (d *Dispatcher) Transcribe(ctx context.Context, req Request) (*Result, error) {
	ctx, end := observability.StartStage(ctx, "inference", attribute.String(observability.AttrBackend, d.backend.Name()))

	if err := d.gate.Acquire(ctx); err != nil {
		err = gateError(err)
		end(err)
		return nil, err
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if d.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
	}

	callCtx, callCancel := d.callContext(ctx, runCtx)

	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		defer d.gate.Release()
		defer callCancel()
		res, err := d.backend.Transcribe(callCtx, req)
		status := "ok"
		if err != nil {
			status = "error"
		}
		d.metrics.RecordInference(context.Background(), d.backend.Name(), status, time.Since(start))
		done <- outcome{res: res, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-runCtx.Done():
		select {
		case out = <-done:
		default:
			out.err = apperrors.Timeout("inference").WithCause(runCtx.Err())
		}
	}
	cancel()
	if out.err == nil && out.res == nil {
		out.err = apperrors.ResultParseFailed(d.backend.Name()+" returned no result", nil)
	}

	log := d.log.WithContext(ctx)
	if out.err != nil {
		log.Warn("inference failed", logger.Fields(
			logger.FieldBackend, d.backend.Name(),
			logger.FieldError, out.err.Error(),
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
	} else {
		log.Debug("inference finished", logger.Fields(
			logger.FieldBackend, d.backend.Name(),
			"language", out.res.Language,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
	}
	end(out.err)
	return out.res, out.err
}

// callContext picks the context the backend runs on. An Interruptible backend
// shares the caller's deadline; any other backend keeps request values but
// only stops at max(detachedLimit, Timeout).
func (d *Dispatcher) callContext(ctx, runCtx context.Context) (context.Context, context.CancelFunc) {
	if stopsOnCancel(d.backend) {
		return runCtx, func() {}
	}
	return context.WithTimeout(context.WithoutCancel(ctx), max(detachedLimit, d.cfg.Timeout))
}

func gateError(err error) error {
	if errors.Is(err, resilience.ErrBulkheadTimeout) {
		return apperrors.ServiceUnavailable("inference backend").WithCause(err)
	}
	return apperrors.Timeout("waiting for inference").WithCause(err)
}
