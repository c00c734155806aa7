package component

import "context"

// HealthStatus is the state a component reports on /health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in the /health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is started once, stopped once, and polled for health.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is a component's line in the startup summary.
type Description struct {
	Name    string // display label, optional
	Type    string // "inference", "server", "observability"
	Details string // e.g. "whisper.cpp ./ggml-base-q5_1.bin"
	Port    int    // 0 when the component does not listen
}

// Describable components appear in the startup summary.
type Describable interface {
	Describe() Description
}
