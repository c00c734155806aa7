package bootstrap

import (
	"time"

	"github.com/kbukum/whisperd/component"
	"github.com/kbukum/whisperd/logger"
)

// logSummary logs each Describable component, then the total startup time.
func (a *App[C]) logSummary(took time.Duration) {
	all := a.Components.All()
	for _, c := range all {
		d, ok := c.(component.Describable)
		if !ok {
			continue
		}
		desc := d.Describe()
		fields := logger.Fields(
			logger.FieldComponent, c.Name(),
			"kind", desc.Type,
			"details", desc.Details,
		)
		if desc.Name != "" {
			fields["label"] = desc.Name
		}
		if desc.Port > 0 {
			fields["port"] = desc.Port
		}
		a.Logger.Info("component up", fields)
	}
	a.Logger.Info("ready", logger.Fields(
		"components", len(all),
		"startup_ms", took.Milliseconds(),
	))
}
