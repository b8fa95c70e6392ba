package debug

import (
	"time"

	"github.com/sirupsen/logrus"
)

// CallTracer wraps a Logger with a fixed component name for call-timing
// traces; Start brackets one call with a started/finished trace pair.
type CallTracer struct {
	logger    *Logger
	component string
}

// NewCallTracer builds a CallTracer bound to component.
func NewCallTracer(component string, logger *Logger) *CallTracer {
	return &CallTracer{component: component, logger: logger}
}

// Start logs the beginning of a traced call and returns a function to be
// deferred at the call site to log its completion and duration.
func (t *CallTracer) Start(method string) func() {
	if t.logger == nil || !t.logger.IsComponentEnabled(t.component) {
		return func() {}
	}
	begin := time.Now()
	t.logger.Trace(t.component, "call started", logrus.Fields{"method": method})
	return func() {
		t.logger.Trace(t.component, "call finished", logrus.Fields{
			"method":   method,
			"duration": time.Since(begin).String(),
		})
	}
}
