// Package debug provides component-scoped trace logging: a single
// "debug.enabled" + "debug.components" switch (see internal/daemonconfig)
// gates detailed per-tick tracing of the poll loop without touching the
// normal info-level logrus output.
package debug

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config controls which components emit trace-level logging.
type Config struct {
	Enabled    bool
	Components []string
}

// Logger gates logrus calls by component name.
type Logger struct {
	logger     *logrus.Logger
	enabled    bool
	mutex      sync.RWMutex
	components map[string]bool
}

// New builds a Logger sharing the daemon's base logrus.Logger output and
// formatter, adding only the component filter on top.
func New(base *logrus.Logger, cfg Config) *Logger {
	components := make(map[string]bool, len(cfg.Components))
	for _, c := range cfg.Components {
		components[c] = true
	}
	return &Logger{logger: base, enabled: cfg.Enabled, components: components}
}

// IsComponentEnabled reports whether component should emit trace logs. An
// empty component allowlist means every component is enabled.
func (l *Logger) IsComponentEnabled(component string) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	if !l.enabled {
		return false
	}
	if len(l.components) == 0 {
		return true
	}
	return l.components[component]
}

// Trace logs message at debug level if component is enabled.
func (l *Logger) Trace(component, message string, fields logrus.Fields) {
	if !l.IsComponentEnabled(component) {
		return
	}
	l.logger.WithFields(fields).WithField("component", component).Debug(message)
}

// TraceError logs err at debug level if component is enabled.
func (l *Logger) TraceError(component, message string, err error) {
	if !l.IsComponentEnabled(component) {
		return
	}
	l.logger.WithField("component", component).WithError(err).Debug(message)
}

func (l *Logger) String() string {
	return fmt.Sprintf("debug.Logger(enabled=%v, components=%v)", l.enabled, l.components)
}
