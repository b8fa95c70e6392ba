package orchestrator

import "time"

// Snapshot is the derived BatteryState published to the event bus after
// every tick; it never carries error values. Each snapshot is built fresh,
// so a field whose reading failed on that tick holds its zero value.
type Snapshot struct {
	Model string `json:"model"`

	Voltage    float64 `json:"voltage"`
	VoltageAvg float64 `json:"voltage_avg"`
	Current    float64 `json:"current"`
	CurrentAvg float64 `json:"current_avg"`
	Level      float64 `json:"level"`

	Charging        bool `json:"charging"`
	PowerPlugged    bool `json:"power_plugged"`
	AllowCharging   bool `json:"allow_charging"`
	InputProtected  bool `json:"input_protected"`
	OutputEnabled   bool `json:"output_enabled"`

	FullSince *time.Time `json:"full_since,omitempty"`
}

// snapshotLocked builds a Snapshot from the current driver state. Callers
// must already hold o.mu.
func (o *Orchestrator) snapshotLocked() Snapshot {
	s := Snapshot{Model: o.mdl.String()}
	if !o.initialized {
		return s
	}

	s.Voltage, _ = o.bat.Voltage()
	s.VoltageAvg, _ = o.bat.VoltageAvg()
	s.Current, _ = o.bat.Current()
	s.CurrentAvg, _ = o.bat.CurrentAvg()
	s.Level, _ = o.bat.Level()
	s.Charging, _ = o.bat.IsCharging()
	s.PowerPlugged, _ = o.bat.IsPowerPlugged()
	s.AllowCharging, _ = o.bat.IsAllowCharging()
	s.InputProtected, _ = o.bat.IsInputProtected()
	s.OutputEnabled, _ = o.bat.OutputEnabled()

	if fs := o.window.FullSince(); !fs.IsZero() {
		s.FullSince = &fs
	}
	return s
}

// Snapshot returns the current battery state without waiting for the next
// tick, used by the HTTP status endpoint.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Credentials returns the persisted auth fields the HTTP session-login
// endpoint checks against, and the configured session lifetime.
func (o *Orchestrator) Credentials() (username, password string, sessionTimeout time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg.AuthUsername, o.cfg.AuthPassword, time.Duration(o.cfg.AuthSessionTimeoutSecs) * time.Second
}
