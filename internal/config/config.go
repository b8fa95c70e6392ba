// Package config implements the persisted policy document: the single
// JSON file the core mutates at runtime in response to set_* commands.
// Unlike internal/daemonconfig this is never viper-backed, because viper
// has no concept of writing a mutated in-memory value back to disk.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sugarbeard/sugarbeardd/internal/curve"
	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

// Config is the persisted policy document described by the wire protocol's
// set_* commands. All fields round-trip through JSON untouched; callers
// mutate a loaded Config in place and call Save to persist it.
type Config struct {
	AuthUsername           string    `json:"auth_username,omitempty"`
	AuthPassword           string    `json:"auth_password,omitempty"`
	AuthSessionTimeoutSecs int       `json:"auth_session_timeout_seconds"`
	BusIndex               int       `json:"bus_index"`
	BatteryAddr            uint16    `json:"battery_addr"`

	AlarmWake      AlarmWake `json:"alarm_wake"`
	AlarmWeekdays  uint8     `json:"alarm_weekday_repeat"`

	TapSingle TapPolicy `json:"tap_single"`
	TapDouble TapPolicy `json:"tap_double"`
	TapLong   TapPolicy `json:"tap_long"`

	LowBatteryShutdown LowBatteryShutdown `json:"low_battery_shutdown"`

	AutoChargeRange     ChargeRange `json:"auto_charge_range"`
	FullChargeHoldOffSecs int       `json:"full_charge_hold_off_seconds"`

	AutoPowerOn bool `json:"auto_power_on"`

	SoftPoweroff SoftPoweroff `json:"soft_poweroff"`

	AutoRTCSync    bool    `json:"auto_rtc_sync"`
	RTCAdjustPPM   float64 `json:"rtc_adjust_ppm"`

	AntiMistouch         bool `json:"anti_mistouch"`
	BatteryInputProtect  bool `json:"battery_input_protect"`

	BatteryCurve curve.Curve `json:"battery_curve,omitempty"`
}

// AlarmWake is the time-of-day the RTC alarm fires, BCD fields unused here
// since the persisted document stores it in plain decimal.
type AlarmWake struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// TapPolicy controls whether a tap gesture is acted on and what shell
// fragment runs when it fires.
type TapPolicy struct {
	Enabled bool   `json:"enabled"`
	Shell   string `json:"shell"`
}

// LowBatteryShutdown configures the safe-shutdown threshold and the delay
// before it is acted on.
type LowBatteryShutdown struct {
	ThresholdLevel float64 `json:"threshold_level"`
	DelaySeconds   int     `json:"delay_seconds"`
}

// ChargeRange is the [Begin,End] hysteresis band enforced by
// internal/chargewindow. Begin must be strictly less than End and both
// must fall in [0,100].
type ChargeRange struct {
	Begin float64 `json:"begin"`
	End   float64 `json:"end"`
}

// SoftPoweroff controls whether a shell fragment runs before shutdown.
type SoftPoweroff struct {
	Enabled bool   `json:"enabled"`
	Shell   string `json:"shell"`
}

// Default returns the document the daemon ships with: a 20-80 charge
// window, a 300s full-charge hold-off, a 1-hour session timeout, and no
// custom battery curve (drivers fall back to their own per-model default).
func Default() Config {
	return Config{
		AuthSessionTimeoutSecs: 3600,
		BusIndex:               1,
		BatteryAddr:            0x75,
		AutoChargeRange:        ChargeRange{Begin: 20, End: 80},
		FullChargeHoldOffSecs:  300,
		LowBatteryShutdown:     LowBatteryShutdown{ThresholdLevel: 5, DelaySeconds: 30},
	}
}

// Validate checks the invariants spec.md places on the document: the
// charge range must be ordered and bounded, and a user-supplied battery
// curve must be strictly increasing in both voltage and percent.
func (c Config) Validate() error {
	if c.AutoChargeRange.Begin < 0 || c.AutoChargeRange.End > 100 {
		return daemonerrors.InvalidArgumentf("auto_charge_range must fall within [0,100], got [%v,%v]", c.AutoChargeRange.Begin, c.AutoChargeRange.End)
	}
	if c.AutoChargeRange.Begin >= c.AutoChargeRange.End {
		return daemonerrors.InvalidArgumentf("auto_charge_range begin (%v) must be less than end (%v)", c.AutoChargeRange.Begin, c.AutoChargeRange.End)
	}
	if len(c.BatteryCurve) > 0 {
		if err := curve.Validate(c.BatteryCurve); err != nil {
			return daemonerrors.Configf("battery_curve invalid: %v", err)
		}
	}
	return nil
}

// Load reads and parses the policy document at path. If the file is
// missing, a fresh Default document is returned and immediately written
// back to path so a subsequent Load finds a valid file; this resolves the
// ambiguity over what the daemon should do on first boot or after the
// file is lost, favoring self-healing over refusing to start.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if saveErr := Save(path, cfg); saveErr != nil {
				return cfg, daemonerrors.Configf("write default config to %s: %v", path, saveErr)
			}
			return cfg, nil
		}
		return Config{}, daemonerrors.Configf("read config %s: %v", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, daemonerrors.Configf("parse config %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path atomically relative to readers: it creates a
// temp file in the same directory, writes and syncs it, then renames it
// into place. This replaces the teacher's open-without-truncate pattern,
// which could leave trailing bytes from a previously longer document.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return daemonerrors.Configf("marshal config: %v", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.json.tmp")
	if err != nil {
		return daemonerrors.Configf("create temp config in %s: %v", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return daemonerrors.Configf("write temp config %s: %v", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return daemonerrors.Configf("sync temp config %s: %v", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return daemonerrors.Configf("close temp config %s: %v", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return daemonerrors.Configf("rename %s to %s: %v", tmpPath, path, err)
	}
	return nil
}
