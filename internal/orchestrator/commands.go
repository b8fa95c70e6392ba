package orchestrator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sugarbeard/sugarbeardd/internal/config"
	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/internal/rtc"
	"github.com/sugarbeard/sugarbeardd/internal/wire"
	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
	"github.com/sugarbeard/sugarbeardd/pkg/version"
)

// TemperatureReader serves "get temperature"; nil when the daemon has no
// host sensor wired (command then fails Unsupported).
type TemperatureReader interface {
	Temperature(ctx context.Context) (float64, error)
}

// AlarmScheduler serves "get rtc_alarm_time_list"; nil falls back to just
// the single configured alarm time.
type AlarmScheduler interface {
	NextOccurrences(t model.RawTime, mask rtc.WeekdayMask, now time.Time, n int) ([]time.Time, error)
}

// SetTemperatureReader wires an optional host sensor into the command
// surface. Must be called before HandleCommand is used concurrently.
func (o *Orchestrator) SetTemperatureReader(r TemperatureReader) { o.tempReader = r }

// SetAlarmScheduler wires an optional cron-based alarm preview.
func (o *Orchestrator) SetAlarmScheduler(s AlarmScheduler) { o.alarmSched = s }

// HandleCommand parses and executes a single wire-protocol line, returning
// the formatted response (including trailing newline). Marshaled onto the
// same lock the poll tick holds, per spec.md §5's "commands are marshaled
// onto the single orchestrator tick goroutine."
func (o *Orchestrator) HandleCommand(line string) string {
	trimmed := strings.TrimSpace(line)
	cmd, ok := wire.Parse(line)
	if !ok {
		return ""
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	val, err := o.dispatch(cmd)
	if err != nil {
		return wire.FormatError(trimmed, err)
	}
	return wire.FormatValue(trimmed, val)
}

func (o *Orchestrator) dispatch(cmd wire.Command) (any, error) {
	switch cmd.Name {
	case "get":
		if len(cmd.Args) == 0 {
			return nil, daemonerrors.InvalidArgumentf("get requires a field name")
		}
		return o.getField(cmd.Args[0], cmd.Args[1:])

	case "set_auth":
		return o.setAuth(cmd.Args)
	case "set_battery_charging_range":
		return o.setChargingRange(cmd)
	case "set_battery_output":
		return o.setBool(cmd, func(b bool) error { return o.bat.ToggleOutputEnabled(b) })
	case "set_battery_input_protect":
		return o.setBool(cmd, func(b bool) error { return o.bat.ToggleInputProtected(b) })
	case "set_allow_charging":
		return o.setBool(cmd, func(b bool) error { return o.bat.ToggleAllowCharging(b) })
	case "set_full_charge_duration":
		return o.setFullChargeDuration(cmd)
	case "set_safe_shutdown_level":
		return o.setSafeShutdownLevel(cmd)
	case "set_safe_shutdown_delay":
		return o.setSafeShutdownDelay(cmd)
	case "set_button_enable":
		return o.setButtonEnable(cmd)
	case "set_button_shell":
		return o.setButtonShell(cmd)
	case "set_auto_power_on":
		return o.setBool(cmd, o.setAutoPowerOnLocked)
	case "set_anti_mistouch":
		return o.setConfigBool(cmd, func(c *config.Config, b bool) { c.AntiMistouch = b })
	case "set_soft_poweroff":
		return o.setConfigBool(cmd, func(c *config.Config, b bool) { c.SoftPoweroff.Enabled = b })
	case "set_soft_poweroff_shell":
		return o.setShell(cmd, func(c *config.Config, s string) { c.SoftPoweroff.Shell = s })
	case "set_input_protect":
		return o.setConfigBool(cmd, func(c *config.Config, b bool) { c.BatteryInputProtect = b })
	case "set_rtc_adjust_ppm":
		return o.setRTCAdjustPPM(cmd)
	case "set_alarm_repeat":
		return o.setAlarmRepeat(cmd)

	case "rtc_pi2rtc":
		return o.rtcPi2Rtc()
	case "rtc_rtc2pi":
		return o.rtcRtc2Pi()
	case "rtc_alarm_set":
		return o.rtcAlarmSet(cmd)
	case "rtc_alarm_disable":
		return "ok", o.rtcDrv.ToggleAlarmEnabled(false)
	case "rtc_clear_flag":
		return "ok", o.rtcDrv.ClearAlarmFlag()
	case "rtc_test_wake":
		now, err := model.FromTime(time.Now())
		if err != nil {
			return nil, daemonerrors.InvalidArgumentf("%v", err)
		}
		return "ok", o.rtcDrv.SetTestWake(now)
	case "force_shutdown":
		return o.forceShutdown()

	default:
		return nil, daemonerrors.InvalidArgumentf("unknown command %q", cmd.Name)
	}
}

func (o *Orchestrator) getField(field string, rest []string) (any, error) {
	switch field {
	case "version":
		return version.GetVersion(), nil
	case "firmware_version":
		return version.GetVersion(), nil
	case "model":
		return o.mdl.String(), nil
	case "battery":
		return o.bat.Level()
	case "battery_v":
		return o.bat.Voltage()
	case "battery_i":
		return o.bat.Current()
	case "battery_led_amount":
		return o.mdl.LEDAmount(), nil
	case "battery_power_plugged":
		return o.bat.IsPowerPlugged()
	case "battery_allow_charging":
		return o.bat.IsAllowCharging()
	case "battery_charging_range":
		return fmt.Sprintf("%g,%g", o.cfg.AutoChargeRange.Begin, o.cfg.AutoChargeRange.End), nil
	case "battery_charging":
		return o.bat.IsCharging()
	case "battery_input_protect_enabled":
		return o.bat.IsInputProtected()
	case "battery_output_enabled":
		return o.bat.OutputEnabled()
	case "full_charge_duration":
		return o.cfg.FullChargeHoldOffSecs, nil
	case "system_time":
		return time.Now().UTC().Format(time.RFC3339), nil
	case "rtc_time":
		rt, err := o.rtcDrv.ReadTime()
		if err != nil {
			return nil, err
		}
		t, err := rt.ToTime()
		if err != nil {
			return nil, daemonerrors.InvalidArgumentf("%v", err)
		}
		return t.Format(time.RFC3339), nil
	case "rtc_time_list":
		rt, err := o.rtcDrv.ReadTime()
		if err != nil {
			return nil, err
		}
		return rawTimeFields(rt), nil
	case "rtc_alarm_flag":
		return o.rtcDrv.ReadAlarmFlag()
	case "rtc_alarm_time":
		rt, err := o.rtcDrv.ReadAlarmTime()
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("%02d:%02d:%02d", rt.Hour, rt.Min, rt.Sec), nil
	case "rtc_alarm_time_list":
		return o.alarmTimeList()
	case "rtc_alarm_enabled":
		return o.rtcDrv.IsAlarmEnabled()
	case "rtc_adjust_ppm":
		return o.cfg.RTCAdjustPPM, nil
	case "alarm_repeat":
		return o.cfg.AlarmWeekdays, nil
	case "safe_shutdown_level":
		return o.cfg.LowBatteryShutdown.ThresholdLevel, nil
	case "safe_shutdown_delay":
		return o.cfg.LowBatteryShutdown.DelaySeconds, nil
	case "button_enable":
		p, err := tapPolicyFor(&o.cfg, rest)
		if err != nil {
			return nil, err
		}
		return p.Enabled, nil
	case "button_shell":
		p, err := tapPolicyFor(&o.cfg, rest)
		if err != nil {
			return nil, err
		}
		return p.Shell, nil
	case "auto_power_on":
		return o.cfg.AutoPowerOn, nil
	case "anti_mistouch":
		return o.cfg.AntiMistouch, nil
	case "soft_poweroff":
		return o.cfg.SoftPoweroff.Enabled, nil
	case "soft_poweroff_shell":
		return o.cfg.SoftPoweroff.Shell, nil
	case "temperature":
		if o.tempReader == nil {
			return nil, daemonerrors.Unsupportedf("no host temperature sensor configured")
		}
		return o.tempReader.Temperature(context.Background())
	case "input_protect":
		return o.cfg.BatteryInputProtect, nil
	default:
		return nil, daemonerrors.InvalidArgumentf("unknown get field %q", field)
	}
}

func rawTimeFields(rt model.RawTime) string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d,%d", rt.Sec, rt.Min, rt.Hour, rt.Weekday, rt.Day, rt.Month, rt.Year)
}

func (o *Orchestrator) alarmTimeList() (any, error) {
	rt, err := o.rtcDrv.ReadAlarmTime()
	if err != nil {
		return nil, err
	}
	mask := rtc.WeekdayMask(o.cfg.AlarmWeekdays)
	if o.alarmSched == nil {
		return fmt.Sprintf("%02d:%02d:%02d", rt.Hour, rt.Min, rt.Sec), nil
	}
	occ, err := o.alarmSched.NextOccurrences(rt, mask, time.Now(), 5)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(occ))
	for i, t := range occ {
		parts[i] = t.Format(time.RFC3339)
	}
	return strings.Join(parts, ","), nil
}

func tapPolicyFor(cfg *config.Config, args []string) (*config.TapPolicy, error) {
	if len(args) == 0 {
		return nil, daemonerrors.InvalidArgumentf("expected a button mode (single|double|long)")
	}
	switch strings.ToLower(args[0]) {
	case "single":
		return &cfg.TapSingle, nil
	case "double":
		return &cfg.TapDouble, nil
	case "long":
		return &cfg.TapLong, nil
	default:
		return nil, daemonerrors.InvalidArgumentf("unknown button mode %q", args[0])
	}
}

// saveLocked persists the mutated config; per spec.md §7, a save failure
// after a successful in-memory mutation is reported but the mutation is
// never rolled back.
func (o *Orchestrator) saveLocked() error {
	if err := config.Save(o.cfgPath, o.cfg); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) setAuth(args []string) (any, error) {
	if len(args) < 2 {
		return nil, daemonerrors.InvalidArgumentf("set_auth requires <username> <password>")
	}
	o.cfg.AuthUsername = args[0]
	o.cfg.AuthPassword = args[1]
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return "ok", nil
}

func (o *Orchestrator) setChargingRange(cmd wire.Command) (any, error) {
	vals, err := cmd.Floats()
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("%v", err)
	}
	if len(vals) != 2 {
		return nil, daemonerrors.InvalidArgumentf("expected begin,end got %d values", len(vals))
	}
	next := o.cfg
	next.AutoChargeRange = config.ChargeRange{Begin: vals[0], End: vals[1]}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	o.cfg = next
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return fmt.Sprintf("%g,%g", o.cfg.AutoChargeRange.Begin, o.cfg.AutoChargeRange.End), nil
}

func (o *Orchestrator) setBool(cmd wire.Command, apply func(bool) error) (any, error) {
	if len(cmd.Args) == 0 {
		return nil, daemonerrors.InvalidArgumentf("expected a boolean argument")
	}
	b, err := wire.Bool(cmd.Args[0])
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("%v", err)
	}
	if err := apply(b); err != nil {
		return nil, err
	}
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return b, nil
}

func (o *Orchestrator) setConfigBool(cmd wire.Command, apply func(*config.Config, bool)) (any, error) {
	if len(cmd.Args) == 0 {
		return nil, daemonerrors.InvalidArgumentf("expected a boolean argument")
	}
	b, err := wire.Bool(cmd.Args[0])
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("%v", err)
	}
	apply(&o.cfg, b)
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return b, nil
}

func (o *Orchestrator) setShell(cmd wire.Command, apply func(*config.Config, string)) (any, error) {
	apply(&o.cfg, cmd.Raw())
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return cmd.Raw(), nil
}

// setAutoPowerOnLocked backs the wire set_auto_power_on command (the
// driver's Init applies the startup value of the same flag on its own):
// enabling it disables the light-load shutdown feature so the board powers
// back up when external power returns.
func (o *Orchestrator) setAutoPowerOnLocked(enable bool) error {
	if err := o.bat.ToggleLightLoadShutdown(!enable); err != nil {
		return err
	}
	o.cfg.AutoPowerOn = enable
	return nil
}

func (o *Orchestrator) setFullChargeDuration(cmd wire.Command) (any, error) {
	secs, err := parseNonNegativeInt(cmd)
	if err != nil {
		return nil, err
	}
	o.cfg.FullChargeHoldOffSecs = secs
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return secs, nil
}

func (o *Orchestrator) setSafeShutdownLevel(cmd wire.Command) (any, error) {
	v, err := parseFloatArg(cmd)
	if err != nil {
		return nil, err
	}
	o.cfg.LowBatteryShutdown.ThresholdLevel = v
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return v, nil
}

func (o *Orchestrator) setSafeShutdownDelay(cmd wire.Command) (any, error) {
	secs, err := parseNonNegativeInt(cmd)
	if err != nil {
		return nil, err
	}
	o.cfg.LowBatteryShutdown.DelaySeconds = secs
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return secs, nil
}

func (o *Orchestrator) setButtonEnable(cmd wire.Command) (any, error) {
	if len(cmd.Args) < 2 {
		return nil, daemonerrors.InvalidArgumentf("set_button_enable requires <mode> <bool>")
	}
	p, err := tapPolicyFor(&o.cfg, cmd.Args[:1])
	if err != nil {
		return nil, err
	}
	b, err := wire.Bool(cmd.Args[1])
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("%v", err)
	}
	p.Enabled = b
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return b, nil
}

func (o *Orchestrator) setButtonShell(cmd wire.Command) (any, error) {
	fields := strings.Fields(cmd.Raw())
	if len(fields) < 1 {
		return nil, daemonerrors.InvalidArgumentf("set_button_shell requires <mode> <shell>")
	}
	p, err := tapPolicyFor(&o.cfg, fields[:1])
	if err != nil {
		return nil, err
	}
	shell := strings.TrimSpace(strings.TrimPrefix(cmd.Raw(), fields[0]))
	p.Shell = shell
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return shell, nil
}

func (o *Orchestrator) setRTCAdjustPPM(cmd wire.Command) (any, error) {
	v, err := parseFloatArg(cmd)
	if err != nil {
		return nil, err
	}
	o.cfg.RTCAdjustPPM = v
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return v, nil
}

func (o *Orchestrator) setAlarmRepeat(cmd wire.Command) (any, error) {
	if len(cmd.Args) == 0 {
		return nil, daemonerrors.InvalidArgumentf("set_alarm_repeat requires a weekday mask")
	}
	n, err := strconv.ParseUint(cmd.Args[0], 10, 8)
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("invalid weekday mask %q: %v", cmd.Args[0], err)
	}
	o.cfg.AlarmWeekdays = uint8(n)
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return o.cfg.AlarmWeekdays, nil
}

func (o *Orchestrator) rtcPi2Rtc() (any, error) {
	now, err := model.FromTime(time.Now())
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("%v", err)
	}
	if err := o.rtcDrv.WriteTime(now); err != nil {
		return nil, err
	}
	return "ok", nil
}

// rtcRtc2Pi shells out to the host's date(1) utility to set the system
// clock from the RTC, since Go has no portable syscall for it and the
// teacher repo's precedent for host mutation (tapshell) is already a
// shell-out.
func (o *Orchestrator) rtcRtc2Pi() (any, error) {
	rt, err := o.rtcDrv.ReadTime()
	if err != nil {
		return nil, err
	}
	t, err := rt.ToTime()
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("%v", err)
	}
	cmdline := fmt.Sprintf("date -u -s @%d", t.Unix())
	if err := exec.Command("sh", "-c", cmdline).Run(); err != nil {
		o.log.WithError(err).Warn("rtc_rtc2pi: setting host clock failed")
		return nil, daemonerrors.Busf("set host clock: %v", err)
	}
	return "ok", nil
}

func (o *Orchestrator) rtcAlarmSet(cmd wire.Command) (any, error) {
	if o.cfg.AutoPowerOn {
		return nil, daemonerrors.Conflictf("auto_power_on is in conflict with the alarm function")
	}
	if len(cmd.Args) < 2 {
		return nil, daemonerrors.InvalidArgumentf("rtc_alarm_set requires <datetime> <weekdays>")
	}
	t, err := time.Parse(time.RFC3339, cmd.Args[0])
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("invalid datetime %q: %v", cmd.Args[0], err)
	}
	mask, err := strconv.ParseUint(cmd.Args[1], 10, 8)
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("invalid weekday mask %q: %v", cmd.Args[1], err)
	}
	rt, err := model.FromTime(t)
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("%v", err)
	}
	if err := o.rtcDrv.SetAlarm(rt, rtc.WeekdayMask(mask)); err != nil {
		return nil, err
	}
	if err := o.rtcDrv.ToggleAlarmEnabled(true); err != nil {
		return nil, err
	}
	o.cfg.AlarmWeekdays = uint8(mask)
	if err := o.saveLocked(); err != nil {
		return nil, err
	}
	return "ok", nil
}

func (o *Orchestrator) forceShutdown() (any, error) {
	if err := o.bat.Shutdown(); err != nil {
		return nil, err
	}
	if err := o.rtcDrv.ForceShutdown(); err != nil {
		if daemonerrors.CategoryOf(err) != daemonerrors.Unsupported {
			return nil, err
		}
	}
	return "ok", nil
}

func parseFloatArg(cmd wire.Command) (float64, error) {
	if len(cmd.Args) == 0 {
		return 0, daemonerrors.InvalidArgumentf("expected a numeric argument")
	}
	v, err := strconv.ParseFloat(cmd.Args[0], 64)
	if err != nil {
		return 0, daemonerrors.InvalidArgumentf("invalid number %q: %v", cmd.Args[0], err)
	}
	return v, nil
}

func parseNonNegativeInt(cmd wire.Command) (int, error) {
	if len(cmd.Args) == 0 {
		return 0, daemonerrors.InvalidArgumentf("expected an integer argument")
	}
	v, err := strconv.Atoi(cmd.Args[0])
	if err != nil || v < 0 {
		return 0, daemonerrors.InvalidArgumentf("invalid non-negative integer %q", cmd.Args[0])
	}
	return v, nil
}
