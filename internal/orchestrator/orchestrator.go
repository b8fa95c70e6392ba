// Package orchestrator runs the single-threaded, cooperative 100ms poll
// tick that drives the battery driver, the RTC backup-cell reconciliation,
// the charge-window controller, and tap-shell dispatch, and answers wire
// protocol commands against the same in-memory state.
package orchestrator

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sugarbeard/sugarbeardd/internal/battery"
	"github.com/sugarbeard/sugarbeardd/internal/chargewindow"
	"github.com/sugarbeard/sugarbeardd/internal/config"
	"github.com/sugarbeard/sugarbeardd/internal/curve"
	"github.com/sugarbeard/sugarbeardd/internal/eventbus"
	"github.com/sugarbeard/sugarbeardd/internal/i2cbus"
	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/internal/rtc"
	"github.com/sugarbeard/sugarbeardd/internal/tapdetector"
	"github.com/sugarbeard/sugarbeardd/internal/tapshell"
	"github.com/sugarbeard/sugarbeardd/pkg/debug"
)

// TickInterval is the fixed poll cadence spec.md requires.
const TickInterval = 100 * time.Millisecond

// Orchestrator owns the live battery/RTC drivers and the mutable policy
// document, and serializes all access to them onto the single poll-tick
// goroutine plus whatever goroutine calls HandleCommand (guarded by mu).
type Orchestrator struct {
	mu sync.Mutex

	mdl     model.Model
	bat     battery.Driver
	rtcDrv  rtc.Driver
	cfg     config.Config
	cfgPath string

	window *chargewindow.Controller
	bus    *eventbus.Bus

	log   *logrus.Logger
	trace *debug.Logger

	tempReader TemperatureReader
	alarmSched AlarmScheduler
	onTick     func(time.Duration)

	initialized  bool
	lastTick     time.Time
	rtcChargeOn  bool
	startTime    time.Time

	stop chan struct{}
	done chan struct{}
}

// New constructs an Orchestrator bound to the given bus, model, and
// initial policy document. The concrete battery/RTC drivers are
// constructed here without touching the bus; their Init runs on the first
// tick and is retried on later ticks until it succeeds, so a transient bus
// failure at startup doesn't prevent the daemon from serving commands.
func New(mdl model.Model, i2c i2cbus.RegisterIO, cfg config.Config, cfgPath string, bus *eventbus.Bus, log *logrus.Logger, trace *debug.Logger) *Orchestrator {
	crv := curve.Sorted(cfg.BatteryCurve)
	if len(crv) == 0 {
		crv = battery.DefaultCurve(mdl)
	}
	return &Orchestrator{
		mdl:     mdl,
		bat:     battery.New(mdl, i2c, crv),
		rtcDrv:  rtc.New(mdl, i2c),
		cfg:     cfg,
		cfgPath: cfgPath,
		window:  &chargewindow.Controller{},
		bus:     bus,
		log:     log,
		trace:   trace,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run drives the poll loop until Stop is called. It must be run in its own
// goroutine; it blocks until shutdown completes.
func (o *Orchestrator) Run() {
	defer close(o.done)
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stop:
			return
		case now := <-ticker.C:
			o.tick(now)
		}
	}
}

// Stop requests cooperative shutdown and waits for the current tick to
// finish and Run to return. It does not wait for HandleCommand calls made
// from other goroutines.
func (o *Orchestrator) Stop() {
	close(o.stop)
	<-o.done
}

// OnTick registers a callback invoked with each tick's wall-clock
// duration, used by internal/httpapi to feed the poll-latency histogram
// without the orchestrator importing Prometheus itself.
func (o *Orchestrator) OnTick(fn func(time.Duration)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onTick = fn
}

func (o *Orchestrator) tick(now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	start := time.Now()
	defer func() {
		if o.onTick != nil {
			o.onTick(time.Since(start))
		}
	}()

	if err := o.lazyInit(); err != nil {
		o.trace.TraceError("orchestrator", "lazy init failed", err)
		return
	}

	events, err := o.bat.Poll(now)
	if err != nil {
		o.trace.TraceError("orchestrator", "battery poll failed", err)
	}
	for _, ev := range events {
		o.handleBatteryEvent(ev)
	}

	secondBoundary := o.lastTick.IsZero() || now.Truncate(time.Second).After(o.lastTick.Truncate(time.Second))
	if secondBoundary {
		o.onSecondTick(now)
	}
	o.lastTick = now
	o.bus.Publish(o.snapshotLocked())
}

func (o *Orchestrator) lazyInit() error {
	if o.initialized {
		return nil
	}
	if err := o.bat.Init(o.cfg.AutoPowerOn); err != nil {
		return err
	}
	if err := o.rtcDrv.Init(); err != nil {
		return err
	}
	o.initialized = true
	o.startTime = time.Now()
	return nil
}

func (o *Orchestrator) handleBatteryEvent(ev battery.Event) {
	tapEv, ok := ev.(battery.TapEvent)
	if !ok {
		return
	}
	o.bus.Publish(tapEv)

	var policy config.TapPolicy
	switch tapEv.Classification {
	case tapdetector.Single:
		policy = o.cfg.TapSingle
	case tapdetector.Double:
		policy = o.cfg.TapDouble
	case tapdetector.Long:
		policy = o.cfg.TapLong
	default:
		return
	}
	if policy.Enabled {
		tapshell.Run(o.log.WithField("component", "tapshell"), policy.Shell)
	}
}

// onSecondTick runs the once-per-second charge-window and RTC backup-cell
// reconciliation spec.md §4.7 describes.
func (o *Orchestrator) onSecondTick(now time.Time) {
	if o.mdl.LEDAmount() == 2 {
		level, err := o.bat.Level()
		if err == nil {
			allow, err := o.bat.IsAllowCharging()
			if err == nil {
				hold := time.Duration(o.cfg.FullChargeHoldOffSecs) * time.Second
				r := chargewindow.Range{Begin: o.cfg.AutoChargeRange.Begin, End: o.cfg.AutoChargeRange.End}
				switch o.window.Step(now, level, allow, r, hold) {
				case chargewindow.Enable:
					if err := o.bat.ToggleAllowCharging(true); err != nil {
						o.trace.TraceError("chargewindow", "enable charging failed", err)
					}
				case chargewindow.Disable:
					if err := o.bat.ToggleAllowCharging(false); err != nil {
						o.trace.TraceError("chargewindow", "disable charging failed", err)
					}
				}
			}
		}
	}

	batLow, errLow := o.rtcDrv.ReadBatteryLowFlag()
	batHigh, errHigh := o.rtcDrv.ReadBatteryHighFlag()
	if errLow == nil && errHigh == nil {
		switch {
		case batLow && !o.rtcChargeOn:
			if err := o.rtcDrv.ToggleCharging(true); err == nil {
				o.rtcChargeOn = true
			}
		case batHigh && o.rtcChargeOn:
			if err := o.rtcDrv.ToggleCharging(false); err == nil {
				o.rtcChargeOn = false
			}
		}
	}
}
