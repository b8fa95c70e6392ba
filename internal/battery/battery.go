// Package battery is the polymorphic PMIC driver layer: three concrete
// chip implementations behind one shared Driver interface, each owning its
// own voltage/current/level ring buffers and tap-history state.
package battery

import (
	"time"

	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/internal/ringbuf"
	"github.com/sugarbeard/sugarbeardd/internal/tapdetector"
)

// RingCapacity is the fixed sample-window size for voltage/current/level
// averaging, shared by every chip family regardless of their original
// reference-implementation capacities.
const RingCapacity = 30

// TapHistoryCapacity bounds the tap bit-history string length.
const TapHistoryCapacity = 30

// Event is emitted from Poll. Currently only tap gestures are reported;
// kept as an interface so future event kinds don't change the signature.
type Event interface{ isBatteryEvent() }

// TapEvent reports a classified button gesture.
type TapEvent struct {
	Classification tapdetector.Classification
}

func (TapEvent) isBatteryEvent() {}

// String renders the gesture name, used as the line-protocol/event-channel
// text for tap notifications.
func (e TapEvent) String() string { return e.Classification.String() }

// Driver is the operation set every PMIC implementation honors, per the
// shared battery-driver contract.
type Driver interface {
	Model() model.Model

	Init(autoPowerOn bool) error

	Voltage() (float64, error)
	VoltageAvg() (float64, error)
	Current() (float64, error)
	CurrentAvg() (float64, error)
	Level() (float64, error)

	IsPowerPlugged() (bool, error)
	IsAllowCharging() (bool, error)
	ToggleAllowCharging(bool) error
	IsCharging() (bool, error)
	IsInputProtected() (bool, error)
	ToggleInputProtected(bool) error
	OutputEnabled() (bool, error)
	ToggleOutputEnabled(bool) error

	Shutdown() error
	ToggleLightLoadShutdown(bool) error
	ToggleSoftPoweroff(bool) error

	Poll(now time.Time) ([]Event, error)
}

// base holds the state every chip family shares: ring buffers, tap
// history, and the active curve. Concrete drivers embed it rather than
// duplicating ring/tap bookkeeping.
type base struct {
	voltages *ringbuf.Buffer
	currents *ringbuf.Buffer
	levels   *ringbuf.Buffer
	tapHist  string

	initialized bool
	lastPoll    time.Time
}

func newBase() base {
	return base{
		voltages: ringbuf.New(RingCapacity),
		currents: ringbuf.New(RingCapacity),
		levels:   ringbuf.New(RingCapacity),
	}
}

// pushTapBit appends a sample bit to the tap history, evicting the oldest
// bit once the string reaches TapHistoryCapacity, and runs the detector.
func (b *base) pushTapBit(bit byte) tapdetector.Classification {
	b.tapHist += string(bit)
	if len(b.tapHist) > TapHistoryCapacity {
		b.tapHist = b.tapHist[len(b.tapHist)-TapHistoryCapacity:]
	}
	cls, rest := tapdetector.Classify(b.tapHist)
	b.tapHist = rest
	return cls
}
