package rtc

import (
	"github.com/sugarbeard/sugarbeardd/internal/i2cbus"
	"github.com/sugarbeard/sugarbeardd/internal/model"
)

// New dispatches to the concrete RTC implementation for mdl: the newer
// shared chip for V3, the legacy write-protected chip for everything else.
func New(mdl model.Model, bus i2cbus.RegisterIO) Driver {
	if mdl == model.V3 {
		return NewShared(bus)
	}
	return NewLegacy(bus)
}
