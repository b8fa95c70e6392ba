package battery

import (
	"github.com/sugarbeard/sugarbeardd/internal/curve"
	"github.com/sugarbeard/sugarbeardd/internal/i2cbus"
	"github.com/sugarbeard/sugarbeardd/internal/model"
)

// New dispatches to the concrete chip driver for mdl. This is the single
// point of polymorphic selection the orchestrator relies on; no caller
// outside this package switches on Model to pick a battery implementation.
func New(mdl model.Model, bus i2cbus.RegisterIO, crv curve.Curve) Driver {
	switch mdl {
	case model.V2_4LED, model.V2_2LED:
		return NewFamilyA(bus, mdl, crv)
	case model.V2Pro:
		return NewFamilyB(bus, mdl, crv)
	case model.V3:
		return NewFamilyC(bus, mdl, crv)
	default:
		return NewFamilyA(bus, mdl, crv)
	}
}

// DefaultCurve returns the factory discharge curve for mdl.
func DefaultCurve(mdl model.Model) curve.Curve {
	if mdl == model.V2_4LED || mdl == model.V2_2LED {
		return curve.DefaultFamilyA
	}
	return curve.DefaultFamilyBC
}
