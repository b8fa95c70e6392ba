// Package i2cbus is the only leaf that touches hardware: it opens an I2C
// bus by index, binds a 7-bit slave address, and performs single-byte and
// block register transfers. Every failure is wrapped as a daemonerrors.Bus
// error so callers never have to interpret periph.io's own error types.
package i2cbus

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

var hostInitOnce sync.Once
var hostInitErr error

func ensureHost() error {
	hostInitOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	return hostInitErr
}

// RegisterIO is the register-level transfer surface every battery and RTC
// driver depends on, rather than the concrete Bus type directly, so chip
// logic can be exercised against an in-memory fake in tests.
type RegisterIO interface {
	ReadByte(reg uint8) (uint8, error)
	WriteByte(reg uint8, val uint8) error
	BlockRead(reg uint8, n int) ([]byte, error)
	BlockWrite(reg uint8, data []byte) error
	SetBit(reg uint8, bit uint, set bool) error
	Bit(reg uint8, bit uint) (bool, error)
}

// Bus is a bound I2C bus + slave address pair, reused by a single battery
// or RTC driver instance.
type Bus struct {
	dev  i2c.Dev
	bus  i2c.BusCloser
	addr uint16
}

// Open opens /dev/i2c-<index> and binds addr as the 7-bit slave address.
func Open(index int, addr uint16) (*Bus, error) {
	if err := ensureHost(); err != nil {
		return nil, daemonerrors.Busf("i2c host init: %v", err)
	}
	bus, err := i2creg.Open(fmt.Sprintf("%d", index))
	if err != nil {
		return nil, daemonerrors.Busf("open i2c-%d: %v", index, err)
	}
	return &Bus{
		dev:  i2c.Dev{Addr: addr, Bus: bus},
		bus:  bus,
		addr: addr,
	}, nil
}

// Close releases the underlying bus handle.
func (b *Bus) Close() error {
	if b.bus == nil {
		return nil
	}
	return b.bus.Close()
}

// Addr returns the bound slave address.
func (b *Bus) Addr() uint16 { return b.addr }

// ReadByte reads a single register.
func (b *Bus) ReadByte(reg uint8) (uint8, error) {
	buf := make([]byte, 1)
	if err := b.dev.Tx([]byte{reg}, buf); err != nil {
		return 0, daemonerrors.Busf("read reg 0x%02x: %v", reg, err)
	}
	return buf[0], nil
}

// WriteByte writes a single register.
func (b *Bus) WriteByte(reg uint8, val uint8) error {
	if _, err := b.dev.Write([]byte{reg, val}); err != nil {
		return daemonerrors.Busf("write reg 0x%02x: %v", reg, err)
	}
	return nil
}

// BlockRead reads n contiguous bytes starting at reg.
func (b *Bus) BlockRead(reg uint8, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := b.dev.Tx([]byte{reg}, buf); err != nil {
		return nil, daemonerrors.Busf("block read reg 0x%02x len %d: %v", reg, n, err)
	}
	return buf, nil
}

// BlockWrite writes data starting at reg.
func (b *Bus) BlockWrite(reg uint8, data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, reg)
	buf = append(buf, data...)
	if _, err := b.dev.Write(buf); err != nil {
		return daemonerrors.Busf("block write reg 0x%02x len %d: %v", reg, len(data), err)
	}
	return nil
}

// SetBit sets or clears a single bit of a register, read-modify-write.
func (b *Bus) SetBit(reg uint8, bit uint, set bool) error {
	v, err := b.ReadByte(reg)
	if err != nil {
		return err
	}
	if set {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	return b.WriteByte(reg, v)
}

// Bit reads a single bit of a register.
func (b *Bus) Bit(reg uint8, bit uint) (bool, error) {
	v, err := b.ReadByte(reg)
	if err != nil {
		return false, err
	}
	return v&(1<<bit) != 0, nil
}
