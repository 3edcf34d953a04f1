// Package bustest provides an in-memory I2C bus for tests: one
// register byte per address, with switchable per-address failures.
package bustest

import (
	"errors"
	"sync"

	"periph.io/x/conn/v3/physic"
)

var errNoAck = errors.New("i2c: no ack")

// Bus implements i2c.Bus against a map of single-register devices.
// The zero value is not usable; call New.
type Bus struct {
	mu sync.Mutex

	regs       map[uint16]byte
	missing    map[uint16]bool
	failReads  map[uint16]bool
	failWrites map[uint16]bool

	reads  map[uint16]int
	writes map[uint16]int
}

func New() *Bus {
	return &Bus{
		regs:       make(map[uint16]byte),
		missing:    make(map[uint16]bool),
		failReads:  make(map[uint16]bool),
		failWrites: make(map[uint16]bool),
		reads:      make(map[uint16]int),
		writes:     make(map[uint16]int),
	}
}

func (b *Bus) String() string { return "bustest" }

func (b *Bus) SetSpeed(f physic.Frequency) error { return nil }

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.missing[addr] {
		return errNoAck
	}

	if len(w) > 0 {
		b.writes[addr]++
		if b.failWrites[addr] {
			return errNoAck
		}
		b.regs[addr] = w[len(w)-1]
	}
	if len(r) > 0 {
		b.reads[addr]++
		if b.failReads[addr] {
			return errNoAck
		}
		value, ok := b.regs[addr]
		if !ok {
			value = 0xFF
		}
		r[0] = value
	}
	return nil
}

// Set stores the register value of a device, as if the hardware had
// changed its inputs.
func (b *Bus) Set(addr uint16, value byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs[addr] = value
}

// Get returns the register value last written to a device.
func (b *Bus) Get(addr uint16) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, ok := b.regs[addr]
	if !ok {
		return 0xFF
	}
	return value
}

// SetMissing makes the device NACK every transaction, as if absent.
func (b *Bus) SetMissing(addr uint16, missing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.missing[addr] = missing
}

// SetFailReads makes reads fail while writes keep working.
func (b *Bus) SetFailReads(addr uint16, fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failReads[addr] = fail
}

// SetFailWrites makes writes fail while reads keep working.
func (b *Bus) SetFailWrites(addr uint16, fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrites[addr] = fail
}

// Reads returns how many read transactions hit the device.
func (b *Bus) Reads(addr uint16) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads[addr]
}

// Writes returns how many write transactions hit the device.
func (b *Bus) Writes(addr uint16) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes[addr]
}
