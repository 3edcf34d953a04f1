package bus

import (
	"fmt"
	"sync"

	"github.com/openhauscore/kc868/internal/types"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
)

// PCF8574 mirrors one 8-bit I/O expander on the I2C bus. The struct
// caches the register value of the last successful transaction; a
// failed transaction leaves the cache on its previous value.
//
// The expander is quasi-bidirectional and active-low on both
// directions: a pressed button pulls its input bit to 0, and a relay
// is energised by driving its output bit to 0. All polarity handling
// goes through polarity.go, never inline.
type PCF8574 struct {
	addr   uint16
	bus    i2c.Bus
	logger *zap.Logger

	mu    sync.Mutex
	value byte
	valid bool
}

// NewPCF8574 probes the expander with a one-byte read. A device that
// does not answer is returned marked invalid; every later operation on
// it is a safe no-op so the other expanders keep working.
func NewPCF8574(b i2c.Bus, addr uint16, logger *zap.Logger) *PCF8574 {
	d := &PCF8574{
		addr:   addr,
		bus:    b,
		logger: logger,
		value:  0xFF,
		valid:  true,
	}

	var probe [1]byte
	if err := b.Tx(addr, nil, probe[:]); err != nil {
		logger.Warn("Expander not responding, disabling",
			zap.String("address", fmt.Sprintf("0x%02x", addr)),
			zap.Error(err))
		d.valid = false
		return d
	}
	d.value = probe[0]

	return d
}

// Addr returns the fixed bus address of the expander.
func (d *PCF8574) Addr() uint16 {
	return d.addr
}

// Valid reports whether the expander answered its probe at startup.
func (d *PCF8574) Valid() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.valid
}

// ReadAll issues a one-byte register read. On success the cache is
// overwritten with the fresh value; on failure the cache is untouched
// and a wrapped ErrBus is returned.
func (d *PCF8574) ReadAll() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readAllLocked()
}

func (d *PCF8574) readAllLocked() (byte, error) {
	if !d.valid {
		return 0, types.ErrDeviceUnavailable
	}

	var buf [1]byte
	if err := d.bus.Tx(d.addr, nil, buf[:]); err != nil {
		return 0, fmt.Errorf("read 0x%02x: %w: %v", d.addr, types.ErrBus, err)
	}

	d.value = buf[0]
	return d.value, nil
}

// ReadBit returns the logical state of input n from a fresh register
// read. A failed read reports false rather than an error: a silent
// input is indistinguishable from an idle one at this level.
func (d *PCF8574) ReadBit(n uint8) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	value, err := d.readAllLocked()
	if err != nil {
		return false
	}
	return LevelAsserted(value, n)
}

// CachedBit returns the logical state of bit n from the cache without
// touching the bus. Valid for outputs, which only this process drives.
func (d *PCF8574) CachedBit(n uint8) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return LevelAsserted(d.value, n)
}

// Cached returns the mirrored register byte without a bus transaction.
func (d *PCF8574) Cached() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// WriteAll writes the literal byte to the expander. The cache is set
// to that byte only when the transaction succeeds.
func (d *PCF8574) WriteAll(value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeAllLocked(value)
}

func (d *PCF8574) writeAllLocked(value byte) error {
	if !d.valid {
		return types.ErrDeviceUnavailable
	}

	if err := d.bus.Tx(d.addr, []byte{value}, nil); err != nil {
		return fmt.Errorf("write 0x%02x: %w: %v", d.addr, types.ErrBus, err)
	}

	d.value = value
	return nil
}

// WriteBit drives output n to the given logical state, starting from
// the cached byte. The read-modify-write sequence holds the device
// lock so two concurrent writers cannot lose each other's bits.
func (d *PCF8574) WriteBit(n uint8, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeAllLocked(applyState(d.value, n, on))
}

// Toggle inverts output n and returns its new logical state. Reading
// the cache and writing back happen under one lock hold, so a toggle
// can never race another writer between its read and its write.
func (d *PCF8574) Toggle(n uint8) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := !LevelAsserted(d.value, n)
	if err := d.writeAllLocked(applyState(d.value, n, next)); err != nil {
		return false, err
	}
	return next, nil
}
