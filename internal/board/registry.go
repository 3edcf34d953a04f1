package board

import (
	"fmt"
	"strconv"

	"github.com/openhauscore/kc868/internal/bus"
	"github.com/openhauscore/kc868/internal/types"
)

// Expander addresses of the KC868-A16. These are soldered into the
// board and part of its external contract, not configuration.
const (
	AddrInputsLow   uint16 = 0x22 // inputs X01..X08
	AddrInputsHigh  uint16 = 0x21 // inputs X09..X16
	AddrOutputsLow  uint16 = 0x24 // relays 1..8
	AddrOutputsHigh uint16 = 0x25 // relays 9..16
)

// Slot locates one relay: the output expander that drives it and the
// bit within that expander's register.
type Slot struct {
	Device *bus.PCF8574
	Bit    uint8
}

// Registry is the immutable identifier map of the board: relay ids
// "1".."16" to output slots, and input (address, bit) pairs back to
// the relay each button drives. Built once at startup and shared
// without further synchronisation.
type Registry struct {
	relays map[string]Slot
	inputs map[uint16]map[uint8]string
	order  []string
}

// NewRegistry wires the fixed numbering convention: bits 0-7 of the
// low output expander are relays "1".."8", bits 0-7 of the high one
// are "9".."16", and button i on an input expander always drives the
// relay with the same number.
func NewRegistry(outLow, outHigh, inLow, inHigh *bus.PCF8574) *Registry {
	r := &Registry{
		relays: make(map[string]Slot, 16),
		inputs: make(map[uint16]map[uint8]string, 2),
		order:  make([]string, 0, 16),
	}

	for i := uint8(0); i < 8; i++ {
		r.add(strconv.Itoa(int(i)+1), Slot{Device: outLow, Bit: i})
	}
	for i := uint8(0); i < 8; i++ {
		r.add(strconv.Itoa(int(i)+9), Slot{Device: outHigh, Bit: i})
	}

	r.inputs[inLow.Addr()] = make(map[uint8]string, 8)
	r.inputs[inHigh.Addr()] = make(map[uint8]string, 8)
	for i := uint8(0); i < 8; i++ {
		r.inputs[inLow.Addr()][i] = strconv.Itoa(int(i) + 1)
		r.inputs[inHigh.Addr()][i] = strconv.Itoa(int(i) + 9)
	}

	return r
}

func (r *Registry) add(id string, slot Slot) {
	if _, exists := r.relays[id]; exists {
		panic(fmt.Sprintf("duplicate relay id %q", id))
	}
	r.relays[id] = slot
	r.order = append(r.order, id)
}

// Resolve maps a relay identifier to its output slot.
func (r *Registry) Resolve(id string) (Slot, error) {
	slot, exists := r.relays[id]
	if !exists {
		return Slot{}, fmt.Errorf("%w: %q", types.ErrUnknownRelay, id)
	}
	return slot, nil
}

// ResolveInput maps an input expander address and bit to the relay id
// that button drives.
func (r *Registry) ResolveInput(addr uint16, bit uint8) (string, bool) {
	bits, exists := r.inputs[addr]
	if !exists {
		return "", false
	}
	id, exists := bits[bit]
	return id, exists
}

// RelayIDs returns all relay identifiers in board order "1".."16".
func (r *Registry) RelayIDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}
