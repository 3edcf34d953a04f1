package board

import (
	"fmt"

	"github.com/openhauscore/kc868/internal/bus"
	"github.com/openhauscore/kc868/internal/types"
	"go.uber.org/zap"
)

// State is the wire shape of GET /api/state. Key names and casing are
// fixed for compatibility with existing clients.
type State struct {
	Relays map[string]string `json:"relays"`
	Inputs map[string]bool   `json:"inputs"`
}

// Board aggregates the four expander mirrors, the discrete sensors and
// the identifier registry. It is the only component that issues bus
// transactions; the REST layer and the scanner both go through it.
type Board struct {
	registry   *Registry
	inputsLow  *bus.PCF8574
	inputsHigh *bus.PCF8574
	outputs    []*bus.PCF8574
	sensors    []DiscreteSensor
	logger     *zap.Logger
}

func New(outLow, outHigh, inLow, inHigh *bus.PCF8574, sensors []DiscreteSensor, logger *zap.Logger) *Board {
	return &Board{
		registry:   NewRegistry(outLow, outHigh, inLow, inHigh),
		inputsLow:  inLow,
		inputsHigh: inHigh,
		outputs:    []*bus.PCF8574{outLow, outHigh},
		sensors:    sensors,
		logger:     logger,
	}
}

// Registry returns the immutable identifier registry.
func (b *Board) Registry() *Registry {
	return b.registry
}

// InputDevices returns the two input expanders in X01-first order.
func (b *Board) InputDevices() []*bus.PCF8574 {
	return []*bus.PCF8574{b.inputsLow, b.inputsHigh}
}

// InitOutputs drives every valid output expander to all-off. Relays
// are active-low, so the released register value is 0xFF.
func (b *Board) InitOutputs() {
	for _, dev := range b.outputs {
		if !dev.Valid() {
			continue
		}
		if err := dev.WriteAll(0xFF); err != nil {
			b.logger.Warn("Failed to initialise outputs",
				zap.String("address", fmt.Sprintf("0x%02x", dev.Addr())),
				zap.Error(err))
		}
	}
}

// RenderState builds the full board snapshot. Relay states come from
// the output caches only: outputs change only through this process, so
// the mirror is authoritative and rendering never writes to the bus.
// Inputs can change externally at any time, so every expander input is
// a fresh register read and every HT sensor a fresh pin read.
func (b *Board) RenderState() State {
	state := State{
		Relays: make(map[string]string, 16),
		Inputs: make(map[string]bool, 19),
	}

	for _, id := range b.registry.RelayIDs() {
		slot, err := b.registry.Resolve(id)
		if err != nil {
			continue
		}
		if slot.Device.CachedBit(slot.Bit) {
			state.Relays[id] = "on"
		} else {
			state.Relays[id] = "off"
		}
	}

	for _, s := range b.sensors {
		state.Inputs[s.Name] = s.Active()
	}
	if b.inputsLow.Valid() {
		for i := uint8(0); i < 8; i++ {
			state.Inputs[fmt.Sprintf("X%02d", i+1)] = b.inputsLow.ReadBit(i)
		}
	}
	if b.inputsHigh.Valid() {
		for i := uint8(0); i < 8; i++ {
			state.Inputs[fmt.Sprintf("X%02d", i+9)] = b.inputsHigh.ReadBit(i)
		}
	}

	return state
}

// ApplyControl sets one relay, or all of them for id "all", to the
// desired state. The state token is strict: anything other than "on"
// or "off" is rejected. A failed bus write is logged and the cache
// stays stale; it is not a request failure.
func (b *Board) ApplyControl(relayID, state string) error {
	if state != "on" && state != "off" {
		return fmt.Errorf("%w: %q", types.ErrMalformedState, state)
	}
	on := state == "on"

	if relayID == "all" {
		for _, id := range b.registry.RelayIDs() {
			slot, err := b.registry.Resolve(id)
			if err != nil {
				continue
			}
			if err := slot.Device.WriteBit(slot.Bit, on); err != nil {
				b.logWriteError(id, err)
			}
		}
		b.logger.Info("All relays set", zap.String("state", state))
		return nil
	}

	slot, err := b.registry.Resolve(relayID)
	if err != nil {
		return err
	}
	if err := slot.Device.WriteBit(slot.Bit, on); err != nil {
		b.logWriteError(relayID, err)
		return nil
	}

	b.logger.Info("Relay set",
		zap.String("relay", relayID),
		zap.String("state", state))
	return nil
}

// ToggleRelay flips one relay atomically on its expander and returns
// the new logical state. Used by the key scanner on input edges.
func (b *Board) ToggleRelay(relayID string) (bool, error) {
	slot, err := b.registry.Resolve(relayID)
	if err != nil {
		return false, err
	}
	return slot.Device.Toggle(slot.Bit)
}

func (b *Board) logWriteError(relayID string, err error) {
	b.logger.Warn("Relay write failed",
		zap.String("relay", relayID),
		zap.Error(err))
}
