package board

import (
	"strconv"
	"testing"

	"github.com/openhauscore/kc868/internal/bus"
	"github.com/openhauscore/kc868/internal/bus/bustest"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	fake := bustest.New()
	outLow := bus.NewPCF8574(fake, AddrOutputsLow, zap.NewNop())
	outHigh := bus.NewPCF8574(fake, AddrOutputsHigh, zap.NewNop())
	inLow := bus.NewPCF8574(fake, AddrInputsLow, zap.NewNop())
	inHigh := bus.NewPCF8574(fake, AddrInputsHigh, zap.NewNop())
	return NewRegistry(outLow, outHigh, inLow, inHigh)
}

func TestResolveInjective(t *testing.T) {
	r := newTestRegistry(t)

	type key struct {
		addr uint16
		bit  uint8
	}
	seen := make(map[key]string)

	ids := r.RelayIDs()
	if len(ids) != 16 {
		t.Fatalf("expected 16 relay ids, got %d", len(ids))
	}

	for _, id := range ids {
		slot, err := r.Resolve(id)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", id, err)
		}
		k := key{slot.Device.Addr(), slot.Bit}
		if prev, dup := seen[k]; dup {
			t.Errorf("relays %q and %q share (0x%02x, bit %d)", prev, id, k.addr, k.bit)
		}
		seen[k] = id
	}
}

func TestResolveNumbering(t *testing.T) {
	r := newTestRegistry(t)

	slot, err := r.Resolve("1")
	if err != nil {
		t.Fatal(err)
	}
	if slot.Device.Addr() != AddrOutputsLow || slot.Bit != 0 {
		t.Errorf("relay 1 = (0x%02x, %d), want (0x24, 0)", slot.Device.Addr(), slot.Bit)
	}

	slot, err = r.Resolve("16")
	if err != nil {
		t.Fatal(err)
	}
	if slot.Device.Addr() != AddrOutputsHigh || slot.Bit != 7 {
		t.Errorf("relay 16 = (0x%02x, %d), want (0x25, 7)", slot.Device.Addr(), slot.Bit)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := newTestRegistry(t)

	for _, id := range []string{"0", "17", "all", "", "x"} {
		if _, err := r.Resolve(id); err == nil {
			t.Errorf("Resolve(%q) should fail", id)
		}
	}
}

func TestResolveInputInverse(t *testing.T) {
	r := newTestRegistry(t)

	// Button i on an input expander drives relay i+1 (low) or i+9
	// (high); the mapping must be the exact inverse of Resolve.
	for i := uint8(0); i < 8; i++ {
		id, ok := r.ResolveInput(AddrInputsLow, i)
		if !ok || id != strconv.Itoa(int(i)+1) {
			t.Errorf("ResolveInput(0x22, %d) = %q, want %d", i, id, i+1)
		}
		id, ok = r.ResolveInput(AddrInputsHigh, i)
		if !ok || id != strconv.Itoa(int(i)+9) {
			t.Errorf("ResolveInput(0x21, %d) = %q, want %d", i, id, i+9)
		}
	}

	for i := uint8(0); i < 8; i++ {
		for _, addr := range []uint16{AddrInputsLow, AddrInputsHigh} {
			id, ok := r.ResolveInput(addr, i)
			if !ok {
				t.Fatalf("ResolveInput(0x%02x, %d) missing", addr, i)
			}
			slot, err := r.Resolve(id)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", id, err)
			}
			if slot.Bit != i {
				t.Errorf("relay %q bit = %d, want %d", id, slot.Bit, i)
			}
		}
	}

	if _, ok := r.ResolveInput(AddrOutputsLow, 0); ok {
		t.Error("output address should not resolve as input")
	}
}
