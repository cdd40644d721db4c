package cache

import (
	"testing"
	"time"

	"github.com/korvatunturi/filecached/internal/domain"
)

func TestSignalBusEmitAndReceive(t *testing.T) {
	bus := NewSignalBus(4)
	id := domain.ID("a0000000000000000000000000000010")

	bus.Emit(Signal{ID: id, Action: ActionSave})

	select {
	case sig := <-bus.Events():
		if sig.ID != id || sig.Action != ActionSave {
			t.Fatalf("unexpected signal: %+v", sig)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emitted signal")
	}
}

func TestSignalBusDefaultCapacity(t *testing.T) {
	bus := NewSignalBus(0)
	if cap(bus.ch) != 1000 {
		t.Fatalf("expected default capacity 1000, got %d", cap(bus.ch))
	}
}

func TestSignalBusFIFOOrder(t *testing.T) {
	bus := NewSignalBus(3)
	ids := []domain.ID{"a", "b", "c"}
	for _, id := range ids {
		bus.Emit(Signal{ID: id, Action: ActionDelete})
	}
	for _, want := range ids {
		sig := <-bus.Events()
		if sig.ID != want {
			t.Fatalf("expected %s, got %s", want, sig.ID)
		}
	}
}
