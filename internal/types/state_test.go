package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSystemStateNames(t *testing.T) {
	cases := map[SystemState]string{
		StateInitializing: "INITIALIZING",
		StateRunning:      "RUNNING",
		StateStopping:     "STOPPING",
		StateStopped:      "STOPPED",
		StateError:        "ERROR",
		SystemState(99):   "UNKNOWN",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestSystemStatusJSON(t *testing.T) {
	status := SystemStatus{State: StateRunning, Timestamp: 1700000000}

	data, err := json.Marshal(status)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"state":"RUNNING"`) {
		t.Errorf("state should render as its name: %s", data)
	}
	if strings.Contains(string(data), `"error"`) {
		t.Errorf("empty error should be omitted: %s", data)
	}

	status.Error = "bus gone"
	data, _ = json.Marshal(status)
	if !strings.Contains(string(data), `"error":"bus gone"`) {
		t.Errorf("error should be included: %s", data)
	}
}
