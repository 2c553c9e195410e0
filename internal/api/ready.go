package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// Readiness check statuses.
const (
	StatusOK          = "ok"
	StatusNotReady    = "not_ready"
	StatusUnavailable = "unavailable"
)

type component struct {
	optional bool
	check    func() bool
}

type readinessState struct {
	mu         sync.RWMutex
	components map[string]component
}

var readiness = &readinessState{components: make(map[string]component)}

// RegisterCheck adds a readiness check. An optional component that fails is
// reported as unavailable without failing /ready.
func RegisterCheck(name string, optional bool, check func() bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.components[name] = component{optional: optional, check: check}
}

// UnregisterCheck removes a readiness check.
func UnregisterCheck(name string) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	delete(readiness.components, name)
}

// resetReadiness drops every check. Used for testing.
func resetReadiness() {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.components = make(map[string]component)
}

type CheckResult struct {
	Status   string `json:"status"`
	Optional bool   `json:"optional,omitempty"`
}

type ReadinessResponse struct {
	Ready       bool                   `json:"ready"`
	Checks      map[string]CheckResult `json:"checks"`
	NotReadyMsg string                 `json:"message,omitempty"`
}

func snapshotComponents() map[string]component {
	readiness.mu.RLock()
	defer readiness.mu.RUnlock()
	comps := make(map[string]component, len(readiness.components))
	for k, v := range readiness.components {
		comps[k] = v
	}
	return comps
}

// componentStates runs every registered check and returns name -> up.
// Checks run outside the lock.
func componentStates() map[string]bool {
	comps := snapshotComponents()
	out := make(map[string]bool, len(comps))
	for name, c := range comps {
		out[name] = c.check()
	}
	return out
}

// evaluateReadiness runs the checks and builds the /ready body.
func evaluateReadiness() ReadinessResponse {
	comps := snapshotComponents()

	resp := ReadinessResponse{Ready: true, Checks: make(map[string]CheckResult, len(comps))}
	var failing []string
	for name, c := range comps {
		result := CheckResult{Status: StatusOK, Optional: c.optional}
		if !c.check() {
			if c.optional {
				result.Status = StatusUnavailable
			} else {
				result.Status = StatusNotReady
				resp.Ready = false
				failing = append(failing, name)
			}
		}
		resp.Checks[name] = result
	}

	if len(comps) == 0 {
		resp.Ready = false
		resp.NotReadyMsg = "no readiness checks registered"
	} else if !resp.Ready {
		sort.Strings(failing)
		resp.NotReadyMsg = "not ready: " + strings.Join(failing, ", ")
	}
	return resp
}

func readyHandler(w http.ResponseWriter, r *http.Request) {
	resp := evaluateReadiness()
	w.Header().Set("Content-Type", "application/json")
	if !resp.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
