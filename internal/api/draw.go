package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AaronLay10/WishEngine/internal/events"
	"github.com/AaronLay10/WishEngine/internal/fortune"
	"github.com/AaronLay10/WishEngine/internal/i18n"
	"github.com/AaronLay10/WishEngine/internal/remote"
)

const maxWishBytes = 64 << 10

// statusForKind maps an error kind to the HTTP status of the error response.
func statusForKind(kind string) int {
	switch kind {
	case fortune.KindInvalidMachine, fortune.KindEmptyMessage:
		return http.StatusBadRequest
	case remote.KindRemote, remote.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// upstreamReply relays a gateway's upstream error. Client errors keep their
// status; the upstream message replaces the local one unless it is the
// generic fallback.
func upstreamReply(err error, status int, msg string) (int, string) {
	var re *remote.RemoteError
	if !errors.As(err, &re) {
		return status, msg
	}
	if re.StatusCode >= 400 && re.StatusCode < 500 {
		status = re.StatusCode
	}
	if re.Message != "" && re.Message != remote.FallbackMessage {
		msg = re.Message
	}
	return status, msg
}

// randomHandler is POST /api/random. The body is {"machine","message"}; the
// response is the Outcome or {"message"} with a localized error text.
func randomHandler(w http.ResponseWriter, r *http.Request) {
	tag := i18n.ResolveTag(r)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeMessage(w, http.StatusMethodNotAllowed, i18n.ErrorText(tag, "method_not_allowed"))
		return
	}

	var req fortune.WishRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWishBytes)).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, i18n.ErrorText(tag, "bad_request"))
		return
	}

	drawer, mode := currentDrawer()
	if drawer == nil {
		writeMessage(w, http.StatusServiceUnavailable, i18n.ErrorText(tag, fortune.KindInternal))
		return
	}

	requestID := uuid.NewString()
	machine := strings.TrimSpace(req.Machine)
	w.Header().Set("X-Request-ID", requestID)

	events.Emit("info", events.DrawRequested, "", map[string]interface{}{
		"request_id": requestID,
		"machine":    machine,
		"mode":       mode,
	})

	start := time.Now()
	out, err := drawer.Draw(r.Context(), machine, req.Message)
	elapsed := time.Since(start)

	if err != nil {
		kind := fortune.Kind(err)
		status, msg := upstreamReply(err, statusForKind(kind), i18n.ErrorText(tag, kind))
		RecordDrawError(kind, elapsed)

		fields := map[string]interface{}{
			"request_id": requestID,
			"machine":    machine,
			"mode":       mode,
			"kind":       kind,
			"elapsed_ms": elapsed.Milliseconds(),
		}
		if status >= http.StatusInternalServerError {
			fields["error"] = err.Error()
			events.Emit("error", events.DrawFailed, "", fields)
		} else {
			events.Emit("warn", events.DrawRejected, "", fields)
		}

		if kind == fortune.KindConfiguration {
			AlertCatalogError(err.Error(), map[string]interface{}{
				"request_id": requestID,
				"machine":    machine,
			})
		}

		writeMessage(w, status, msg)
		return
	}

	RecordDraw(machine, out, elapsed)
	events.Emit("info", events.DrawCompleted, "", map[string]interface{}{
		"request_id": requestID,
		"machine":    machine,
		"mode":       mode,
		"elapsed_ms": elapsed.Milliseconds(),
	})

	writeJSON(w, http.StatusOK, out)
}
