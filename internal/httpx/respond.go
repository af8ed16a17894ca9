package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
	"github.com/ariefcatur/go-seat-reservations/internal/logx"
	"github.com/go-chi/chi/v5/middleware"
)

type errorBody struct {
	Message     string   `json:"message"`
	Code        string   `json:"code"`
	Conflicting []string `json:"conflicting,omitempty"`
	RequestID   string   `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindSeatConflict, apperr.KindInvalidSignature,
		apperr.KindMalformedNotification, apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindDuplicateOrder:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps err onto the HTTP error contract. Internal failures get a
// generic message; the cause only goes to the log.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	code := statusFor(kind)
	body := errorBody{Code: string(kind), RequestID: middleware.GetReqID(r.Context())}

	var ae *apperr.Error
	if code != http.StatusInternalServerError && errors.As(err, &ae) {
		body.Message = ae.Message
		body.Conflicting = ae.Conflicting
	} else {
		body.Code = string(apperr.KindInternal)
		body.Message = "Internal server error"
		logx.FromRequest(r.Context(), log).Error("request_failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, code, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}

const maxBodyBytes = 64 << 10
