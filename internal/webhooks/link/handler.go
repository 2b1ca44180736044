package link

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/taaskly/taaskly/internal/app/linkshare"
)

const maxPayloadBytes = 1 << 20

// Handler processes link webhook deliveries from the collaboration
// platform.
type Handler struct {
	service *linkshare.Service
	log     *slog.Logger
}

// NewHandler constructs a link webhook handler.
func NewHandler(service *linkshare.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{service: service, log: log}
}

// Handle decodes and dispatches a webhook request. Every failure is
// mapped to an explicit status code and body.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	body, readErr := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if readErr != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return readErr
	}

	var env linkshare.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return nil
	}

	resp, dispatchErr := h.service.Dispatch(r.Context(), env)
	if handled := writeDispatchHTTPError(w, dispatchErr); handled {
		h.log.Warn("link webhook rejected", "error", dispatchErr)
		return nil
	}
	if dispatchErr != nil {
		return dispatchErr
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(resp)
}

func writeDispatchHTTPError(w http.ResponseWriter, err error) bool {
	switch linkshare.ClassifyError(err) {
	case linkshare.ErrorUnknown:
		return false
	case linkshare.ErrorInvalidTopic:
		http.Error(w, linkshare.ErrInvalidTopic.Error(), http.StatusBadRequest)
		return true
	case linkshare.ErrorMalformed:
		http.Error(w, linkshare.ErrMalformed.Error(), http.StatusBadRequest)
		return true
	case linkshare.ErrorUnknownLink:
		http.Error(w, linkshare.ErrUnknownLink.Error(), http.StatusBadRequest)
		return true
	case linkshare.ErrorUnknownCommunity:
		http.Error(w, linkshare.ErrUnknownCommunity.Error(), http.StatusNotFound)
		return true
	case linkshare.ErrorInvalidURL:
		http.Error(w, linkshare.ErrInvalidURL.Error(), http.StatusBadRequest)
		return true
	case linkshare.ErrorNoHandlerForChange:
		http.Error(w, linkshare.ErrNoHandlerForChange.Error(), http.StatusUnprocessableEntity)
		return true
	}

	return false
}
