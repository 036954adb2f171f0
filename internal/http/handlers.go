package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/wanghonghua666/AI-CALENDAR/internal/app"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/proposal"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/transcript"
)

const maxBodyBytes = 64 * 1024

type handlers struct {
	app *app.Application
}

// processRequest is the body of POST /v1/speech/process.
type processRequest struct {
	Text string `json:"text"`
	// Confidence defaults to 1 when the recognizer reports none.
	Confidence    *float64 `json:"confidence"`
	ReferenceDate string   `json:"referenceDate"`
	InteractionID string   `json:"interactionId"`
	TenantID      string   `json:"tenantId"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func (h *handlers) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	confidence := 1.0
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	ref, err := transcript.ParseReference(req.ReferenceDate, h.app.Processor.Location())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	out, err := h.app.Transcripts.Process(r.Context(), transcript.Request{
		InteractionID: req.InteractionID,
		TenantID:      req.TenantID,
		Text:          req.Text,
		Confidence:    confidence,
		Reference:     ref,
		Source:        transcript.SourceHTTP,
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) recognize(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	limit := h.app.Transcripts.Limits().MaxAudioBytes
	if limit > 0 {
		// one byte over the limit still reaches Recognize and gets its error
		body = http.MaxBytesReader(w, r.Body, limit+1)
	}
	audio, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Errorf("%w: more than %d bytes", transcript.ErrAudioTooLarge, limit))
			return
		}
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("read audio: %w", err))
		return
	}
	if len(audio) == 0 {
		writeError(w, r, http.StatusBadRequest, errors.New("empty audio body"))
		return
	}

	out, err := h.app.Transcripts.Recognize(r.Context(),
		r.Header.Get("X-Interaction-Id"),
		r.Header.Get("X-Tenant-Id"),
		audio,
	)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, transcript.ErrAudioTooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, err)
	case errors.Is(err, transcript.ErrNoRecognizer):
		writeError(w, r, http.StatusServiceUnavailable, err)
	case errors.Is(err, transcript.ErrRecognizeFailed):
		writeError(w, r, http.StatusBadGateway, err)
	default:
		writeError(w, r, http.StatusBadRequest, err)
	}
}

func (h *handlers) getProposal(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Transcripts.Proposal(chi.URLParam(r, "id"))
	if err != nil {
		writeProposalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) confirmProposal(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Transcripts.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeProposalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) rejectProposal(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Transcripts.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeProposalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeProposalError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, proposal.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err)
	case errors.Is(err, proposal.ErrAlreadyResolved):
		writeError(w, r, http.StatusConflict, err)
	case errors.Is(err, proposal.ErrExpired):
		writeError(w, r, http.StatusGone, err)
	default:
		writeError(w, r, http.StatusInternalServerError, err)
	}
}
