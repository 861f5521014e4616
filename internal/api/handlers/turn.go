package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/nikhilbhutani/examiner/internal/examiner"
)

const (
	maxUploadMemory = 32 << 20
	// Whisper endpoints reject larger files.
	defaultMaxUploadBytes = 25 << 20
)

// TurnProcessor is satisfied by *examiner.Processor.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, audio []byte, history string) examiner.TurnResult
}

type TurnHandler struct {
	processor      TurnProcessor
	maxUploadBytes int64
}

func NewTurnHandler(p TurnProcessor) *TurnHandler {
	return &TurnHandler{processor: p, maxUploadBytes: defaultMaxUploadBytes}
}

// ProcessAudio handles POST /process-audio. Every pipeline outcome is a 200;
// only a request that cannot be read is rejected.
func (h *TurnHandler) ProcessAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, http.StatusBadRequest, "file is required")
			return
		}
		writeError(w, http.StatusBadRequest, "read file: "+err.Error())
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read file: "+err.Error())
		return
	}

	// Body only; a query parameter must not replace the conversation.
	history := r.PostFormValue("history_context")

	// A started turn runs to completion even if the client goes away.
	result := h.processor.ProcessTurn(context.WithoutCancel(r.Context()), audio, history)

	w.Header().Set("X-Turn-Outcome", string(result.Outcome))
	writeJSON(w, http.StatusOK, result.Wire())
}
