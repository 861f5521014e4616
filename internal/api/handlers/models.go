package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/examiner/internal/llm"
)

type ModelsHandler struct {
	gateway llm.Gateway
}

func NewModelsHandler(gw llm.Gateway) *ModelsHandler {
	return &ModelsHandler{gateway: gw}
}

func (h *ModelsHandler) Models(w http.ResponseWriter, r *http.Request) {
	if h.gateway == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"models": []llm.ModelInfo{}})
		return
	}

	models := h.gateway.ListModels()
	if models == nil {
		models = []llm.ModelInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":           models,
		"default_provider": h.gateway.DefaultProvider(),
		"default_model":    h.gateway.DefaultModel(),
	})
}
