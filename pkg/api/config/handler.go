package config

import (
	"net/http"

	"go.uber.org/zap"

	"tokenized_valuation/pkg/api/respond"
	"tokenized_valuation/pkg/core/agent"
	"tokenized_valuation/pkg/core/logger"
)

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	AgentMgr *agent.Manager
	Log      *zap.Logger
}

// NewHandler creates a new config handler
func NewHandler(agentMgr *agent.Manager, log *zap.Logger) *Handler {
	log = logger.OrNop(log)
	return &Handler{
		AgentMgr: agentMgr,
		Log:      log.Named("api.config"),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/config", h.HandleConfig)
	mux.HandleFunc("/api/config/switch", h.HandleSwitch)
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, http.MethodGet) || !respond.Method(w, r, http.MethodGet) {
		return
	}
	respond.JSON(w, http.StatusOK, h.current())
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, http.MethodPost) || !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req SwitchRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		h.Log.Warn("provider switch rejected", zap.String("provider", req.Provider), zap.Error(err))
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, h.current())
}

func (h *Handler) current() Response {
	return Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.Available(),
	}
}
