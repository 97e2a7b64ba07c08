package valuation

import (
	"net/http"

	"go.uber.org/zap"

	"tokenized_valuation/pkg/api/respond"
	"tokenized_valuation/pkg/core/logger"
	"tokenized_valuation/pkg/core/valuation"
)

const errNotFinite = "assumptions produce a non-finite valuation"

type ModelResponse struct {
	Model  valuation.ModelKind `json:"model"`
	Method string              `json:"method"`
}

type ComputeRequest struct {
	Project     valuation.ProjectContext       `json:"project"`
	Assumptions valuation.ValuationAssumptions `json:"assumptions"`
}

type RecalculateRequest struct {
	Report      valuation.ValuationReport     `json:"report"`
	Assumptions valuation.AssumptionOverrides `json:"assumptions"`
}

// Handler exposes the valuation engine over HTTP.
type Handler struct {
	Engine *valuation.Engine
	Log    *zap.Logger
}

func NewHandler(engine *valuation.Engine, log *zap.Logger) *Handler {
	log = logger.OrNop(log)
	return &Handler{Engine: engine, Log: log.Named("api.valuation")}
}

// Register mounts the valuation routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/valuation/model", h.HandleSelectModel)
	mux.HandleFunc("/api/valuation/report", h.HandleReport)
	mux.HandleFunc("/api/valuation/compute", h.HandleCompute)
	mux.HandleFunc("/api/valuation/recalculate", h.HandleRecalculate)
}

func (h *Handler) HandleSelectModel(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, http.MethodPost) || !respond.Method(w, r, http.MethodPost) {
		return
	}
	var project valuation.ProjectContext
	if !respond.Decode(w, r, &project) {
		return
	}
	model := valuation.SelectModel(project)
	respond.JSON(w, http.StatusOK, ModelResponse{Model: model, Method: valuation.MethodName(model)})
}

// HandleReport runs the full workflow. Oracle problems never fail the
// request; the report then carries fallback assumptions and narrative.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, http.MethodPost) || !respond.Method(w, r, http.MethodPost) {
		return
	}
	var project valuation.ProjectContext
	if !respond.Decode(w, r, &project) {
		return
	}
	if project.Name == "" {
		respond.Error(w, http.StatusBadRequest, "project name is required")
		return
	}

	report := h.Engine.RunValuationWorkflow(r.Context(), project)
	h.Log.Info("report generated",
		zap.String("report_id", report.ID),
		zap.String("project", project.Name),
		zap.String("model", string(report.Valuation.ModelUsed)),
	)
	respond.JSON(w, http.StatusOK, report)
}

func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, http.MethodPost) || !respond.Method(w, r, http.MethodPost) {
		return
	}
	var req ComputeRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	a := req.Assumptions
	if a.Model == "" {
		a.Model = valuation.SelectModel(req.Project)
	}
	if a.HoldingPeriod == 0 {
		a.HoldingPeriod = valuation.DefaultHoldingPeriod
	}
	if err := a.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out := h.Engine.RunValuation(a, req.Project)
	if !out.IsFinite() {
		h.Log.Warn("valuation not finite", zap.String("model", string(a.Model)), zap.Int("holding_period", a.HoldingPeriod))
		respond.Error(w, http.StatusUnprocessableEntity, errNotFinite)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, http.MethodPost) || !respond.Method(w, r, http.MethodPost) {
		return
	}
	var req RecalculateRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	if err := req.Assumptions.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	// the report comes from the client too
	if err := req.Assumptions.Apply(req.Report.Assumptions).Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, "report.assumptions: "+err.Error())
		return
	}

	next := h.Engine.Recalculate(req.Report, req.Assumptions)
	if !next.Valuation.IsFinite() {
		h.Log.Warn("recalculated valuation not finite", zap.String("report_id", req.Report.ID))
		respond.Error(w, http.StatusUnprocessableEntity, errNotFinite)
		return
	}
	respond.JSON(w, http.StatusOK, next)
}
