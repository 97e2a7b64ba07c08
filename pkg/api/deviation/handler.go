package deviation

import (
	"net/http"

	"go.uber.org/zap"

	"tokenized_valuation/pkg/api/respond"
	"tokenized_valuation/pkg/core/deviation"
	"tokenized_valuation/pkg/core/logger"
)

type AnalyzeRequest struct {
	AssetType string                  `json:"assetType"`
	Values    deviation.ProjectValues `json:"values"`
}

type BenchmarksResponse struct {
	ZeroStdPolicy deviation.ZeroStdPolicy  `json:"zeroStdPolicy"`
	Benchmarks    deviation.BenchmarkTable `json:"benchmarks"`
}

type Handler struct {
	Engine *deviation.Engine
	Log    *zap.Logger
}

func NewHandler(engine *deviation.Engine, log *zap.Logger) *Handler {
	log = logger.OrNop(log)
	return &Handler{Engine: engine, Log: log.Named("api.deviation")}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/deviation/analyze", h.HandleAnalyze)
	mux.HandleFunc("/api/deviation/benchmarks", h.HandleBenchmarks)
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, http.MethodPost) || !respond.Method(w, r, http.MethodPost) {
		return
	}
	var req AnalyzeRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	report := h.Engine.AnalyzeDeviation(req.AssetType, req.Values)
	h.Log.Debug("deviation analyzed",
		zap.String("asset_type", req.AssetType),
		zap.Int("score", report.OverallDeviationScore),
		zap.Int("anomalies", len(report.Anomalies)),
	)
	respond.JSON(w, http.StatusOK, report)
}

func (h *Handler) HandleBenchmarks(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, http.MethodGet) || !respond.Method(w, r, http.MethodGet) {
		return
	}
	respond.JSON(w, http.StatusOK, BenchmarksResponse{
		ZeroStdPolicy: h.Engine.Policy(),
		Benchmarks:    h.Engine.Benchmarks(),
	})
}
