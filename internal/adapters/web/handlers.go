package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"costing-engine/internal/app"
	"costing-engine/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Metrics)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Operational endpoints ─────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// ── Pricing & cost API ────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/companies/{id}/pricing-report", h.pricingReport)
		r.Get("/api/companies/{id}/products/{productID}/cost", h.productCost)
		r.Get("/api/companies/{id}/ingredients/{ingredientID}/cost", h.ingredientCost)
		r.Get("/api/companies/{id}/fixed-costs", h.costBreakdown)
		r.Get("/api/companies/{id}/kpis", h.monthlyKPIs)
		r.Post("/api/companies/{id}/advise", h.advise)
	})

	h.router = r
	return r
}

// health returns service status and the loaded company name.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	company, err := h.svc.LoadDefaultCompany(r.Context())
	companyName := ""
	if err == nil && company != nil {
		companyName = company.Name
	}

	type response struct {
		Status  string `json:"status"`
		Company string `json:"company"`
	}

	writeJSON(w, response{Status: "ok", Company: companyName})
}

func (h *Handler) pricingReport(w http.ResponseWriter, r *http.Request) {
	companyID, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.GetPricingReport(r.Context(), companyID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Report)
}

func (h *Handler) productCost(w http.ResponseWriter, r *http.Request) {
	companyID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	productID, ok := intParam(w, r, "productID")
	if !ok {
		return
	}

	result, err := h.svc.GetProductCost(r.Context(), companyID, productID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Report)
}

func (h *Handler) ingredientCost(w http.ResponseWriter, r *http.Request) {
	companyID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	ingredientID, ok := intParam(w, r, "ingredientID")
	if !ok {
		return
	}

	result, err := h.svc.GetIngredientCost(r.Context(), companyID, ingredientID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	type response struct {
		Ingredient core.Ingredient   `json:"ingredient"`
		UnitCost   core.ResolvedCost `json:"unit_cost"`
	}
	writeJSON(w, response{Ingredient: result.Ingredient, UnitCost: result.UnitCost})
}

func (h *Handler) costBreakdown(w http.ResponseWriter, r *http.Request) {
	companyID, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.svc.GetCostBreakdown(r.Context(), companyID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	type response struct {
		Company core.Company         `json:"company"`
		Lines   []core.FixedCostLine `json:"lines"`
		Total   decimal.Decimal      `json:"total"`
	}
	writeJSON(w, response{Company: result.Company, Lines: result.Lines, Total: result.Total})
}

func (h *Handler) monthlyKPIs(w http.ResponseWriter, r *http.Request) {
	companyID, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 24 {
			writeError(w, r, "months must be an integer between 1 and 24", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		months = m
	}

	result, err := h.svc.GetMonthlyKPIs(r.Context(), companyID, months)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	type response struct {
		Company    core.Company      `json:"company"`
		MonthsBack int               `json:"months_back"`
		Months     []core.MonthlyKPI `json:"months"`
	}
	writeJSON(w, response{Company: result.Company, MonthsBack: result.MonthsBack, Months: result.Months})
}

func (h *Handler) advise(w http.ResponseWriter, r *http.Request) {
	companyID, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.AdvisePricing(r.Context(), companyID, req.Question)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Advice)
}

// intParam extracts a positive integer URL parameter, writing HTTP 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		writeError(w, r, "invalid "+name+" parameter", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

// writeDomainError maps well-known domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrCompanyNotFound):
		writeError(w, r, err.Error(), "COMPANY_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrNoSettings):
		writeError(w, r, err.Error(), "SETTINGS_MISSING", http.StatusUnprocessableEntity)
	case errors.Is(err, app.ErrProductNotFound):
		writeError(w, r, err.Error(), "PRODUCT_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, app.ErrIngredientNotFound):
		writeError(w, r, err.Error(), "INGREDIENT_NOT_FOUND", http.StatusNotFound)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
