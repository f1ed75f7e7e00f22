package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/roso1102/reboard/internal/diagnose"
	"github.com/roso1102/reboard/internal/model"
	"github.com/roso1102/reboard/internal/rank"
	"github.com/roso1102/reboard/internal/report"
	"github.com/roso1102/reboard/internal/store"
	"github.com/roso1102/reboard/pkg/diagai"
)

// newRouter builds the HTTP API. Kept separate from the serve command so
// handler tests can drive it directly.
func newRouter(e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/diagnose", e.handleDiagnose)
	r.Post("/identify", e.handleIdentify)

	r.Route("/components", func(r chi.Router) {
		r.Get("/", e.handleSearch)
		r.Post("/", e.handleCreateComponent)
		r.Get("/{id}", e.handleGetComponent)
		r.Get("/{id}/report", e.handleComponentReport)
		r.Post("/{id}/list", e.handleListComponent)
		r.Post("/{id}/unlist", e.handleUnlistComponent)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", e.handleListOrders)
		r.Post("/", e.handlePlaceOrder)
		r.Post("/{id}/status", e.handleOrderStatus)
	})

	return r
}

type diagnoseRequest struct {
	Name     string `json:"name"`
	Model    string `json:"model"`
	Category string `json:"category"`
	TestData string `json:"test_data"`
	Photo    string `json:"photo"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Seller   string `json:"seller"`
	Location string `json:"location"`
	List     bool   `json:"list"`
}

func (e *env) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req diagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifyFromPhoto(r.Context(), e, req.Photo, &req.Name, &req.Model, &req.Category)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	if req.Category == "" {
		req.Category = e.parts.InferCategory(req.Name)
	}

	result := e.diagnoseResult(r.Context(), req)

	c, err := e.market.AddComponent(r.Context(), model.Component{
		Name:       req.Name,
		ModelName:  req.Model,
		Category:   req.Category,
		Price:      req.Price,
		Quantity:   req.Quantity,
		Seller:     req.Seller,
		Location:   req.Location,
		Diagnostic: result,
	}, req.List)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// diagnoseResult tries the external adapter first and degrades to the
// local grading path on any failure.
func (e *env) diagnoseResult(ctx context.Context, req diagnoseRequest) model.DiagnosticResult {
	if e.adapter.Available() {
		if r := e.adapter.Diagnose(ctx, diagai.Meta{
			ComponentType: req.Name,
			ModelName:     req.Model,
			Category:      req.Category,
		}, preview(req.TestData), req.Photo); r != nil {
			return *r
		}
	}
	return e.grader.Grade(diagnose.Meta{Name: req.Name, ModelName: req.Model, Category: req.Category}, req.TestData)
}

// handleCreateComponent accepts a pre-graded component payload, for
// callers that ran diagnostics elsewhere.
func (e *env) handleCreateComponent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		model.Component
		List bool `json:"list"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := e.market.AddComponent(r.Context(), req.Component, req.List)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (e *env) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")

	sortMode, err := rank.ParseSortMode(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var features model.IntentFeatures
	if query != "" {
		features = e.intents.Extract(r.Context(), query)
	}

	catalog, err := e.market.Components(r.Context(), store.ComponentFilter{Status: model.StatusListed})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ranked := rank.Rank(catalog, rank.Request{
		Query:  query,
		Intent: features,
		Filter: rank.Filter{
			Category:       q.Get("category"),
			Grade:          model.Grade(strings.ToUpper(q.Get("grade"))),
			PriceMin:       intParam(q.Get("price_min")),
			PriceMax:       intParam(q.Get("price_max")),
			MinReusability: intParam(q.Get("min_reusability")),
			Location:       q.Get("location"),
		},
		Sort: sortMode,
	})

	writeJSON(w, http.StatusOK, ranked)
}

func (e *env) handleGetComponent(w http.ResponseWriter, r *http.Request) {
	c, err := e.market.Component(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (e *env) handleComponentReport(w http.ResponseWriter, r *http.Request) {
	c, err := e.market.Component(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	circuit := circuitFor(r.Context(), e, c.Name, c.ModelName)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderHTML(w, c, &circuit); err != nil {
		zap.L().Error("report render failed", zap.Error(err))
	}
}

// handleIdentify names a component from a photo, mirroring the
// prefill-from-photo flow of the diagnose form.
func (e *env) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Photo string `json:"photo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Photo == "" {
		writeError(w, http.StatusBadRequest, "photo is required")
		return
	}
	if !e.adapter.Available() {
		writeError(w, http.StatusServiceUnavailable, "photo identification needs the external service")
		return
	}

	ident := e.adapter.Identify(r.Context(), req.Photo)
	if ident == nil {
		writeError(w, http.StatusUnprocessableEntity, "component not identified")
		return
	}
	if ident.Category == "" {
		ident.Category = e.parts.InferCategory(ident.ComponentType)
	}
	writeJSON(w, http.StatusOK, ident)
}

func (e *env) handleListComponent(w http.ResponseWriter, r *http.Request) {
	if err := e.market.List(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "listed"})
}

func (e *env) handleUnlistComponent(w http.ResponseWriter, r *http.Request) {
	if err := e.market.Unlist(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "internal"})
}

func (e *env) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := e.market.Orders(r.Context(), intParam(r.URL.Query().Get("limit")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (e *env) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Buyer string           `json:"buyer"`
		Items []model.CartItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := e.market.PlaceOrderItems(r.Context(), req.Buyer, req.Items)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (e *env) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := e.market.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), model.OrderStatus(req.Status))
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeNotFoundOrError(w http.ResponseWriter, err error) {
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

func intParam(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
