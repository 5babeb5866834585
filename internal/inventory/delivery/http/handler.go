package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/caterstock/billing/internal/inventory/usecase/query"
	"github.com/caterstock/billing/pkg/logger"
)

// InventoryHandler handles HTTP requests for inventory reads
type InventoryHandler struct {
	sufficiencyHandler *query.CheckSufficiencyHandler
	aggregateHandler   *query.GetAggregateHandler

	sufficiencyChecks *prometheus.CounterVec
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(
	sufficiencyHandler *query.CheckSufficiencyHandler,
	aggregateHandler *query.GetAggregateHandler,
) *InventoryHandler {
	sufficiencyChecks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_service_sufficiency_checks_total",
			Help: "Total number of stock sufficiency checks, by result",
		},
		[]string{"result"},
	)

	prometheus.MustRegister(sufficiencyChecks)

	return &InventoryHandler{
		sufficiencyHandler: sufficiencyHandler,
		aggregateHandler:   aggregateHandler,
		sufficiencyChecks:  sufficiencyChecks,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type sufficiencyItem struct {
	ProductID  uint    `json:"product_id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	BatchLabel string  `json:"batch,omitempty"`
}

type sufficiencyRequest struct {
	Items []sufficiencyItem `json:"items"`
}

// CheckSufficiency handles POST /api/inventory/sufficiency
func (h *InventoryHandler) CheckSufficiency(w http.ResponseWriter, r *http.Request) {
	var req sufficiencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}
	if len(req.Items) == 0 {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "At least one item is required",
		})
		return
	}

	demands := make([]query.ProductDemand, 0, len(req.Items))
	for _, item := range req.Items {
		demands = append(demands, query.ProductDemand{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			BatchLabel: item.BatchLabel,
		})
	}

	statuses, err := h.sufficiencyHandler.Handle(r.Context(), query.CheckSufficiencyQuery{Demands: demands})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Sufficiency check failed")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to check stock sufficiency",
		})
		return
	}

	allSufficient := true
	for _, s := range statuses {
		if !s.IsSufficient {
			allSufficient = false
			break
		}
	}
	if allSufficient {
		h.sufficiencyChecks.WithLabelValues("sufficient").Inc()
	} else {
		h.sufficiencyChecks.WithLabelValues("insufficient").Inc()
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"all_sufficient": allSufficient,
			"statuses":       statuses,
		},
	})
}

// GetAggregate handles GET /api/inventory/aggregate/{product_id}
func (h *InventoryHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	productID, err := strconv.ParseUint(vars["product_id"], 10, 32)
	if err != nil || productID == 0 {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid product ID",
		})
		return
	}

	aggregate, err := h.aggregateHandler.Handle(r.Context(), query.GetAggregateQuery{ProductID: uint(productID)})
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Aggregate not found",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    aggregate,
	})
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/inventory/sufficiency", h.CheckSufficiency).Methods("POST")
	router.HandleFunc("/api/inventory/aggregate/{product_id}", h.GetAggregate).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
