package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/caterstock/billing/internal/sale/domain"
	"github.com/caterstock/billing/internal/sale/usecase/command"
	"github.com/caterstock/billing/internal/sale/usecase/query"
	"github.com/caterstock/billing/pkg/logger"
)

// SaleHandler handles HTTP requests for caterer sales
type SaleHandler struct {
	createHandler *command.CreateSaleHandler
	getHandler    *query.GetSaleHandler
	listHandler   *query.ListSalesHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	salesCreated   *prometheus.CounterVec
	saleFailures   *prometheus.CounterVec
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(
	createHandler *command.CreateSaleHandler,
	getHandler *query.GetSaleHandler,
	listHandler *query.ListSalesHandler,
) *SaleHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_service_requests_total",
			Help: "Total number of requests to the billing service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_service_request_duration_seconds",
			Help:    "Duration of billing service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	salesCreated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_service_sales_created_total",
			Help: "Total number of sales created, by payment status",
		},
		[]string{"payment_status"},
	)

	saleFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_service_sale_failures_total",
			Help: "Total number of rejected sales, by error code",
		},
		[]string{"code"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(salesCreated)
	prometheus.MustRegister(saleFailures)

	return &SaleHandler{
		createHandler:  createHandler,
		getHandler:     getHandler,
		listHandler:    listHandler,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		salesCreated:   salesCreated,
		saleFailures:   saleFailures,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// CreateSale handles POST /api/sales
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var payload domain.SalePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.observe(r.Method, "/api/sales", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
			Code:    string(domain.ErrCodeInvalidItems),
		})
		return
	}

	result, err := h.createHandler.Handle(r.Context(), command.CreateSaleCommand{Payload: payload})
	if err != nil {
		saleErr := asSaleError(err)
		h.saleFailures.WithLabelValues(string(saleErr.Code)).Inc()
		h.observe(r.Method, "/api/sales", saleErr.Code.HTTPStatus(), start)
		respondJSON(w, saleErr.Code.HTTPStatus(), Response{
			Success: false,
			Error:   saleErr.Message,
			Code:    string(saleErr.Code),
		})
		return
	}

	h.salesCreated.WithLabelValues(result.PaymentStatus).Inc()
	h.observe(r.Method, "/api/sales", http.StatusCreated, start)
	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Sale created successfully",
		Data:    result,
	})
}

// GetSale handles GET /api/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.observe(r.Method, "/api/sales/{id}", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid sale ID",
		})
		return
	}

	sale, err := h.getHandler.Handle(query.GetSaleQuery{ID: uint(id)})
	if err != nil {
		h.observe(r.Method, "/api/sales/{id}", http.StatusNotFound, start)
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Sale not found",
		})
		return
	}

	h.observe(r.Method, "/api/sales/{id}", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    sale,
	})
}

// ListSales handles GET /api/sales
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	sales, err := h.listHandler.Handle(query.ListSalesQuery{Limit: limit, Offset: offset})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list sales")
		h.observe(r.Method, "/api/sales", http.StatusInternalServerError, start)
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list sales",
		})
		return
	}

	h.observe(r.Method, "/api/sales", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    sales,
	})
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sales", h.ListSales).Methods("GET")
	router.HandleFunc("/api/sales", h.CreateSale).Methods("POST")
	router.HandleFunc("/api/sales/{id}", h.GetSale).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *SaleHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Billing service is healthy",
		})
	}).Methods("GET")
}

func (h *SaleHandler) observe(method, endpoint string, status int, start time.Time) {
	h.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	h.requestLatency.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}

func asSaleError(err error) *domain.SaleError {
	var saleErr *domain.SaleError
	if errors.As(err, &saleErr) {
		return saleErr
	}
	return domain.NewSaleError(domain.ErrCodeUnknown, err.Error(), err)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
