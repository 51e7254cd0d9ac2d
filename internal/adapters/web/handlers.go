package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"procurement-engine/internal/app"
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
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Procurement API ───────────────────────────────────────────────────────
	r.Route("/api/procurement", func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/suggestions", h.getSuggestions)
		r.Get("/suppliers/compare", h.compareSuppliers)

		r.Get("/requests", h.listRequests)
		r.Post("/requests", h.createRequest)
		r.Post("/requests/auto-generate", h.autoGenerateRequests)
		r.Get("/requests/{id}", h.getRequest)
		r.Post("/requests/{id}/approve", h.approveRequest)
		r.Post("/requests/{id}/reject", h.rejectRequest)
		r.Post("/requests/{id}/convert", h.convertRequest)

		r.Post("/reorder-points/recompute", h.recomputeReorderPoints)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GET /api/procurement/suggestions?urgency=CRITICAL&limit=20
func (h *Handler) getSuggestions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, "limit must be an integer", "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		limit = n
	}

	result, err := h.svc.GetSuggestions(r.Context(), r.URL.Query().Get("urgency"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// GET /api/procurement/suppliers/compare?product_id=1&quantity=100
func (h *Handler) compareSuppliers(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.URL.Query().Get("product_id"))
	if err != nil {
		writeError(w, r, "product_id must be an integer", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		writeError(w, r, "quantity must be an integer", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CompareSuppliers(r.Context(), productID, quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// GET /api/procurement/requests?status=PENDING
func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

type createRequestBody struct {
	ProductID    int    `json:"product_id"`
	RequestedQty int    `json:"requested_qty"`
	SupplierID   *int   `json:"supplier_id"`
	Notes        string `json:"notes"`
}

// POST /api/procurement/requests
func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, "invalid JSON body", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateRequest(r.Context(), app.CreateRequestInput{
		ProductID:    body.ProductID,
		RequestedQty: body.RequestedQty,
		SupplierID:   body.SupplierID,
		Notes:        body.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result)
}

// GET /api/procurement/requests/{id}
func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetRequest(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

type approveBody struct {
	ApprovedBy string `json:"approved_by"`
}

// POST /api/procurement/requests/{id}/approve
func (h *Handler) approveRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	var body approveBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, "invalid JSON body", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ApproveRequest(r.Context(), id, body.ApprovedBy)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// POST /api/procurement/requests/{id}/reject
func (h *Handler) rejectRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.RejectRequest(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

type convertBody struct {
	CreatedBy string `json:"created_by"`
}

// POST /api/procurement/requests/{id}/convert
func (h *Handler) convertRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	var body convertBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, "invalid JSON body", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ConvertRequest(r.Context(), id, body.CreatedBy)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result)
}

// POST /api/procurement/requests/auto-generate
func (h *Handler) autoGenerateRequests(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.AutoGenerateRequests(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// POST /api/procurement/reorder-points/recompute
func (h *Handler) recomputeReorderPoints(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RecomputeReorderPoints(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// requestID parses the {id} route parameter, writing a 400 on failure.
func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, r, "request id must be a positive integer", "VALIDATION_ERROR", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
