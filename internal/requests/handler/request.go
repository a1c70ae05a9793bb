package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kitapool/internal/requests/service"
	httputil "kitapool/pkg/http"
	"kitapool/pkg/logger"
	"kitapool/pkg/middleware"
	"kitapool/pkg/model"
)

type RequestHandler struct {
	service service.RequestService
	log     *logger.Logger
}

func NewRequestHandler(service service.RequestService, log *logger.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		log:     log,
	}
}

func (h *RequestHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/requests", h.Create)
	router.GET("/api/v1/open-requests", h.ListOpen)
	router.GET("/api/v1/my-requests", h.MyRequests)
	router.GET("/api/v1/requests/:id", h.GetDetails)
	router.PATCH("/api/v1/requests/:id/status", h.UpdateStatus)

	router.GET("/api/v1/matches/inbox", h.ProviderInbox)
	router.PATCH("/api/v1/matches/:id/status", h.SetMatchStatus)
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SubstitutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	matchCount, err := h.service.Create(r.Context(), callerID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"request":     req,
		"match_count": matchCount,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *RequestHandler) ListOpen(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	items, err := h.service.ListOpen(r.Context(), query.Get("city"), query.Get("age_group"))
	if err != nil {
		h.writeError(w, "ListOpen", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "ListOpen", "error", err)
	}
}

func (h *RequestHandler) MyRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())

	requests, err := h.service.MyRequests(r.Context(), callerID)
	if err != nil {
		h.writeError(w, "MyRequests", err)
		return
	}

	if err := httputil.WriteSuccess(w, requests); err != nil {
		h.log.Error("failed to write success response", "handler", "MyRequests", "error", err)
	}
}

func (h *RequestHandler) GetDetails(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())

	details, err := h.service.GetDetailsForProvider(r.Context(), callerID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetDetails", err)
		return
	}

	if err := httputil.WriteSuccess(w, details); err != nil {
		h.log.Error("failed to write success response", "handler", "GetDetails", "error", err)
	}
}

func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeBadRequest(w, "UpdateStatus")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	if err := h.service.UpdateStatus(r.Context(), callerID, ps.ByName("id"), body.Status); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"status": body.Status}); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "error", err)
	}
}

func (h *RequestHandler) ProviderInbox(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())

	items, err := h.service.ProviderInbox(r.Context(), callerID)
	if err != nil {
		h.writeError(w, "ProviderInbox", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "ProviderInbox", "error", err)
	}
}

func (h *RequestHandler) SetMatchStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeBadRequest(w, "SetMatchStatus")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	if err := h.service.SetMatchStatus(r.Context(), callerID, ps.ByName("id"), body.Status); err != nil {
		h.writeError(w, "SetMatchStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"status": body.Status}); err != nil {
		h.log.Error("failed to write success response", "handler", "SetMatchStatus", "error", err)
	}
}

func (h *RequestHandler) writeBadRequest(w http.ResponseWriter, handlerName string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "error", err)
	}
}

func (h *RequestHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}
