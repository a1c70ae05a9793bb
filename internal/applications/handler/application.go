package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kitapool/internal/applications/service"
	httputil "kitapool/pkg/http"
	"kitapool/pkg/logger"
	"kitapool/pkg/middleware"
)

type ApplicationHandler struct {
	service service.ApplicationService
	log     *logger.Logger
}

func NewApplicationHandler(service service.ApplicationService, log *logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: service,
		log:     log,
	}
}

func (h *ApplicationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/applications", h.Apply)
	router.PATCH("/api/v1/applications/:id/decision", h.Decide)
	router.GET("/api/v1/requests/:id/applications", h.ListForRequest)
	router.GET("/api/v1/my-applications", h.MyApplications)
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input service.ApplyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeBadRequest(w, "Apply")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	app, err := h.service.Apply(r.Context(), callerID, input)
	if err != nil {
		h.writeError(w, "Apply", err)
		return
	}

	if err := httputil.WriteCreated(w, app); err != nil {
		h.log.Error("failed to write created response", "handler", "Apply", "error", err)
	}
}

func (h *ApplicationHandler) Decide(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var input service.DecideInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeBadRequest(w, "Decide")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	app, err := h.service.Decide(r.Context(), callerID, ps.ByName("id"), input)
	if err != nil {
		h.writeError(w, "Decide", err)
		return
	}

	if err := httputil.WriteSuccess(w, app); err != nil {
		h.log.Error("failed to write success response", "handler", "Decide", "error", err)
	}
}

func (h *ApplicationHandler) ListForRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())

	apps, err := h.service.ListForRequest(r.Context(), callerID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListForRequest", err)
		return
	}

	if err := httputil.WriteSuccess(w, apps); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForRequest", "error", err)
	}
}

func (h *ApplicationHandler) MyApplications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())

	apps, err := h.service.MyApplications(r.Context(), callerID)
	if err != nil {
		h.writeError(w, "MyApplications", err)
		return
	}

	if err := httputil.WriteSuccess(w, apps); err != nil {
		h.log.Error("failed to write success response", "handler", "MyApplications", "error", err)
	}
}

func (h *ApplicationHandler) writeBadRequest(w http.ResponseWriter, handlerName string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "error", err)
	}
}

func (h *ApplicationHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}
