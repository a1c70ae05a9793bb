package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kitapool/internal/profiles/service"
	httputil "kitapool/pkg/http"
	"kitapool/pkg/logger"
	"kitapool/pkg/middleware"
	"kitapool/pkg/model"
)

type ProfileHandler struct {
	service service.ProfileService
	log     *logger.Logger
}

func NewProfileHandler(service service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		log:     log,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/provider-profiles", h.CreateProvider)
	router.PUT("/api/v1/provider-profiles/:id", h.UpdateProvider)
	router.GET("/api/v1/provider-profiles/me", h.MyProvider)
	router.GET("/api/v1/provider-profiles/search", h.SearchProviders)

	router.POST("/api/v1/exchange-profiles", h.CreateExchange)
	router.PUT("/api/v1/exchange-profiles/:id", h.UpdateExchange)
	router.GET("/api/v1/exchange-profiles/me", h.MyExchange)

	router.PUT("/api/v1/settings/active-profile", h.SetActiveProfile)
	router.GET("/api/v1/settings", h.MySettings)
}

func (h *ProfileHandler) CreateProvider(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var profile model.ProviderProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.writeBadRequest(w, "CreateProvider")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	if err := h.service.CreateProviderProfile(r.Context(), callerID, &profile); err != nil {
		h.writeError(w, "CreateProvider", err)
		return
	}

	if err := httputil.WriteCreated(w, profile); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateProvider", "error", err)
	}
}

func (h *ProfileHandler) UpdateProvider(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var profile model.ProviderProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.writeBadRequest(w, "UpdateProvider")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	if err := h.service.UpdateProviderProfile(r.Context(), callerID, ps.ByName("id"), &profile); err != nil {
		h.writeError(w, "UpdateProvider", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateProvider", "error", err)
	}
}

func (h *ProfileHandler) MyProvider(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())

	profile, err := h.service.MyProviderProfile(r.Context(), callerID)
	if err != nil {
		h.writeError(w, "MyProvider", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "MyProvider", "error", err)
	}
}

func (h *ProfileHandler) SearchProviders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	profiles, err := h.service.SearchProviders(r.Context(), query.Get("city"), query.Get("age_group"), query.Get("day"))
	if err != nil {
		h.writeError(w, "SearchProviders", err)
		return
	}

	if err := httputil.WriteSuccess(w, profiles); err != nil {
		h.log.Error("failed to write success response", "handler", "SearchProviders", "error", err)
	}
}

func (h *ProfileHandler) CreateExchange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var profile model.ExchangeProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.writeBadRequest(w, "CreateExchange")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	if err := h.service.CreateExchangeProfile(r.Context(), callerID, &profile); err != nil {
		h.writeError(w, "CreateExchange", err)
		return
	}

	if err := httputil.WriteCreated(w, profile); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateExchange", "error", err)
	}
}

func (h *ProfileHandler) UpdateExchange(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var profile model.ExchangeProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.writeBadRequest(w, "UpdateExchange")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	if err := h.service.UpdateExchangeProfile(r.Context(), callerID, ps.ByName("id"), &profile); err != nil {
		h.writeError(w, "UpdateExchange", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateExchange", "error", err)
	}
}

func (h *ProfileHandler) MyExchange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())

	profile, err := h.service.MyExchangeProfile(r.Context(), callerID)
	if err != nil {
		h.writeError(w, "MyExchange", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "MyExchange", "error", err)
	}
}

func (h *ProfileHandler) SetActiveProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeBadRequest(w, "SetActiveProfile")
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	settings, err := h.service.SetActiveProfile(r.Context(), callerID, body.Role)
	if err != nil {
		h.writeError(w, "SetActiveProfile", err)
		return
	}

	if err := httputil.WriteSuccess(w, settings); err != nil {
		h.log.Error("failed to write success response", "handler", "SetActiveProfile", "error", err)
	}
}

func (h *ProfileHandler) MySettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())

	settings, err := h.service.MySettings(r.Context(), callerID)
	if err != nil {
		h.writeError(w, "MySettings", err)
		return
	}

	if err := httputil.WriteSuccess(w, settings); err != nil {
		h.log.Error("failed to write success response", "handler", "MySettings", "error", err)
	}
}

func (h *ProfileHandler) writeBadRequest(w http.ResponseWriter, handlerName string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "error", err)
	}
}

func (h *ProfileHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}
