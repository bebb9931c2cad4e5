package handler

import (
	"encoding/json"
	"net/http"

	"voyago/internal/trips/service"
	httputil "voyago/pkg/http"
	"voyago/pkg/logger"
	"voyago/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TripHandler struct {
	service service.TripService
	log     *logger.Logger
}

func NewTripHandler(service service.TripService, log *logger.Logger) *TripHandler {
	return &TripHandler{
		service: service,
		log:     log,
	}
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var trip model.Trip
	if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), &trip); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, trip)
}

func (h *TripHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	trip, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, trip)
}

func (h *TripHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	trips, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, trips, total, limit, int(offset))
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.TripUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	trip, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, trip)
}

func (h *TripHandler) Publish(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	trip, err := h.service.Publish(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, trip)
}

func (h *TripHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/trips", h.Create)
	router.GET("/api/v1/trips", h.GetAll)
	router.GET("/api/v1/trips/id/:id", h.GetByID)
	router.PATCH("/api/v1/trips/id/:id", h.Update)
	router.POST("/api/v1/trips/id/:id/publish", h.Publish)
}
