package api

import (
	"net/http"

	"github.com/dmitrijs2005/civicdesk/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.events.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: list})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	e, err := h.events.Create(r.Context(), userID, services.EventInput{
		Description: req.Description,
		StartDate:   req.StartDate.timePtr(),
		EndDate:     req.EndDate.timePtr(),
		Category:    req.Category,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, eventResponse{Message: "event created", Event: e})
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.events.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeMessage(w, http.StatusOK, "event deleted")
}
