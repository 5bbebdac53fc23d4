package api

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	list, err := h.complaints.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, complaintsResponse{Complaints: list})
}

func (h *Handler) ComplaintPhotos(w http.ResponseWriter, r *http.Request) {
	urls, err := h.complaints.Photos(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if urls == nil {
		urls = []string{}
	}
	writeJSON(w, http.StatusOK, photosResponse{Photos: urls})
}

// CreateComplaint accepts multipart with up to Limits.MaxPhotos files in
// "photos", or a JSON body without photos.
func (h *Handler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var (
		req    createComplaintRequest
		photos []*services.Photo
	)

	if isMultipart(r) {
		if err := h.parseMultipart(w, r, h.limits.MaxPhotos); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		f := &form{get: r.FormValue}
		req = createComplaintRequest{
			Description:    f.text("description"),
			OccurrenceDate: f.timestamp("occurrence_date"),
			Category:       f.str("category"),
			Type:           f.str("type"),
			Address:        f.str("address"),
			Latitude:       f.float("latitude"),
			Longitude:      f.float("longitude"),
		}
		if f.err != nil {
			writeError(w, r, h.log, f.err)
			return
		}

		fhs := r.MultipartForm.File["photos"]
		if h.limits.MaxPhotos > 0 && len(fhs) > h.limits.MaxPhotos {
			writeError(w, r, h.log, fmt.Errorf("%w: at most %d photos are allowed", common.ErrValidation, h.limits.MaxPhotos))
			return
		}
		for _, fh := range fhs {
			p, err := readPhoto(fh)
			if err != nil {
				writeError(w, r, h.log, err)
				return
			}
			photos = append(photos, p)
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := validateRequest(&req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.complaints.Create(r.Context(), userID, services.ComplaintInput{
		Description:    req.Description,
		OccurrenceDate: req.OccurrenceDate.timePtr(),
		Category:       req.category(),
		Address:        req.Address,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
	}, photos)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, complaintResponse{
		Message:        "complaint created",
		Complaint:      res.Complaint,
		PhotosUploaded: res.PhotosUploaded,
	})
}

func (h *Handler) DeleteComplaint(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.complaints.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeMessage(w, http.StatusOK, "complaint deleted")
}
