// Package api exposes the civicdesk services over HTTP: a chi router with
// the auth, events and complaints routes and the middleware they share.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/logging"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
	"github.com/dmitrijs2005/civicdesk/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	GetMe(ctx context.Context, userID string) (*models.PublicUser, error)
	EditProfile(ctx context.Context, userID string, in services.ProfileInput, photo *services.Photo) (*models.PublicUser, error)
}

type EventService interface {
	Create(ctx context.Context, userID string, in services.EventInput) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Delete(ctx context.Context, userID, id string) error
}

type ComplaintService interface {
	Create(ctx context.Context, userID string, in services.ComplaintInput, photos []*services.Photo) (*services.ComplaintCreated, error)
	List(ctx context.Context) ([]*models.Complaint, error)
	Photos(ctx context.Context, complaintID string) ([]string, error)
	Delete(ctx context.Context, userID, id string) error
}

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Limits bounds request bodies.
type Limits struct {
	MaxUploadSize int64
	MaxPhotos     int
}

// Handler holds the collaborators every route handler uses.
type Handler struct {
	users      UserService
	events     EventService
	complaints ComplaintService
	health     HealthChecker
	limits     Limits
	log        logging.Logger
}

func NewHandler(us UserService, es EventService, cs ComplaintService, hc HealthChecker, limits Limits, log logging.Logger) *Handler {
	return &Handler{
		users:      us,
		events:     es,
		complaints: cs,
		health:     hc,
		limits:     limits,
		log:        log,
	}
}

const maxJSONBody = 1 << 20

// decodeJSON reads a single JSON object into dst. Unknown fields are allowed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", common.ErrValidation)
		}
		return fmt.Errorf("%w: malformed request body", common.ErrValidation)
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseMultipart parses a multipart body no larger than files photos plus a
// little room for the text fields.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request, files int) error {
	limit := h.limits.MaxUploadSize*int64(files) + maxJSONBody
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: upload is too large", common.ErrValidation)
		}
		return fmt.Errorf("%w: malformed multipart body", common.ErrValidation)
	}
	return nil
}

func readPhoto(fh *multipart.FileHeader) (*services.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &services.Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) userID(r *http.Request) (string, error) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		return "", common.ErrUnauthenticated
	}
	return id, nil
}

func (h *Handler) Hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Hello World")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		h.log.Warn(r.Context(), "health check failed", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeMessage(w, http.StatusOK, "ok")
}
