package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
)

// timeLayouts are tried in order when a date arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp accepts a full RFC 3339 time or a bare date.
type Timestamp struct {
	time.Time
}

func parseTimestamp(s string) (*Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &Timestamp{Time: t}, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	*t = *p
	return nil
}

func (t *Timestamp) timePtr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

type registerRequest struct {
	Email     string     `json:"email" validate:"required,email,max=254"`
	Password  string     `json:"password" validate:"required,max=128"`
	Name      *string    `json:"name" validate:"omitempty,max=200"`
	CPF       *string    `json:"cpf" validate:"omitempty,max=20"`
	Phone     *string    `json:"phone" validate:"omitempty,max=30"`
	BirthDate *Timestamp `json:"birthDate"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type loginResponse struct {
	Message      string             `json:"message"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	User         *models.PublicUser `json:"user"`
}

type accessTokenResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

type userResponse struct {
	Message string             `json:"message,omitempty"`
	User    *models.PublicUser `json:"user"`
}

type editProfileRequest struct {
	Name      *string    `json:"name" validate:"omitempty,max=200"`
	Phone     *string    `json:"phone" validate:"omitempty,max=30"`
	CPF       *string    `json:"cpf" validate:"omitempty,max=20"`
	BirthDate *Timestamp `json:"birthDate"`
}

type createEventRequest struct {
	Description string     `json:"description" validate:"required"`
	StartDate   *Timestamp `json:"start_date" validate:"required"`
	EndDate     *Timestamp `json:"end_date"`
	Category    *string    `json:"category"`
	Address     *string    `json:"address"`
	Latitude    *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

type eventResponse struct {
	Message string        `json:"message"`
	Event   *models.Event `json:"event"`
}

type eventsResponse struct {
	Events []*models.Event `json:"events"`
}

// createComplaintRequest also accepts "type" for the category, the name
// older clients send.
type createComplaintRequest struct {
	Description    string     `json:"description" validate:"required"`
	OccurrenceDate *Timestamp `json:"occurrence_date" validate:"required"`
	Category       *string    `json:"category"`
	Type           *string    `json:"type"`
	Address        *string    `json:"address"`
	Latitude       *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (r *createComplaintRequest) category() *string {
	if r.Category != nil {
		return r.Category
	}
	return r.Type
}

type complaintResponse struct {
	Message        string            `json:"message"`
	Complaint      *models.Complaint `json:"complaint"`
	PhotosUploaded int               `json:"photos_uploaded"`
}

type complaintsResponse struct {
	Complaints []*models.Complaint `json:"complaints"`
}

type photosResponse struct {
	Photos []string `json:"photos"`
}

// form reads multipart or urlencoded fields, collecting the first parse
// error.
type form struct {
	get func(string) string
	err error
}

func (f *form) str(names ...string) *string {
	for _, n := range names {
		if v := strings.TrimSpace(f.get(n)); v != "" {
			return &v
		}
	}
	return nil
}

func (f *form) text(name string) string {
	if v := f.str(name); v != nil {
		return *v
	}
	return ""
}

func (f *form) float(name string) *float64 {
	s := f.str(name)
	if s == nil {
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		f.fail(fmt.Errorf("%w: %s must be a number", common.ErrValidation, name))
		return nil
	}
	return &v
}

func (f *form) timestamp(names ...string) *Timestamp {
	s := f.str(names...)
	if s == nil {
		return nil
	}
	t, err := parseTimestamp(*s)
	if err != nil {
		f.fail(fmt.Errorf("%w: %s must be a date", common.ErrValidation, names[0]))
		return nil
	}
	return t
}

func (f *form) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}
