package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/dbx"
	"github.com/dmitrijs2005/civicdesk/internal/logging"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/repomanager"
)

// EventInput is a new event as submitted by its creator.
type EventInput struct {
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Category    *string
	Address     *string
	Latitude    *float64
	Longitude   *float64
}

type EventService struct {
	db          DBProvider
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewEventService(db DBProvider, m repomanager.RepositoryManager, log logging.Logger) *EventService {
	return &EventService{db: db, repomanager: m, log: log.With("module", "events")}
}

func (s *EventService) Create(ctx context.Context, userID string, in EventInput) (*models.Event, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("description is required")
	}
	if in.StartDate == nil {
		return nil, invalid("start date is required")
	}
	if in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, invalid("end date is before start date")
	}

	db, err := s.db.Conn(ctx)
	if err != nil {
		return nil, upstream("db", err)
	}
	defer db.Close()

	e, err := s.repomanager.Events(db).Create(ctx, &models.Event{
		Description: in.Description,
		StartDate:   *in.StartDate,
		EndDate:     in.EndDate,
		CreatedBy:   userID,
		Category:    in.Category,
		Address:     in.Address,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	})
	if err != nil {
		return nil, upstream("create event", err)
	}

	s.log.Info(ctx, "event created", "event_id", e.ID, "user_id", userID)
	return e, nil
}

func (s *EventService) List(ctx context.Context) ([]*models.Event, error) {
	db, err := s.db.Conn(ctx)
	if err != nil {
		return nil, upstream("db", err)
	}
	defer db.Close()

	list, err := s.repomanager.Events(db).List(ctx)
	if err != nil {
		return nil, upstream("list events", err)
	}
	return list, nil
}

// Delete removes the event if userID created it. The lookup and the delete
// share one transaction.
func (s *EventService) Delete(ctx context.Context, userID, id string) error {
	db, err := s.db.Conn(ctx)
	if err != nil {
		return upstream("db", err)
	}
	defer db.Close()

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Events(tx)

		e, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := CheckOwnership(e.CreatedBy, userID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})

	switch {
	case err == nil:
		s.log.Info(ctx, "event deleted", "event_id", id, "user_id", userID)
		return nil
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrForbidden):
		return err
	default:
		return upstream("delete event", err)
	}
}
