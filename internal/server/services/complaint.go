package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/dbx"
	"github.com/dmitrijs2005/civicdesk/internal/logging"
	"github.com/dmitrijs2005/civicdesk/internal/server/config"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/civicdesk/internal/server/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// photoUploadConcurrency bounds parallel uploads per complaint.
const photoUploadConcurrency = 4

// ComplaintInput is a new complaint as submitted by its creator.
type ComplaintInput struct {
	Description    string
	OccurrenceDate *time.Time
	Category       *string
	Address        *string
	Latitude       *float64
	Longitude      *float64
}

// ComplaintCreated is the stored complaint and how many of its photos made it
// to storage.
type ComplaintCreated struct {
	Complaint      *models.Complaint
	PhotosUploaded int
}

type ComplaintService struct {
	db           DBProvider
	repomanager  repomanager.RepositoryManager
	storage      storage.ObjectStorage
	bucket       string
	maxPhotos    int
	maxPhotoSize int64
	urlExpiry    time.Duration
	log          logging.Logger
	newID        func() string
}

func NewComplaintService(db DBProvider, m repomanager.RepositoryManager, st storage.ObjectStorage,
	cfg *config.Config, log logging.Logger) *ComplaintService {
	return &ComplaintService{
		db:           db,
		repomanager:  m,
		storage:      st,
		bucket:       cfg.ComplaintBucket,
		maxPhotos:    cfg.MaxComplaintPhotos,
		maxPhotoSize: cfg.MaxUploadSize,
		urlExpiry:    cfg.SignedURLExpiry,
		log:          log.With("module", "complaints"),
		newID:        uuid.NewString,
	}
}

// Create stores the complaint, then uploads its photos concurrently. A photo
// that fails to upload is logged and skipped; it never fails the create.
func (s *ComplaintService) Create(ctx context.Context, userID string, in ComplaintInput, photos []*Photo) (*ComplaintCreated, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("description is required")
	}
	if in.OccurrenceDate == nil {
		return nil, invalid("occurrence date is required")
	}
	if s.maxPhotos > 0 && len(photos) > s.maxPhotos {
		return nil, invalid(fmt.Sprintf("at most %d photos are allowed", s.maxPhotos))
	}
	for _, p := range photos {
		if err := validatePhoto(p, s.maxPhotoSize); err != nil {
			return nil, err
		}
	}

	db, err := s.db.Conn(ctx)
	if err != nil {
		return nil, upstream("db", err)
	}

	c, err := s.repomanager.Complaints(db).Create(ctx, &models.Complaint{
		Description:    in.Description,
		OccurrenceDate: *in.OccurrenceDate,
		CreatedBy:      userID,
		Category:       in.Category,
		Address:        in.Address,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
	})
	// The connection goes back to the pool before the uploads start.
	_ = db.Close()
	if err != nil {
		return nil, upstream("create complaint", err)
	}

	uploaded := s.uploadPhotos(ctx, c.ID, photos)
	s.log.Info(ctx, "complaint created", "complaint_id", c.ID, "user_id", userID,
		"photos", len(photos), "photos_uploaded", uploaded)

	return &ComplaintCreated{Complaint: c, PhotosUploaded: uploaded}, nil
}

func (s *ComplaintService) uploadPhotos(ctx context.Context, complaintID string, photos []*Photo) int {
	var ok atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(photoUploadConcurrency)

	for _, p := range photos {
		g.Go(func() error {
			path := fmt.Sprintf("%s/%s%s", complaintID, s.newID(), photoExt(p))
			if _, err := s.storage.Upload(gctx, s.bucket, path, p.Data, p.ContentType, false); err != nil {
				s.log.Warn(ctx, "photo upload failed", "complaint_id", complaintID, "file", p.Filename, "error", err)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(ok.Load())
}

func (s *ComplaintService) List(ctx context.Context) ([]*models.Complaint, error) {
	db, err := s.db.Conn(ctx)
	if err != nil {
		return nil, upstream("db", err)
	}
	defer db.Close()

	list, err := s.repomanager.Complaints(db).List(ctx)
	if err != nil {
		return nil, upstream("list complaints", err)
	}
	return list, nil
}

// Photos returns signed URLs for every stored photo of the complaint. Ids
// that are not uuids name no complaint and are ErrorNotFound.
func (s *ComplaintService) Photos(ctx context.Context, complaintID string) ([]string, error) {
	if strings.TrimSpace(complaintID) == "" {
		return nil, invalid("complaint id is required")
	}
	id, err := uuid.Parse(complaintID)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	urls, err := storage.SignedURLs(ctx, s.storage, s.bucket, id.String()+"/", s.urlExpiry)
	if err != nil {
		return nil, upstream("list photos", err)
	}
	return urls, nil
}

// Delete removes the complaint if userID created it, then tries to remove its
// photos. Photo cleanup failures are logged only.
func (s *ComplaintService) Delete(ctx context.Context, userID, id string) error {
	db, err := s.db.Conn(ctx)
	if err != nil {
		return upstream("db", err)
	}
	defer db.Close()

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Complaints(tx)

		c, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := CheckOwnership(c.CreatedBy, userID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})

	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrForbidden):
		return err
	default:
		return upstream("delete complaint", err)
	}

	if err := storage.RemovePrefix(ctx, s.storage, s.bucket, id+"/"); err != nil {
		s.log.Warn(ctx, "failed to remove complaint photos", "complaint_id", id, "error", err)
	}

	s.log.Info(ctx, "complaint deleted", "complaint_id", id, "user_id", userID)
	return nil
}
