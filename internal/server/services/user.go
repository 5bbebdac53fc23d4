package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/logging"
	"github.com/dmitrijs2005/civicdesk/internal/server/auth"
	"github.com/dmitrijs2005/civicdesk/internal/server/config"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/civicdesk/internal/server/storage"
	"github.com/google/uuid"
)

// RegisterInput is what a new account is created from.
type RegisterInput struct {
	Email     string
	Password  string
	Name      *string
	CPF       *string
	Phone     *string
	BirthDate *time.Time
}

// ProfileInput holds the editable profile fields. Absent fields are stored
// as NULL.
type ProfileInput struct {
	Name      *string
	Phone     *string
	CPF       *string
	BirthDate *time.Time
}

// LoginResult is a successful login: a token pair and the user projection.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.PublicUser
}

// UserService implements the authentication flow:
//   - Register: create users (no tokens issued)
//   - Login: verify credentials and mint an access/refresh pair
//   - RefreshToken: mint a new access token from a refresh token
//   - Logout: best-effort clearing of recorded refresh tokens
//   - GetMe / EditProfile: read and update the caller's profile
type UserService struct {
	db           DBProvider
	repomanager  repomanager.RepositoryManager
	hasher       auth.Hasher
	tokens       *auth.TokenService
	storage      storage.ObjectStorage
	bucket       string
	saltLength   int
	maxPhotoSize int64
	log          logging.Logger
	newID        func() string
	now          func() time.Time
}

func NewUserService(db DBProvider, m repomanager.RepositoryManager, hasher auth.Hasher, tokens *auth.TokenService,
	st storage.ObjectStorage, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:           db,
		repomanager:  m,
		hasher:       hasher,
		tokens:       tokens,
		storage:      st,
		bucket:       cfg.ProfileBucket,
		saltLength:   cfg.SaltLength,
		maxPhotoSize: cfg.MaxUploadSize,
		log:          log.With("module", "users"),
		newID:        uuid.NewString,
		now:          time.Now,
	}
}

// Register creates a user with a fresh salt. An email already on file is
// common.ErrConflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, invalid("email is required")
	}
	if in.Password == "" {
		return nil, invalid("password is required")
	}

	db, err := s.db.Conn(ctx)
	if err != nil {
		return nil, upstream("db", err)
	}
	defer db.Close()
	repo := s.repomanager.Users(db)

	_, err = repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, common.ErrConflict
	case !errors.Is(err, common.ErrorNotFound):
		return nil, upstream("find user", err)
	}

	salt, err := auth.GenerateSalt(s.saltLength)
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %w", common.ErrorInternal, err)
	}

	u, err := repo.Create(ctx, &models.User{
		Email:        in.Email,
		PasswordHash: s.hasher.Hash(in.Password, salt),
		Salt:         salt,
		Name:         in.Name,
		Phone:        in.Phone,
		CPF:          in.CPF,
		BirthDate:    in.BirthDate,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, upstream("create user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u.Public(), nil
}

// Login checks the password and issues a token pair. Unknown email and wrong
// password both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, common.ErrInvalidCredentials
	}

	db, err := s.db.Conn(ctx)
	if err != nil {
		return nil, upstream("db", err)
	}
	defer db.Close()

	user, err := s.repomanager.Users(db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, upstream("find user", err)
	}

	if !auth.CheckPassword(s.hasher, password, user.Salt, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: access token: %w", common.ErrorInternal, err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token: %w", common.ErrorInternal, err)
	}

	expires := s.now().Add(s.tokens.RefreshTTL())
	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, auth.Fingerprint(refresh), expires); err != nil {
		s.log.Warn(ctx, "failed to record refresh token", "user_id", user.ID, "error", err)
	}

	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user.Public()}, nil
}

// RefreshToken mints a new access token for the refresh token's subject. The
// refresh token itself is not rotated.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", common.ErrMissingToken
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	access, err := s.tokens.IssueAccessToken(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: access token: %w", common.ErrorInternal, err)
	}
	return access, nil
}

// Logout clears the recorded refresh tokens of the token's subject. It
// succeeds for any non-empty token; a token issued elsewhere stays valid until
// it expires.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return common.ErrMissingToken
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.log.Debug(ctx, "logout with unverifiable token")
		return nil
	}

	db, err := s.db.Conn(ctx)
	if err != nil {
		s.log.Warn(ctx, "logout: db unavailable", "error", err)
		return nil
	}
	defer db.Close()
	repo := s.repomanager.RefreshTokens(db)

	// Recording at login is best-effort, so an unrecorded token still clears
	// the subject's sessions.
	recorded := true
	if _, err := repo.Find(ctx, auth.Fingerprint(refreshToken)); err != nil {
		recorded = false
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "logout: failed to look up refresh token", "user_id", claims.Subject, "error", err)
		}
	}

	n, err := repo.DeleteByUser(ctx, claims.Subject)
	if err != nil {
		s.log.Warn(ctx, "logout: failed to clear refresh tokens", "user_id", claims.Subject, "error", err)
		return nil
	}

	s.log.Debug(ctx, "logout", "user_id", claims.Subject, "recorded", recorded, "cleared", n)
	return nil
}

// GetMe returns the caller's profile.
func (s *UserService) GetMe(ctx context.Context, userID string) (*models.PublicUser, error) {
	db, err := s.db.Conn(ctx)
	if err != nil {
		return nil, upstream("db", err)
	}
	defer db.Close()

	u, err := s.repomanager.Users(db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, upstream("find user", err)
	}
	return u.Public(), nil
}

// EditProfile overwrites the profile fields and, if photo is given, replaces
// the profile photo. The new photo is uploaded under a fresh name before the
// row changes; if the update fails the new object is removed again, and the
// old object is removed only after the row points at the new one.
func (s *UserService) EditProfile(ctx context.Context, userID string, in ProfileInput, photo *Photo) (*models.PublicUser, error) {
	if photo != nil {
		if err := validatePhoto(photo, s.maxPhotoSize); err != nil {
			return nil, err
		}
	}

	db, err := s.db.Conn(ctx)
	if err != nil {
		return nil, upstream("db", err)
	}
	defer db.Close()
	repo := s.repomanager.Users(db)

	current, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, upstream("find user", err)
	}

	upd := models.ProfileUpdate{
		Name:      in.Name,
		Phone:     in.Phone,
		CPF:       in.CPF,
		BirthDate: in.BirthDate,
	}

	var uploaded *storage.UploadResult
	if photo != nil {
		path := fmt.Sprintf("%s/pfp-%s%s", userID, s.newID(), photoExt(photo))
		uploaded, err = s.storage.Upload(ctx, s.bucket, path, photo.Data, photo.ContentType, false)
		if err != nil {
			return nil, upstream("upload photo", err)
		}
		upd.PhotoURL = &uploaded.PublicURL
		upd.PhotoPath = &uploaded.Path
	}

	updated, err := repo.Update(ctx, userID, upd)
	if err != nil {
		if uploaded != nil {
			if derr := s.storage.Delete(ctx, s.bucket, uploaded.Path); derr != nil {
				s.log.Error(ctx, "failed to remove orphaned photo", "path", uploaded.Path, "error", derr)
			}
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, upstream("update user", err)
	}

	if uploaded != nil && current.PhotoPath != nil && *current.PhotoPath != "" && *current.PhotoPath != uploaded.Path {
		if err := s.storage.Delete(ctx, s.bucket, *current.PhotoPath); err != nil {
			s.log.Warn(ctx, "failed to delete previous photo", "path", *current.PhotoPath, "error", err)
		}
	}

	return updated.Public(), nil
}
