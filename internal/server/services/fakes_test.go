package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/dbx"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/complaints"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/events"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/users"
	"github.com/dmitrijs2005/civicdesk/internal/server/storage"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// --- db ---

type fakeDB struct {
	db  *sqlx.DB
	err error
}

func (f *fakeDB) Conn(ctx context.Context) (*sqlx.Conn, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.db.Connx(ctx)
}

func newFakeDB(t *testing.T) (*fakeDB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = raw.Close() })
	return &fakeDB{db: sqlx.NewDb(raw, "sqlmock")}, mock
}

// --- repositories ---

type fakeUsersRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	seq       int
	findErr   error
	createErr error
	updateErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrConflict
		}
	}
	f.seq++
	c := *u
	c.ID = fmt.Sprintf("u-%d", f.seq)
	c.CreatedAt = time.Now()
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeUsersRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) Update(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Name, u.Phone, u.CPF, u.BirthDate = upd.Name, upd.Phone, upd.CPF, upd.BirthDate
	if upd.PhotoURL != nil {
		u.PhotoURL = upd.PhotoURL
	}
	if upd.PhotoPath != nil {
		u.PhotoPath = upd.PhotoPath
	}
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeRefreshRepo struct {
	mu        sync.Mutex
	created   map[string]string // hash -> user
	expires   time.Time
	createErr error
	deleted   []string
	deleteErr error
	finds     []string
	findErr   error
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{created: map[string]string{}}
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created[tokenHash] = userID
	f.expires = expiresAt
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds = append(f.finds, tokenHash)
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.created[tokenHash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.RefreshToken{UserID: u, TokenHash: tokenHash}, nil
}

func (f *fakeRefreshRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var n int64
	for h, u := range f.created {
		if u == userID {
			delete(f.created, h)
			n++
		}
	}
	return n, nil
}

type fakeEventsRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.Event
	seq       int
	err       error
	deleteErr error
}

func newFakeEventsRepo() *fakeEventsRepo { return &fakeEventsRepo{byID: map[string]*models.Event{}} }

func (f *fakeEventsRepo) Create(_ context.Context, e *models.Event) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	e.ID = fmt.Sprintf("e-%d", f.seq)
	c := *e
	f.byID[e.ID] = &c
	return e, nil
}

func (f *fakeEventsRepo) List(context.Context) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Event{}
	for _, e := range f.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeEventsRepo) FindByID(_ context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (f *fakeEventsRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeComplaintsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Complaint
	seq  int
	err  error
}

func newFakeComplaintsRepo() *fakeComplaintsRepo {
	return &fakeComplaintsRepo{byID: map[string]*models.Complaint{}}
}

func (f *fakeComplaintsRepo) Create(_ context.Context, c *models.Complaint) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	c.ID = uuid.NewString()
	cp := *c
	f.byID[c.ID] = &cp
	return c, nil
}

func (f *fakeComplaintsRepo) List(context.Context) ([]*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Complaint{}
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeComplaintsRepo) FindByID(_ context.Context, id string) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeComplaintsRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRepoManager struct {
	users      *fakeUsersRepo
	refresh    *fakeRefreshRepo
	events     *fakeEventsRepo
	complaints *fakeComplaintsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:      newFakeUsersRepo(),
		refresh:    newFakeRefreshRepo(),
		events:     newFakeEventsRepo(),
		complaints: newFakeComplaintsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Events(dbx.DBTX) events.Repository               { return m.events }
func (m *fakeRepoManager) Complaints(dbx.DBTX) complaints.Repository       { return m.complaints }

// --- storage ---

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr func(path string) error
	deleteErr func(path string) error
	listErr   error
	deletes   []string
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string][]byte{}} }

func (f *fakeStorage) Upload(_ context.Context, bucket, path string, data []byte, _ string, upsert bool) (*storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		if err := f.uploadErr(path); err != nil {
			return nil, err
		}
	}
	k := bucket + "/" + path
	if _, ok := f.objects[k]; ok && !upsert {
		return nil, common.ErrConflict
	}
	f.objects[k] = data
	return &storage.UploadResult{Path: path, PublicURL: "http://s3/" + k}, nil
}

func (f *fakeStorage) Delete(_ context.Context, bucket, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, path)
	if f.deleteErr != nil {
		if err := f.deleteErr(path); err != nil {
			return err
		}
	}
	delete(f.objects, bucket+"/"+path)
	return nil
}

func (f *fakeStorage) List(_ context.Context, bucket, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	prefix = storage.NormalizePath(prefix)
	var keys []string
	for k := range f.objects {
		if p, ok := strings.CutPrefix(k, bucket+"/"); ok && strings.HasPrefix(p, prefix) {
			keys = append(keys, p)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStorage) SignedURL(_ context.Context, bucket, path string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("http://s3/%s/%s?X-Amz-Expires=%d", bucket, path, int(expiry.Seconds())), nil
}

func (f *fakeStorage) PublicURL(bucket, path string) string {
	return "http://s3/" + bucket + "/" + path
}

func (f *fakeStorage) keys(bucket string) []string {
	keys, _ := f.List(context.Background(), bucket, "")
	return keys
}

func failAlways(string) error { return errors.New("storage down") }
