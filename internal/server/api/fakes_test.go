package api

import (
	"context"
	"time"

	"github.com/dmitrijs2005/civicdesk/internal/server/auth"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
	"github.com/dmitrijs2005/civicdesk/internal/server/services"
)

type fakeUsers struct {
	register    func(services.RegisterInput) (*models.PublicUser, error)
	login       func(email, password string) (*services.LoginResult, error)
	refresh     func(token string) (string, error)
	logout      func(token string) error
	getMe       func(userID string) (*models.PublicUser, error)
	editProfile func(userID string, in services.ProfileInput, photo *services.Photo) (*models.PublicUser, error)
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*models.PublicUser, error) {
	return f.register(in)
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*services.LoginResult, error) {
	return f.login(email, password)
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (string, error) {
	return f.refresh(token)
}

func (f *fakeUsers) Logout(_ context.Context, token string) error { return f.logout(token) }

func (f *fakeUsers) GetMe(_ context.Context, userID string) (*models.PublicUser, error) {
	return f.getMe(userID)
}

func (f *fakeUsers) EditProfile(_ context.Context, userID string, in services.ProfileInput, photo *services.Photo) (*models.PublicUser, error) {
	return f.editProfile(userID, in, photo)
}

type fakeEvents struct {
	create func(userID string, in services.EventInput) (*models.Event, error)
	list   func() ([]*models.Event, error)
	delete func(userID, id string) error
}

func (f *fakeEvents) Create(_ context.Context, userID string, in services.EventInput) (*models.Event, error) {
	return f.create(userID, in)
}

func (f *fakeEvents) List(context.Context) ([]*models.Event, error) { return f.list() }

func (f *fakeEvents) Delete(_ context.Context, userID, id string) error { return f.delete(userID, id) }

type fakeComplaints struct {
	create func(userID string, in services.ComplaintInput, photos []*services.Photo) (*services.ComplaintCreated, error)
	list   func() ([]*models.Complaint, error)
	photos func(id string) ([]string, error)
	delete func(userID, id string) error
}

func (f *fakeComplaints) Create(_ context.Context, userID string, in services.ComplaintInput, photos []*services.Photo) (*services.ComplaintCreated, error) {
	return f.create(userID, in, photos)
}

func (f *fakeComplaints) List(context.Context) ([]*models.Complaint, error) { return f.list() }

func (f *fakeComplaints) Photos(_ context.Context, id string) ([]string, error) { return f.photos(id) }

func (f *fakeComplaints) Delete(_ context.Context, userID, id string) error {
	return f.delete(userID, id)
}

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }

func testTokens() *auth.TokenService {
	return auth.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}
