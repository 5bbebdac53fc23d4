package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/dbx"
	"github.com/dmitrijs2005/civicdesk/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventFixture(t *testing.T) (*EventService, *fakeRepoManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newFakeDB(t)
	repos := newFakeRepoManager()
	return NewEventService(db, repos, logging.Nop()), repos, mock
}

func ptr[T any](v T) *T { return &v }

func TestEventService_Create(t *testing.T) {
	svc, repos, _ := newEventFixture(t)
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	e, err := svc.Create(context.Background(), "u1", EventInput{
		Description: "Cleanup",
		StartDate:   &start,
		EndDate:     ptr(start.Add(2 * time.Hour)),
		Category:    ptr("environment"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "u1", e.CreatedBy)
	assert.Contains(t, repos.events.byID, e.ID)
}

func TestEventService_Create_Validation(t *testing.T) {
	svc, repos, _ := newEventFixture(t)
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   EventInput
	}{
		{"missing description", EventInput{StartDate: &start}},
		{"blank description", EventInput{Description: "  ", StartDate: &start}},
		{"missing start", EventInput{Description: "x"}},
		{"end before start", EventInput{Description: "x", StartDate: &start, EndDate: ptr(start.Add(-time.Minute))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u1", tt.in)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
	assert.Empty(t, repos.events.byID)
}

func TestEventService_List(t *testing.T) {
	svc, repos, _ := newEventFixture(t)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	late := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	early := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Create(ctx, "u1", EventInput{Description: "late", StartDate: &late})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u1", EventInput{Description: "early", StartDate: &early})
	require.NoError(t, err)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].Description)

	repos.events.err = errors.New("boom")
	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, common.ErrUpstream)
}

func TestEventService_Delete_Owner(t *testing.T) {
	svc, repos, mock := newEventFixture(t)
	start := time.Now()
	e, err := svc.Create(context.Background(), "u1", EventInput{Description: "x", StartDate: &start})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), "u1", e.ID))
	assert.NotContains(t, repos.events.byID, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_Delete_NonOwnerIsForbidden(t *testing.T) {
	svc, repos, mock := newEventFixture(t)
	start := time.Now()
	e, err := svc.Create(context.Background(), "u1", EventInput{Description: "x", StartDate: &start})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = svc.Delete(context.Background(), "u2", e.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Contains(t, repos.events.byID, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_Delete_NotFound(t *testing.T) {
	svc, _, mock := newEventFixture(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_Delete_StoreFailure(t *testing.T) {
	svc, repos, mock := newEventFixture(t)
	start := time.Now()
	e, err := svc.Create(context.Background(), "u1", EventInput{Description: "x", StartDate: &start})
	require.NoError(t, err)
	repos.events.deleteErr = errors.New("lock timeout")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = svc.Delete(context.Background(), "u1", e.ID)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_Delete_BeginFailure(t *testing.T) {
	svc, _, mock := newEventFixture(t)
	mock.ExpectBegin().WillReturnError(errors.New("conn closed"))

	err := svc.Delete(context.Background(), "u1", "e-1")
	assert.ErrorIs(t, err, common.ErrUpstream)
}

func TestEventService_List_ConnectionWaitTimesOut(t *testing.T) {
	svc, _, _ := newEventFixture(t)
	svc.db = &fakeDB{err: fmt.Errorf("%w after 10s", dbx.ErrAcquireTimeout)}

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.ErrorIs(t, err, dbx.ErrAcquireTimeout)
}
