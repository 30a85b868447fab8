package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/repositories"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/types"
)

type fakeNotificationRepo struct {
	items       map[uint64]*entities.Notification
	reads       map[uint64]map[uint64]bool
	nextID      uint64
	statsAuthor *uint64
}

func newFakeNotificationRepo(items ...*entities.Notification) *fakeNotificationRepo {
	r := &fakeNotificationRepo{
		items:  map[uint64]*entities.Notification{},
		reads:  map[uint64]map[uint64]bool{},
		nextID: 100,
	}
	for _, n := range items {
		r.items[n.ID] = n
	}
	return r
}

func (r *fakeNotificationRepo) GetNotifications(_ context.Context, viewerID uint64, publishedOnly bool, _ types.Filter) ([]entities.Notification, uint64, error) {
	var out []entities.Notification
	for _, n := range r.items {
		if publishedOnly && !n.IsPublished() && n.AuthorID != viewerID {
			continue
		}
		out = append(out, *n)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeNotificationRepo) FindByID(_ context.Context, id, viewerID uint64) (*entities.Notification, error) {
	n, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *n
	cp.IsRead = r.reads[id][viewerID]
	return &cp, nil
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *entities.Notification) (*entities.Notification, error) {
	r.nextID++
	n.ID = r.nextID
	r.items[n.ID] = n
	return n, nil
}

func (r *fakeNotificationRepo) Update(_ context.Context, id uint64, cmd repositories.NotificationUpdate) error {
	n := r.items[id]
	if cmd.Title.Valid {
		n.Title = cmd.Title.String
	}
	if cmd.Content.Valid {
		n.Content = cmd.Content.String
	}
	if cmd.Type.Valid {
		n.Type = cmd.Type.String
	}
	return nil
}

func (r *fakeNotificationRepo) SetStatus(_ context.Context, id uint64, status string) error {
	r.items[id].Status = status
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id uint64) error {
	delete(r.items, id)
	return nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uint64) (bool, error) {
	if r.reads[id] == nil {
		r.reads[id] = map[uint64]bool{}
	}
	if r.reads[id][userID] {
		return false, nil
	}
	r.reads[id][userID] = true
	r.items[id].ReadCount++
	return true, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uint64) (int64, error) {
	var marked int64
	for id, n := range r.items {
		if !n.IsPublished() {
			continue
		}
		if ok, _ := r.MarkRead(context.Background(), id, userID); ok {
			marked++
		}
	}
	return marked, nil
}

func (r *fakeNotificationRepo) UnreadCount(_ context.Context, userID uint64) (uint64, error) {
	var count uint64
	for id, n := range r.items {
		if n.IsPublished() && !r.reads[id][userID] {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Stats(_ context.Context, authorID *uint64) (*entities.NotificationStats, error) {
	r.statsAuthor = authorID
	return &entities.NotificationStats{Total: len(r.items)}, nil
}

func notificationFixtures() []*entities.Notification {
	return []*entities.Notification{
		{ID: 1, Title: "Опубликовано", Type: entities.NotificationTypeSystem, Status: entities.NotificationStatusPublished, AuthorID: secretary.ID},
		{ID: 2, Title: "Черновик", Type: entities.NotificationTypeReminder, Status: entities.NotificationStatusDraft, AuthorID: secretary.ID},
	}
}

func newNotificationService(repo *fakeNotificationRepo) NotificationServiceInterface {
	return NewNotificationService(newBase(newFakeCache()), repo, zap.NewNop())
}

func TestDraftHiddenFromUsers(t *testing.T) {
	svc := newNotificationService(newFakeNotificationRepo(notificationFixtures()...))

	list, total, err := svc.GetNotifications(ctxAs(owner), types.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, "Опубликовано", list[0].Title)

	_, total, err = svc.GetNotifications(ctxAs(outsider), types.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)

	_, err = svc.FindNotification(ctxAs(owner), 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFindMarksPublishedAsRead(t *testing.T) {
	repo := newFakeNotificationRepo(notificationFixtures()...)
	svc := newNotificationService(repo)

	n, err := svc.FindNotification(ctxAs(owner), 1)
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	assert.Equal(t, 1, n.ReadCount)

	// повторное чтение не увеличивает счётчик
	n, err = svc.FindNotification(ctxAs(owner), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n.ReadCount)

	unread, err := svc.UnreadCount(ctxAs(owner))
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestCreateDefaultsToDraft(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newNotificationService(repo)

	n, err := svc.CreateNotification(ctxAs(secretary), dto.CreateNotificationDTO{
		Title: "Напоминание", Content: "Сдать отчёт", Type: entities.NotificationTypeReminder,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.NotificationStatusDraft, n.Status)
	assert.Equal(t, secretary.ID, n.AuthorID)
}

func TestUpdateOnlyByAuthorOrAdmin(t *testing.T) {
	repo := newFakeNotificationRepo(notificationFixtures()...)
	svc := newNotificationService(repo)
	payload := dto.UpdateNotificationDTO{Title: null.StringFrom("Новый заголовок")}

	_, err := svc.UpdateNotification(ctxAs(outsider), 1, payload)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	n, err := svc.UpdateNotification(ctxAs(secretary), 1, payload)
	require.NoError(t, err)
	assert.Equal(t, "Новый заголовок", n.Title)
	assert.Equal(t, entities.NotificationTypeSystem, n.Type)
}

func TestPublishAndMarkRead(t *testing.T) {
	repo := newFakeNotificationRepo(notificationFixtures()...)
	svc := newNotificationService(repo)

	err := svc.MarkRead(ctxAs(secretary), 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	n, err := svc.SetPublished(ctxAs(secretary), 2, true)
	require.NoError(t, err)
	assert.True(t, n.IsPublished())

	marked, err := svc.MarkAllRead(ctxAs(owner))
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	n, err = svc.SetPublished(ctxAs(secretary), 2, false)
	require.NoError(t, err)
	assert.Equal(t, entities.NotificationStatusDraft, n.Status)
}

func TestDeleteNotification(t *testing.T) {
	repo := newFakeNotificationRepo(notificationFixtures()...)
	svc := newNotificationService(repo)
	admin := &authz.Principal{ID: 1, Role: authz.RoleAdmin}

	// у secretary нет права delete даже на свои уведомления
	assert.ErrorIs(t, svc.DeleteNotification(ctxAs(secretary), 1), apperrors.ErrForbidden)
	require.NoError(t, svc.DeleteNotification(ctxAs(admin), 1))
	assert.NotContains(t, repo.items, uint64(1))
}

func TestNotificationStatsScope(t *testing.T) {
	repo := newFakeNotificationRepo(notificationFixtures()...)
	svc := newNotificationService(repo)

	_, err := svc.Stats(ctxAs(secretary))
	require.NoError(t, err)
	require.NotNil(t, repo.statsAuthor)
	assert.Equal(t, secretary.ID, *repo.statsAuthor)

	stats, err := svc.Stats(ctxAs(&authz.Principal{ID: 1, Role: authz.RoleAdmin}))
	require.NoError(t, err)
	assert.Nil(t, repo.statsAuthor)
	assert.Equal(t, 2, stats.Total)

	_, err = svc.Stats(ctxAs(owner))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
