package services

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/internal/dto"
	"paper-system/internal/entities"
	apperrors "paper-system/pkg/errors"
)

var (
	deptA = uint64(1)
	deptB = uint64(2)

	owner     = &authz.Principal{ID: 10, Role: authz.RoleUser, DepartmentID: &deptA}
	stranger  = &authz.Principal{ID: 11, Role: authz.RoleUser, DepartmentID: &deptA}
	secretary = &authz.Principal{ID: 12, Role: authz.RoleSecretary, DepartmentID: &deptA}
	outsider  = &authz.Principal{ID: 13, Role: authz.RoleSecretary, DepartmentID: &deptB}
	manager   = &authz.Principal{ID: 14, Role: authz.RoleManager}
)

func paperFixture(status string) *entities.Paper {
	return &entities.Paper{ID: 1, Title: "Статья", Status: status, UserID: owner.ID, DepartmentID: &deptA}
}

func newPaperService(repo *fakePaperRepo, tx *fakeTxManager) PaperServiceInterface {
	return NewPaperService(newBase(newFakeCache()), repo, tx, nil, zap.NewNop())
}

func TestFindPaperRespectsScope(t *testing.T) {
	svc := newPaperService(newFakePaperRepo(paperFixture(entities.PaperStatusPending)), &fakeTxManager{})

	for _, p := range []*authz.Principal{owner, secretary, manager} {
		_, err := svc.FindPaper(ctxAs(p), 1)
		assert.NoError(t, err, "role %s", p.Role)
	}
	for _, p := range []*authz.Principal{stranger, outsider} {
		_, err := svc.FindPaper(ctxAs(p), 1)
		assert.ErrorIs(t, err, apperrors.ErrForbidden, "user %d", p.ID)
	}

	_, err := svc.FindPaper(ctxAs(owner), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreatePaperDefaultsToPending(t *testing.T) {
	repo := newFakePaperRepo()
	svc := newPaperService(repo, &fakeTxManager{})

	paper, err := svc.CreatePaper(ctxAs(owner), dto.CreatePaperDTO{
		Title:       "Новая",
		Authors:     []entities.Author{{Name: "А. Иванов"}},
		FirstAuthor: "А. Иванов",
		JournalName: "Журнал",
		Type:        entities.PaperTypeJournal,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.PaperStatusPending, paper.Status)
	assert.Equal(t, owner.ID, paper.UserID)

	bad := "15.01.2024"
	_, err = svc.CreatePaper(ctxAs(owner), dto.CreatePaperDTO{Title: "x", PublishDate: &bad, Type: entities.PaperTypeJournal})
	_, code, _ := apperrors.Classify(err)
	assert.Equal(t, apperrors.CodeValidation, code)
}

func TestAuditOnlyFromPending(t *testing.T) {
	repo := newFakePaperRepo(paperFixture(entities.PaperStatusDraft))
	svc := newPaperService(repo, &fakeTxManager{})
	payload := dto.AuditPaperDTO{Status: entities.PaperStatusApproved}

	_, err := svc.AuditPaper(ctxAs(manager), 1, payload)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	stored, _ := repo.FindByID(ctxAs(manager), 1)
	assert.Equal(t, entities.PaperStatusDraft, stored.Status)

	_, err = svc.AuditPaper(ctxAs(secretary), 1, payload)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.SubmitPaper(ctxAs(stranger), 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = svc.SubmitPaper(ctxAs(owner), 1)
	require.NoError(t, err)

	audited, err := svc.AuditPaper(ctxAs(manager), 1, payload)
	require.NoError(t, err)
	assert.Equal(t, entities.PaperStatusApproved, audited.Status)
	assert.Equal(t, manager.ID, *audited.AuditorID)
}

func TestDeletePaperOrder(t *testing.T) {
	repo := newFakePaperRepo(paperFixture(entities.PaperStatusApproved))
	svc := newPaperService(repo, &fakeTxManager{})

	// чужая статья: сначала доступ
	assert.ErrorIs(t, svc.DeletePaper(ctxAs(stranger), 1), apperrors.ErrForbidden)
	// одобренную нельзя удалить даже владельцу
	assert.ErrorIs(t, svc.DeletePaper(ctxAs(owner), 1), apperrors.ErrInvalidState)
	// секретарь видит статью, но права удаления у него нет
	repo.papers[1].Status = entities.PaperStatusRejected
	assert.ErrorIs(t, svc.DeletePaper(ctxAs(secretary), 1), apperrors.ErrForbidden)

	require.NoError(t, svc.DeletePaper(ctxAs(owner), 1))
	assert.Equal(t, []uint64{1}, repo.deleted)
}

func TestUpdateApprovedPaperIsInvalidState(t *testing.T) {
	svc := newPaperService(newFakePaperRepo(paperFixture(entities.PaperStatusApproved)), &fakeTxManager{})

	_, err := svc.UpdatePaper(ctxAs(owner), 1, dto.UpdatePaperDTO{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestUpdatePaperPublishDate(t *testing.T) {
	repo := newFakePaperRepo(paperFixture(entities.PaperStatusDraft))
	svc := newPaperService(repo, &fakeTxManager{})

	_, err := svc.UpdatePaper(ctxAs(owner), 1, dto.UpdatePaperDTO{PublishDate: null.StringFrom("2024-01-15")})
	require.NoError(t, err)
	assert.True(t, repo.lastUpdate.PublishDate.Valid)
	assert.False(t, repo.lastUpdate.ClearPublishDate)

	// пустая строка очищает дату
	_, err = svc.UpdatePaper(ctxAs(owner), 1, dto.UpdatePaperDTO{PublishDate: null.StringFrom("")})
	require.NoError(t, err)
	assert.True(t, repo.lastUpdate.ClearPublishDate)

	_, err = svc.UpdatePaper(ctxAs(owner), 1, dto.UpdatePaperDTO{Title: null.StringFrom("Другая")})
	require.NoError(t, err)
	assert.False(t, repo.lastUpdate.ClearPublishDate)
	assert.False(t, repo.lastUpdate.PublishDate.Valid)
}

func TestBatchAuditIsAtomic(t *testing.T) {
	repo := newFakePaperRepo()
	repo.batchErr = apperrors.NewInvalidStateError("статья 2 не на проверке")
	tx := &fakeTxManager{}
	svc := newPaperService(repo, tx)

	_, err := svc.BatchAudit(ctxAs(manager), dto.BatchAuditDTO{IDs: []uint64{1, 2, 2}, Status: entities.PaperStatusRejected})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, 1, tx.rollbacks)
	assert.Equal(t, 0, tx.commits)

	repo.batchErr = nil
	n, err := svc.BatchAudit(ctxAs(manager), dto.BatchAuditDTO{IDs: []uint64{1, 2, 2}, Status: entities.PaperStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, tx.commits)

	repo.batchCalled = false
	_, err = svc.BatchAudit(ctxAs(owner), dto.BatchAuditDTO{IDs: []uint64{1}, Status: entities.PaperStatusApproved})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.False(t, repo.batchCalled)
}
