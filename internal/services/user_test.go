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

func userFixtures() *fakeUserRepo {
	return newFakeUserRepo(
		&entities.User{ID: owner.ID, Username: "researcher1", Name: "Старое имя", Role: string(authz.RoleUser),
			DepartmentID: &deptA, Status: entities.UserStatusActive},
		&entities.User{ID: stranger.ID, Username: "researcher2", Name: "Коллега", Role: string(authz.RoleUser),
			DepartmentID: &deptA, Status: entities.UserStatusActive},
	)
}

func newUserService(repo *fakeUserRepo) UserServiceInterface {
	return NewUserService(newBase(newFakeCache()), repo, nil, zap.NewNop())
}

func TestUserUpdatesOwnProfile(t *testing.T) {
	repo := userFixtures()
	svc := newUserService(repo)

	user, err := svc.UpdateUser(ctxAs(owner), owner.ID, dto.UpdateUserDTO{
		Name:  null.StringFrom("Новое имя"),
		Phone: null.StringFrom("123"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Новое имя", user.Name)
	assert.Equal(t, "123", user.Phone)
}

func TestUserCannotUpdateOthers(t *testing.T) {
	repo := userFixtures()
	svc := newUserService(repo)

	_, err := svc.UpdateUser(ctxAs(owner), stranger.ID, dto.UpdateUserDTO{Name: null.StringFrom("Чужое")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, "Коллега", repo.users[stranger.ID].Name)

	// secretary видит коллег по департаменту, но не правит их
	_, err = svc.UpdateUser(ctxAs(secretary), stranger.ID, dto.UpdateUserDTO{Name: null.StringFrom("Чужое")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserCannotRaiseOwnRole(t *testing.T) {
	repo := userFixtures()
	svc := newUserService(repo)

	for name, payload := range map[string]dto.UpdateUserDTO{
		"role":          {Role: null.StringFrom(string(authz.RoleAdmin))},
		"status":        {Status: null.StringFrom(entities.UserStatusActive)},
		"department_id": {DepartmentID: null.Uint64From(deptB)},
	} {
		_, err := svc.UpdateUser(ctxAs(owner), owner.ID, payload)
		_, code, _ := apperrors.Classify(err)
		assert.Equal(t, apperrors.CodeValidation, code, name)
	}
	assert.Equal(t, string(authz.RoleUser), repo.users[owner.ID].Role)
}

func TestAdminUpdatesAnyUser(t *testing.T) {
	repo := userFixtures()
	svc := newUserService(repo)
	admin := &authz.Principal{ID: 1, Role: authz.RoleAdmin}

	user, err := svc.UpdateUser(ctxAs(admin), stranger.ID, dto.UpdateUserDTO{Role: null.StringFrom(string(authz.RoleSecretary))})
	require.NoError(t, err)
	assert.Equal(t, string(authz.RoleSecretary), user.Role)

	_, err = svc.UpdateUser(ctxAs(admin), 99, dto.UpdateUserDTO{Name: null.StringFrom("x")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
