package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paper-system/internal/entities"
)

func u64(v uint64) *uint64 { return &v }

func TestCanAct_CapabilityTable(t *testing.T) {
	for _, perm := range allPermissions {
		assert.True(t, capabilities[RoleAdmin][perm], "admin должен иметь %s", perm)
	}

	userAllowed := []string{PapersCreate, PapersRead, PapersUpdate, UsersRead, NotificationsRead, StatisticsRead}
	assert.Len(t, capabilities[RoleUser], len(userAllowed))
	for _, perm := range userAllowed {
		assert.True(t, capabilities[RoleUser][perm], perm)
	}

	assert.True(t, CanAct(RoleManager, ResourcePapers, ActionAudit))
	assert.False(t, CanAct(RoleSecretary, ResourcePapers, ActionAudit))
	assert.False(t, CanAct(RoleUser, ResourcePapers, ActionDelete))
	assert.False(t, CanAct(RoleUser, ResourceStatistics, ActionExport))
	assert.True(t, CanAct(RoleSecretary, ResourceNotifications, ActionCreate))
	assert.False(t, CanAct(Role("guest"), ResourcePapers, ActionRead))
}

func TestCanAccessInstance(t *testing.T) {
	d1, d2 := u64(1), u64(2)

	cases := []struct {
		name      string
		principal Principal
		owner     uint64
		ownerDept *uint64
		want      bool
	}{
		{"admin видит всё", Principal{ID: 1, Role: RoleAdmin}, 99, d2, true},
		{"manager видит всё", Principal{ID: 2, Role: RoleManager}, 99, nil, true},
		{"владелец", Principal{ID: 5, Role: RoleUser}, 5, nil, true},
		{"чужая статья", Principal{ID: 5, Role: RoleUser, DepartmentID: d1}, 6, d1, false},
		{"секретарь своего департамента", Principal{ID: 3, Role: RoleSecretary, DepartmentID: d1}, 6, d1, true},
		{"секретарь чужого департамента", Principal{ID: 3, Role: RoleSecretary, DepartmentID: d1}, 6, d2, false},
		{"секретарь без департамента", Principal{ID: 3, Role: RoleSecretary}, 6, d1, false},
		{"владелец без департамента", Principal{ID: 3, Role: RoleSecretary, DepartmentID: d1}, 6, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.principal
			assert.Equal(t, tc.want, CanAccessInstance(&p, tc.owner, tc.ownerDept))
		})
	}
	assert.False(t, CanAccessInstance(nil, 1, nil))
}

func TestCanDo_PaperDeleteByOwner(t *testing.T) {
	owner := &Principal{ID: 10, Role: RoleUser}
	other := &Principal{ID: 11, Role: RoleUser}
	manager := &Principal{ID: 12, Role: RoleManager}
	admin := &Principal{ID: 13, Role: RoleAdmin}
	paper := &entities.Paper{ID: 1, UserID: 10}

	assert.True(t, CanDo(PapersDelete, Context{Actor: owner, Target: paper}))
	assert.False(t, CanDo(PapersDelete, Context{Actor: other, Target: paper}))
	assert.False(t, CanDo(PapersDelete, Context{Actor: manager, Target: paper}))
	assert.True(t, CanDo(PapersDelete, Context{Actor: admin, Target: paper}))
}

func TestCanDo_PaperUpdateFollowsInstanceAccess(t *testing.T) {
	paper := &entities.Paper{ID: 1, UserID: 10, DepartmentID: u64(1)}

	assert.True(t, CanDo(PapersUpdate, Context{Actor: &Principal{ID: 10, Role: RoleUser}, Target: paper}))
	assert.True(t, CanDo(PapersUpdate, Context{Actor: &Principal{ID: 2, Role: RoleManager}, Target: paper}))
	assert.False(t, CanDo(PapersUpdate, Context{Actor: &Principal{ID: 11, Role: RoleUser}, Target: paper}))
	// у секретаря нет papers:update даже в своём департаменте
	assert.False(t, CanDo(PapersUpdate, Context{Actor: &Principal{ID: 3, Role: RoleSecretary, DepartmentID: u64(1)}, Target: paper}))
}

func TestCanDo_Notifications(t *testing.T) {
	draft := &entities.Notification{ID: 1, AuthorID: 3, Status: entities.NotificationStatusDraft}
	published := &entities.Notification{ID: 2, AuthorID: 3, Status: entities.NotificationStatusPublished}
	author := &Principal{ID: 3, Role: RoleSecretary}
	otherSecretary := &Principal{ID: 4, Role: RoleSecretary}
	reader := &Principal{ID: 5, Role: RoleUser}

	assert.True(t, CanDo(NotificationsUpdate, Context{Actor: author, Target: draft}))
	assert.False(t, CanDo(NotificationsUpdate, Context{Actor: otherSecretary, Target: draft}))
	assert.True(t, CanDo(NotificationsRead, Context{Actor: otherSecretary, Target: draft}))
	assert.False(t, CanDo(NotificationsRead, Context{Actor: reader, Target: draft}))
	assert.True(t, CanDo(NotificationsRead, Context{Actor: reader, Target: published}))
}

func TestCanDo_Users(t *testing.T) {
	self := &entities.User{ID: 5, DepartmentID: u64(1)}
	colleague := &entities.User{ID: 6, DepartmentID: u64(1)}

	user := &Principal{ID: 5, Role: RoleUser, DepartmentID: u64(1)}
	secretary := &Principal{ID: 3, Role: RoleSecretary, DepartmentID: u64(1)}

	assert.True(t, CanDo(UsersRead, Context{Actor: user, Target: self}))
	assert.False(t, CanDo(UsersRead, Context{Actor: user, Target: colleague}))
	assert.True(t, CanDo(UsersRead, Context{Actor: secretary, Target: colleague}))
	assert.False(t, CanDo(UsersUpdate, Context{Actor: secretary, Target: colleague}))
	assert.True(t, CanDo(UsersUpdate, Context{Actor: user, Target: self}))
	assert.False(t, CanDo(UsersUpdate, Context{Actor: user, Target: colleague}))
	assert.False(t, CanDo(UsersDelete, Context{Actor: user, Target: self}))
	assert.False(t, CanDo(UsersRead, Context{Actor: nil, Target: colleague}))
}
