package authz

import (
	"strings"

	"paper-system/internal/entities"
)

// Principal - аутентифицированный пользователь запроса.
type Principal struct {
	ID           uint64
	Username     string
	Role         Role
	DepartmentID *uint64
}

func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p *Principal) Can(resource, action string) bool {
	return CanAct(p.Role, resource, action)
}

// CanAccessInstance - admin/manager видят всё, владелец видит своё,
// секретарь видит записи владельцев своего департамента.
func CanAccessInstance(p *Principal, ownerID uint64, ownerDepartmentID *uint64) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleAdmin, RoleManager:
		return true
	}
	if p.ID == ownerID {
		return true
	}
	if p.Role == RoleSecretary && p.DepartmentID != nil && ownerDepartmentID != nil {
		return *p.DepartmentID == *ownerDepartmentID
	}
	return false
}

type Context struct {
	Actor             *Principal
	Target            interface{}
	CurrentPermission string
}

func getAction(permission string) string {
	parts := strings.Split(permission, ":")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// canAccessPaper - область видимости статьи (владелец, департамент, admin/manager)
func canAccessPaper(ctx Context, target *entities.Paper) bool {
	return CanAccessInstance(ctx.Actor, target.UserID, target.DepartmentID)
}

// canAccessUser - себя видно всегда, правка чужих только у admin
func canAccessUser(ctx Context, target *entities.User) bool {
	if ctx.Actor.ID == target.ID {
		return true
	}
	if getAction(ctx.CurrentPermission) == ActionRead {
		return CanAccessInstance(ctx.Actor, target.ID, target.DepartmentID)
	}
	return ctx.Actor.IsAdmin()
}

// canAccessNotification - черновики видит автор и admin/secretary, правит автор или admin
func canAccessNotification(ctx Context, target *entities.Notification) bool {
	actor := ctx.Actor
	if actor.IsAdmin() || actor.ID == target.AuthorID {
		return true
	}
	if getAction(ctx.CurrentPermission) == ActionRead {
		return target.IsPublished() || actor.Role == RoleSecretary
	}
	return false
}

// ownerException - владелец удаляет свою статью и правит свою учётную запись
// без права в таблице. Допустимые поля при самоправке ограничивает сервис.
func ownerException(permission string, ctx Context) bool {
	switch target := ctx.Target.(type) {
	case *entities.Paper:
		return permission == PapersDelete && target.UserID == ctx.Actor.ID
	case *entities.User:
		return permission == UsersUpdate && target.ID == ctx.Actor.ID
	}
	return false
}

// CanDo - RBAC по таблице, затем ABAC по целевой сущности.
func CanDo(permission string, ctx Context) bool {
	ctx.CurrentPermission = permission
	if ctx.Actor == nil {
		return false
	}

	hasPermission := CanAct(ctx.Actor.Role, strings.Split(permission, ":")[0], getAction(permission))
	if !hasPermission && !ownerException(permission, ctx) {
		return false
	}

	if ctx.Target == nil {
		return true
	}

	switch target := ctx.Target.(type) {
	case *entities.Paper:
		return canAccessPaper(ctx, target)
	case *entities.User:
		return canAccessUser(ctx, target)
	case *entities.Notification:
		return canAccessNotification(ctx, target)
	}

	return true
}
