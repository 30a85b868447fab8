package authz

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleSecretary Role = "secretary"
	RoleUser      Role = "user"
)

const (
	ResourcePapers        = "papers"
	ResourceUsers         = "users"
	ResourceNotifications = "notifications"
	ResourceStatistics    = "statistics"
	ResourceSystem        = "system"
)

const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionAudit  = "audit"
	ActionExport = "export"
)

const (
	// Статьи (Papers)
	PapersCreate = "papers:create"
	PapersRead   = "papers:read"
	PapersUpdate = "papers:update"
	PapersDelete = "papers:delete"
	PapersAudit  = "papers:audit"

	// Пользователи (Users)
	UsersCreate = "users:create"
	UsersRead   = "users:read"
	UsersUpdate = "users:update"
	UsersDelete = "users:delete"

	// Уведомления (Notifications)
	NotificationsCreate = "notifications:create"
	NotificationsRead   = "notifications:read"
	NotificationsUpdate = "notifications:update"
	NotificationsDelete = "notifications:delete"

	// Статистика (Statistics)
	StatisticsRead   = "statistics:read"
	StatisticsExport = "statistics:export"

	// Система (System)
	SystemRead   = "system:read"
	SystemUpdate = "system:update"
)

var allPermissions = []string{
	PapersCreate, PapersRead, PapersUpdate, PapersDelete, PapersAudit,
	UsersCreate, UsersRead, UsersUpdate, UsersDelete,
	NotificationsCreate, NotificationsRead, NotificationsUpdate, NotificationsDelete,
	StatisticsRead, StatisticsExport,
	SystemRead, SystemUpdate,
}

// capabilities - статическая таблица "роль -> набор прав".
var capabilities = map[Role]map[string]bool{
	RoleAdmin: toSet(allPermissions...),
	RoleManager: toSet(
		PapersCreate, PapersRead, PapersUpdate, PapersAudit,
		UsersRead,
		NotificationsRead,
		StatisticsRead, StatisticsExport,
		SystemRead,
	),
	RoleSecretary: toSet(
		PapersRead,
		UsersRead,
		NotificationsCreate, NotificationsRead, NotificationsUpdate,
		StatisticsRead, StatisticsExport,
		SystemRead,
	),
	RoleUser: toSet(
		PapersCreate, PapersRead, PapersUpdate,
		UsersRead,
		NotificationsRead,
		StatisticsRead,
	),
}

func toSet(perms ...string) map[string]bool {
	set := make(map[string]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

func Permission(resource, action string) string {
	return resource + ":" + action
}

func IsValidRole(role string) bool {
	_, ok := capabilities[Role(role)]
	return ok
}

// PermissionsFor возвращает копию набора прав роли; для неизвестной роли - пустой набор.
func PermissionsFor(role Role) map[string]bool {
	src := capabilities[role]
	out := make(map[string]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// CanAct - чистая проверка по таблице.
func CanAct(role Role, resource, action string) bool {
	return capabilities[role][Permission(resource, action)]
}
