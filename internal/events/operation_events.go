package events

const OperationPerformed = "operation.performed"

const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionSubmit  = "submit"
	ActionAudit   = "audit"
	ActionUpload  = "upload"
	ActionPublish = "publish"
	ActionLogin   = "login"
	ActionLogout  = "logout"
	ActionCleanup = "cleanup"
)

const (
	ResourcePaper        = "paper"
	ResourceUser         = "user"
	ResourceDepartment   = "department"
	ResourceNotification = "notification"
	ResourceSystem       = "system"
	ResourceAuth         = "auth"
)

// OperationEvent - изменение данных, которое попадает в журнал операций.
type OperationEvent struct {
	UserID       *uint64
	Action       string
	ResourceType string
	ResourceID   *uint64
	Description  string
	IP           string
	UserAgent    string
}

// Name - реализуем интерфейс eventbus.Event
func (e OperationEvent) Name() string {
	return OperationPerformed
}
