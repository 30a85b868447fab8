package events

const (
	PaperAudited          = "paper.audited"
	NotificationPublished = "notification.published"
)

// PaperAuditedEvent - одна проверка или пакет; владельцев определяет подписчик.
type PaperAuditedEvent struct {
	PaperIDs []uint64
	Status   string
	Comment  string
}

func (e PaperAuditedEvent) Name() string { return PaperAudited }

type NotificationPublishedEvent struct {
	NotificationID uint64
	Title          string
	Type           string
}

func (e NotificationPublishedEvent) Name() string { return NotificationPublished }
