package websocket

import "time"

const (
	MessagePaperAudited          = "paper_audited"
	MessageNotificationPublished = "notification_published"
)

// Envelope - конверт сообщения, по Type фронтенд решает, что делать с Payload.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type PaperAuditedPayload struct {
	PaperID uint64 `json:"paper_id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

type NotificationPayload struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}
