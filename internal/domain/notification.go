package domain

// NotificationKind задаёт оформление всплывающего уведомления.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification — пара (сообщение, вид), которую ядро передаёт рендереру уведомлений.
type Notification struct {
	Message string           `json:"message"`
	Kind    NotificationKind `json:"kind"`
}

// IsZero сообщает, что уведомления нет.
func (n Notification) IsZero() bool {
	return n.Message == ""
}
