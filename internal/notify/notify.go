// Package notify содержит реализации domain.Notifier.
package notify

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

const defaultHistory = 50

// LogNotifier пишет уведомления в лог.
type LogNotifier struct {
	logger *log.Entry
}

// NewLogNotifier создаёт notifier поверх logrus.
func NewLogNotifier(logger *log.Entry) *LogNotifier {
	if logger == nil {
		logger = log.WithField("component", "notifier")
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(notification domain.Notification) {
	entry := n.logger.WithField("kind", notification.Kind)
	if notification.Kind == domain.NotificationError {
		entry.Warn(notification.Message)
		return
	}
	entry.Info(notification.Message)
}

// Entry — уведомление с моментом показа.
type Entry struct {
	domain.Notification
	At time.Time `json:"at"`
}

// Recorder хранит последние уведомления для ленты на дашборде.
type Recorder struct {
	mu      sync.RWMutex
	limit   int
	entries []Entry
	now     func() time.Time
}

// NewRecorder создаёт Recorder на limit последних уведомлений.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = defaultHistory
	}
	return &Recorder{limit: limit, now: time.Now}
}

func (r *Recorder) Notify(notification domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, Entry{Notification: notification, At: r.now().UTC()})
	if over := len(r.entries) - r.limit; over > 0 {
		r.entries = append([]Entry(nil), r.entries[over:]...)
	}
}

// Recent возвращает уведомления от новых к старым.
func (r *Recorder) Recent() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return out
}

// Len возвращает число сохранённых уведомлений.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Multi рассылает уведомление всем вложенным notifier.
type Multi []domain.Notifier

func (m Multi) Notify(notification domain.Notification) {
	for _, n := range m {
		if n != nil {
			n.Notify(notification)
		}
	}
}

var (
	_ domain.Notifier = (*LogNotifier)(nil)
	_ domain.Notifier = (*Recorder)(nil)
	_ domain.Notifier = Multi(nil)
)
