package notify

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

func TestRecorder_KeepsLastEntriesNewestFirst(t *testing.T) {
	rec := NewRecorder(2)

	rec.Notify(domain.Notification{Message: "one", Kind: domain.NotificationSuccess})
	rec.Notify(domain.Notification{Message: "two", Kind: domain.NotificationSuccess})
	rec.Notify(domain.Notification{Message: "three", Kind: domain.NotificationError})

	recent := rec.Recent()
	require.Len(t, recent, 2)
	require.Equal(t, "three", recent[0].Message)
	require.Equal(t, "two", recent[1].Message)
	require.Equal(t, 2, rec.Len())
}

func TestLogNotifier_LevelByKind(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	n := NewLogNotifier(logger.WithField("component", "test"))
	n.Notify(domain.Notification{Message: "Order #1 Cancelled (Empty)", Kind: domain.NotificationError})

	require.Contains(t, buf.String(), "level=warning")
	require.Contains(t, buf.String(), "Order #1 Cancelled (Empty)")
}

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	first := NewRecorder(5)
	second := NewRecorder(5)

	Multi{first, nil, second}.Notify(domain.Notification{Message: "Item removed from order", Kind: domain.NotificationSuccess})

	require.Equal(t, 1, first.Len())
	require.Equal(t, 1, second.Len())
	require.Equal(t, "Item removed from order", second.Recent()[0].Message)
}
