package memory_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/memory"
)

func TestTimelineRepository_ChronologicalOrder(t *testing.T) {
	repo := memory.NewTimelineRepository()
	now := time.Now().UTC()

	events := []domain.TimelineEvent{
		{OrderID: "1", Type: domain.EventOrderMarkedReady, Occurred: now.Add(time.Second)},
		{OrderID: "1", Type: domain.EventOrderAccepted, Occurred: now},
		{OrderID: "2", Type: domain.EventOrderRejected, Reason: "Out of Stock", Occurred: now},
	}
	for _, event := range events {
		if err := repo.Append(event); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := repo.List("1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Type != domain.EventOrderAccepted || got[1].Type != domain.EventOrderMarkedReady {
		t.Fatalf("unexpected order: %+v", got)
	}

	empty, _ := repo.List("missing")
	if len(empty) != 0 {
		t.Fatalf("expected no events, got %d", len(empty))
	}
}
