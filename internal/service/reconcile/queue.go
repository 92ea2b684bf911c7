package reconcile

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// syncJob — один запрос к хранилищу по заказу.
type syncJob struct {
	orderID domain.OrderID
	method  string
	fields  []string
	run     func(ctx context.Context) error
	// done вызывается после выполнения run (может быть nil).
	done func(err error)
}

// syncQueue отправляет запросы одного заказа строго по очереди, а запросы
// разных заказов — независимо друг от друга. Для каждого заказа с непустой
// очередью работает ровно одна горутина.
type syncQueue struct {
	mu      sync.Mutex
	pending map[domain.OrderID][]syncJob
	// active — число работающих горутин drain; idle закрыт, пока active == 0.
	active int
	idle   chan struct{}
	exec   func(syncJob)
}

func newSyncQueue(exec func(syncJob)) *syncQueue {
	idle := make(chan struct{})
	close(idle)
	return &syncQueue{
		pending: make(map[domain.OrderID][]syncJob),
		idle:    idle,
		exec:    exec,
	}
}

func (q *syncQueue) push(job syncJob) {
	q.mu.Lock()
	jobs, running := q.pending[job.orderID]
	q.pending[job.orderID] = append(jobs, job)
	if !running {
		if q.active == 0 {
			q.idle = make(chan struct{})
		}
		q.active++
	}
	q.mu.Unlock()

	if !running {
		go q.drain(job.orderID)
	}
}

func (q *syncQueue) drain(id domain.OrderID) {
	for {
		q.mu.Lock()
		jobs := q.pending[id]
		if len(jobs) == 0 {
			delete(q.pending, id)
			q.active--
			if q.active == 0 {
				close(q.idle)
			}
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		q.pending[id] = jobs[1:]
		q.mu.Unlock()

		q.exec(job)
	}
}

// wait блокируется, пока все поставленные запросы не будут выполнены.
func (q *syncQueue) wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
