package reconcile

import "github.com/vladislavdragonenkov/backoffice/internal/domain"

// localState — учёт несинхронизированных локальных изменений одного заказа.
// Все поля защищены Reconciler.mu.
type localState struct {
	pending     int
	patchFailed bool
	deleting    bool
	deleted     bool
	// settled — номер Refresh, во время которого завершился последний запрос.
	settled uint64
}

// keepsLocal сообщает, что ответ Refresh с номером seq может быть старее кэша.
func (st *localState) keepsLocal(seq uint64) bool {
	return st.pending > 0 || st.patchFailed || st.settled >= seq
}

func (r *Reconciler) trackLocked(id domain.OrderID, deleting bool) {
	st := r.local[id]
	if st == nil {
		st = &localState{}
		r.local[id] = st
	}
	st.pending++
	if deleting {
		st.deleting = true
		st.deleted = false
	}
}

func (r *Reconciler) settleLocked(id domain.OrderID, err error, isDelete bool) {
	st := r.local[id]
	if st == nil {
		return
	}
	if st.pending > 0 {
		st.pending--
	}
	switch {
	case isDelete && err == nil:
		st.deleting = false
		st.deleted = true
		st.patchFailed = false
	case isDelete:
		st.deleting = false
	case err != nil:
		// Неотправленное изменение остаётся только локально.
		st.patchFailed = true
	}
	if st.pending == 0 {
		st.settled = r.refreshSeq
	}
}

// mergeFetchedLocked объединяет ответ GET /orders с кэшем: записи с
// несинхронизированными изменениями остаются локальными, удаляемые не
// возвращаются. Возвращает итоговый список и число сохранённых локальных решений.
func (r *Reconciler) mergeFetchedLocked(fetched []domain.Order, seq uint64) ([]domain.Order, int) {
	merged := make([]domain.Order, 0, len(fetched))
	seen := make(map[domain.OrderID]struct{}, len(fetched))
	kept := 0

	for _, order := range fetched {
		seen[order.ID] = struct{}{}
		st := r.local[order.ID]
		switch {
		case st == nil:
			merged = append(merged, order)
		case st.deleting || (st.deleted && st.settled >= seq):
			kept++
		case st.deleted:
			// Запись создана в хранилище заново уже после удаления.
			merged = append(merged, order)
		case st.keepsLocal(seq):
			if local, err := r.cache.Get(order.ID); err == nil {
				merged = append(merged, local)
				kept++
			} else {
				merged = append(merged, order)
			}
		default:
			merged = append(merged, order)
		}
	}

	for _, local := range r.cache.List() {
		if _, ok := seen[local.ID]; ok {
			continue
		}
		if st := r.local[local.ID]; st != nil && !st.deleting && !st.deleted && st.keepsLocal(seq) {
			merged = append(merged, local)
			kept++
		}
	}

	for id, st := range r.local {
		if !st.deleting && !st.keepsLocal(seq) {
			delete(r.local, id)
		}
	}
	return merged, kept
}
