package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/service/reconcile"
)

func orderID(c *gin.Context) domain.OrderID {
	return domain.OrderID(c.Param("id"))
}

// listOrders handles GET /api/orders?status=&q=
func (h *Handler) listOrders(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondValidation(c, err)
		return
	}
	orders, err := filter.Apply(h.orders.List())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.Get(orderID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

func (h *Handler) getTimeline(c *gin.Context) {
	id := orderID(c)
	events, err := h.orders.Timeline(id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if events == nil {
		events = []domain.TimelineEvent{}
	}
	respondOK(c, http.StatusOK, events)
}

// refresh handles POST /api/orders/refresh - перечитывает список из хранилища.
func (h *Handler) refresh(c *gin.Context) {
	count, err := h.orders.Refresh(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": count})
}

func (h *Handler) accept(c *gin.Context) {
	h.respondOutcome(c)(h.orders.Accept(orderID(c)))
}

func (h *Handler) markReady(c *gin.Context) {
	h.respondOutcome(c)(h.orders.MarkReady(orderID(c)))
}

func (h *Handler) complete(c *gin.Context) {
	h.respondOutcome(c)(h.orders.Complete(orderID(c)))
}

func (h *Handler) transition(c *gin.Context) {
	var draft TransitionDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondValidation(c, err)
		return
	}
	if err := draft.Validate(); err != nil {
		respondDomainError(c, err)
		return
	}
	h.respondOutcome(c)(h.orders.Transition(orderID(c), draft.Target()))
}

func (h *Handler) rejectOrder(c *gin.Context) {
	var draft RejectDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondValidation(c, err)
		return
	}
	if err := draft.Validate(); err != nil {
		respondDomainError(c, err)
		return
	}
	h.respondOutcome(c)(h.orders.RejectOrder(orderID(c), draft.Reason))
}

func (h *Handler) rejectItem(c *gin.Context) {
	index, err := parseItemIndex(c.Param("index"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	var draft RejectDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondValidation(c, err)
		return
	}
	if err := draft.Validate(); err != nil {
		respondDomainError(c, err)
		return
	}
	h.respondOutcome(c)(h.orders.RejectItem(orderID(c), index, draft.Reason))
}

// deleteOrder handles DELETE /api/orders/:id - только Delivered/Cancelled.
// Ответ приходит после ответа хранилища; при ошибке запись восстановлена.
func (h *Handler) deleteOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.deleteTimeout)
	defer cancel()

	if err := h.orders.DeleteHistorical(ctx, orderID(c)); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listNotifications(c *gin.Context) {
	respondOK(c, http.StatusOK, h.notifications.Recent())
}

func (h *Handler) getStats(c *gin.Context) {
	respondOK(c, http.StatusOK, Summarize(h.orders.List()))
}

// respondOutcome отдаёт результат операции; no-op тоже 200 с changed=false.
func (h *Handler) respondOutcome(c *gin.Context) func(reconcile.Outcome, error) {
	return func(out reconcile.Outcome, err error) {
		if err != nil {
			respondDomainError(c, err)
			return
		}
		respondOK(c, http.StatusOK, out)
	}
}
