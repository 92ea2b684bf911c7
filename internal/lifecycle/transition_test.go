package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/lifecycle"
)

func newOrder(status domain.OrderStatus, prices ...int64) domain.Order {
	order := domain.Order{
		ID:       "17",
		Customer: "Ravi",
		Status:   status,
		Payment:  domain.PaymentCash,
	}
	for i, price := range prices {
		order.Items = append(order.Items, domain.LineItem{Name: string(rune('A' + i)), Qty: 1, Price: price})
		order.Total += price
	}
	return order
}

func TestTransition_ForwardSteps(t *testing.T) {
	tests := []struct {
		from    domain.OrderStatus
		to      domain.OrderStatus
		message string
		event   string
	}{
		{domain.OrderStatusPending, domain.OrderStatusPreparing, "Order #17 Accepted!", domain.EventOrderAccepted},
		{domain.OrderStatusPreparing, domain.OrderStatusReady, "Order #17 Marked Ready!", domain.EventOrderMarkedReady},
		{domain.OrderStatusReady, domain.OrderStatusDelivered, "Order #17 Completed!", domain.EventOrderCompleted},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			order := newOrder(tc.from, 30, 40)

			res := lifecycle.Transition(order, tc.to)

			require.True(t, res.Changed)
			require.Equal(t, tc.to, res.Order.Status)
			require.Equal(t, domain.Notification{Message: tc.message, Kind: domain.NotificationSuccess}, res.Notification)
			require.Equal(t, tc.event, res.Event)
			require.Equal(t, tc.from, order.Status, "input order must not change")
		})
	}
}

func TestTransition_InvalidRequestsAreNoOps(t *testing.T) {
	all := []domain.OrderStatus{
		domain.OrderStatusPending, domain.OrderStatusPreparing, domain.OrderStatusReady,
		domain.OrderStatusDelivered, domain.OrderStatusCancelled, domain.OrderStatus("Lost"),
	}

	for _, from := range all {
		next, hasNext := lifecycle.NextStatus(from)
		for _, requested := range all {
			if hasNext && requested == next {
				continue
			}
			order := newOrder(from, 30)
			res := lifecycle.Transition(order, requested)

			require.Falsef(t, res.Changed, "%s -> %s must be a no-op", from, requested)
			require.True(t, res.Notification.IsZero())
			require.Equal(t, order, res.Order)
		}
	}
}

func TestTransition_NeverTouchesItems(t *testing.T) {
	order := newOrder(domain.OrderStatusPending, 30, 40)
	order.RemovedItems = []domain.RemovedItem{{LineItem: domain.LineItem{Name: "Z", Qty: 1, Price: 10}, Reason: "Damaged Item"}}

	res := lifecycle.Transition(order, domain.OrderStatusPreparing)

	require.Equal(t, order.Items, res.Order.Items)
	require.Equal(t, order.Total, res.Order.Total)
	require.Equal(t, order.RemovedItems, res.Order.RemovedItems)
}

func TestTransition_AcceptTwice(t *testing.T) {
	order := newOrder(domain.OrderStatusPending, 30)

	first := lifecycle.Transition(order, domain.OrderStatusPreparing)
	require.Equal(t, domain.OrderStatusPreparing, first.Order.Status)
	require.Equal(t, "Order #17 Accepted!", first.Notification.Message)

	second := lifecycle.Transition(first.Order, domain.OrderStatusPreparing)
	require.False(t, second.Changed)
	require.True(t, second.Notification.IsZero())
	require.Equal(t, first.Order, second.Order)
}

func TestRejectOrder(t *testing.T) {
	order := newOrder(domain.OrderStatusPreparing, 30, 40)

	res, err := lifecycle.RejectOrder(order, "Out of Stock")

	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Equal(t, domain.OrderStatusCancelled, res.Order.Status)
	require.Equal(t, "Out of Stock", res.Order.RejectionReason)
	require.Equal(t, order.Items, res.Order.Items)
	require.Equal(t, int64(70), res.Order.Total)
	require.Equal(t, domain.EventOrderRejected, res.Event)
	require.Equal(t, domain.NotificationError, res.Notification.Kind)
}

func TestRejectOrder_ToleratesReady(t *testing.T) {
	res, err := lifecycle.RejectOrder(newOrder(domain.OrderStatusReady, 30), "Customer left")

	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCancelled, res.Order.Status)
}

func TestRejectOrder_BlankReason(t *testing.T) {
	order := newOrder(domain.OrderStatusPending, 30)

	res, err := lifecycle.RejectOrder(order, "   ")

	require.ErrorIs(t, err, domain.ErrReasonRequired)
	require.True(t, domain.IsInvalidArgument(err))
	require.False(t, res.Changed)
	require.Equal(t, order, res.Order)
}

func TestRejectOrder_TerminalIsNoOp(t *testing.T) {
	for _, status := range []domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
		order := newOrder(status, 30)

		res, err := lifecycle.RejectOrder(order, "Out of Stock")

		require.NoError(t, err)
		require.False(t, res.Changed)
		require.Equal(t, order, res.Order)
	}
}
