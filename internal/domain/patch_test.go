package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

func TestDiff_StatusOnly(t *testing.T) {
	before := makeOrder()
	after := before.Clone()
	after.Status = domain.OrderStatusPreparing

	patch := domain.Diff(before, after)
	require.Equal(t, []string{"status"}, patch.Fields())

	body, err := json.Marshal(patch)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"Preparing"}`, string(body))
}

func TestDiff_NoChanges(t *testing.T) {
	order := makeOrder()
	require.True(t, domain.Diff(order, order.Clone()).Empty())
}

func TestDiff_EmptiedItemsSerializeAsArray(t *testing.T) {
	before := makeOrder()
	before.Items = before.Items[:1]
	before.Total = 120

	after := before.Clone()
	after.RemovedItems = append(after.RemovedItems, domain.RemovedItem{LineItem: after.Items[0], Reason: "Out of Stock"})
	after.Items = []domain.LineItem{}
	after.Total = 0
	after.Status = domain.OrderStatusCancelled
	after.RejectionReason = "All items rejected"

	patch := domain.Diff(before, after)
	require.ElementsMatch(t, []string{"status", "items", "total", "removedItems", "rejectionReason"}, patch.Fields())

	body, err := json.Marshal(patch)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"status":"Cancelled",
		"items":[],
		"total":0,
		"removedItems":[{"name":"Paneer Roll","qty":1,"price":120,"reason":"Out of Stock"}],
		"rejectionReason":"All items rejected"
	}`, string(body))
}

func TestApplyPatch_MergesOnlySuppliedFields(t *testing.T) {
	order := makeOrder()
	status := domain.OrderStatusReady

	updated := domain.ApplyPatch(order, domain.OrderPatch{Status: &status})

	require.Equal(t, domain.OrderStatusReady, updated.Status)
	require.Equal(t, order.Items, updated.Items)
	require.Equal(t, order.Total, updated.Total)
	require.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestApplyPatch_RoundTripsDiff(t *testing.T) {
	before := makeOrder()
	after := before.Clone()
	after.RemovedItems = []domain.RemovedItem{{LineItem: after.Items[1], Reason: "Damaged Item"}}
	after.Items = after.Items[:1]
	after.Total = 120

	require.Equal(t, after, domain.ApplyPatch(before, domain.Diff(before, after)))
}
