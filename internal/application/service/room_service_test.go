package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitroom/splitroom-api/internal/application/service"
	"github.com/splitroom/splitroom-api/pkg/apperror"
)

func TestGetRoom_UnknownToken(t *testing.T) {
	f := newFixture()

	_, err := f.rooms.GetRoom(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestGetRoom_HistoryAgreesWithBalances(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	token := f.openRoom(t, service.ItemInput{Name: "Sushi", QtyTotal: 2, UnitPrice: 2.00, AmountTotal: 4.00})
	view := f.view(t, token)
	itemID := view.Items[0].ID
	unit0 := view.Items[0].Units[0].ID

	for _, amount := range []float64{0.75, 0.25, 1.00} {
		_, err := f.payments.SubmitPayment(ctx, token, &service.SubmitPaymentInput{
			PayerName: "alice",
			Lines: []service.PaymentLineInput{
				{ItemID: itemID, Mode: service.ModeUnitPartial, UnitID: &unit0, Amount: ptr(amount)},
			},
		})
		require.NoError(t, err)
	}

	view = f.view(t, token)
	require.Len(t, view.Payments, 3)

	// The paid balance of every unit equals the sum of the history the same
	// snapshot ships.
	sums := service.FoldPayments(view.Payments)
	for _, item := range view.Items {
		for _, u := range item.Units {
			assert.Equal(t, sums[u.ID], u.AmountPaid)
		}
	}
	assert.Equal(t, int64(200), view.Items[0].Units[0].AmountPaid)

	// History is oldest first.
	assert.Equal(t, int64(75), view.Payments[0].Amount)
	assert.Equal(t, int64(25), view.Payments[1].Amount)
	assert.Equal(t, int64(100), view.Payments[2].Amount)
}

func TestGetRoom_JSONShape(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	token := f.openRoom(t, service.ItemInput{Name: "Ramen", QtyTotal: 1, UnitPrice: 12.50, AmountTotal: 12.50})
	view := f.view(t, token)
	itemID := view.Items[0].ID

	_, err := f.payments.SubmitPayment(ctx, token, &service.SubmitPaymentInput{
		PayerName: "alice",
		Lines:     []service.PaymentLineInput{{ItemID: itemID, Mode: service.ModeUnitFull}},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(f.view(t, token))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, token, decoded["token"])
	assert.Equal(t, "paid", decoded["status"])

	items := decoded["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Ramen", item["name"])
	assert.Equal(t, 12.5, item["amount_total"])
	assert.NotContains(t, item, "receipt_id")

	units := item["units"].([]interface{})
	require.Len(t, units, 1)
	unit := units[0].(map[string]interface{})
	assert.Equal(t, 12.5, unit["amount_total"])
	assert.Equal(t, 12.5, unit["amount_paid"])
	assert.Equal(t, "paid", unit["status"])
	assert.NotContains(t, unit, "item_id")

	payments := decoded["payments"].([]interface{})
	require.Len(t, payments, 1)
	payment := payments[0].(map[string]interface{})
	assert.Equal(t, "alice", payment["payer_name"])
	assert.Equal(t, 12.5, payment["amount"])
	assert.Contains(t, payment, "unit_id")
	assert.NotContains(t, payment, "receipt_id")
}

func TestGetRoom_EmptyCollectionsMarshalAsArrays(t *testing.T) {
	f := newFixture()

	token := f.openRoom(t, service.ItemInput{Name: "Latte", QtyTotal: 1, UnitPrice: 3.00, AmountTotal: 3.00})
	view := f.view(t, token)

	require.NotNil(t, view.Payments)
	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"payments":[]`)
}
