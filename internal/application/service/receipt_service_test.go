package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitroom/splitroom-api/internal/application/service"
	"github.com/splitroom/splitroom-api/internal/domain/enum"
	"github.com/splitroom/splitroom-api/internal/infrastructure/repository/memory"
	"github.com/splitroom/splitroom-api/pkg/apperror"
	"github.com/splitroom/splitroom-api/pkg/ocr"
	"github.com/splitroom/splitroom-api/pkg/pagination"
)

func TestCreateReceipt_EmptyDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	receipt, err := f.receipts.CreateReceipt(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusDraft, receipt.Status)
	assert.Nil(t, receipt.Token)

	items, err := f.receipts.GetItems(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// textExtractor plays an OCR engine that returns recognized text without
// line items of its own.
type textExtractor struct {
	text string
}

func (e *textExtractor) Extract(ctx context.Context, imagePath string) (string, []ocr.ParsedItem, error) {
	return e.text, nil, nil
}

func TestCreateReceipt_ParsesExtractedText(t *testing.T) {
	store := memory.NewStore()
	extractor := &textExtractor{text: "Pizza 2 x 4.50 9.00\nCola 1.99 1.99\nTOTAL 10.99"}
	receipts := service.NewReceiptService(store, extractor, baseURL)
	ctx := context.Background()

	receipt, err := receipts.CreateReceipt(ctx, "/uploads/check.jpg")
	require.NoError(t, err)

	items, err := receipts.GetItems(ctx, receipt.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Pizza", items[0].Name)
	assert.Equal(t, 2, items[0].QtyTotal)
	assert.Equal(t, int64(450), items[0].UnitPrice)
	assert.Equal(t, int64(900), items[0].AmountTotal)
	assert.Equal(t, "Cola", items[1].Name)
	assert.Equal(t, 1, items[1].QtyTotal)
	assert.Equal(t, int64(199), items[1].AmountTotal)
}

func TestReplaceItems_EchoesStoredItems(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	receipt, err := f.receipts.CreateReceipt(ctx, "")
	require.NoError(t, err)

	items, err := f.receipts.ReplaceItems(ctx, receipt.ID, []service.ItemInput{
		{Name: "Pizza", QtyTotal: 2, UnitPrice: 4.50, AmountTotal: 9.00},
		{Name: "Cola", QtyTotal: 1, UnitPrice: 1.99, AmountTotal: 1.99},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Pizza", items[0].Name)
	assert.Equal(t, int64(900), items[0].AmountTotal)
	assert.Equal(t, int64(199), items[1].AmountTotal)
	assert.NotEqual(t, items[0].ID, items[1].ID)

	// A second replace swaps the list wholesale.
	items, err = f.receipts.ReplaceItems(ctx, receipt.ID, []service.ItemInput{
		{Name: "Burger", QtyTotal: 1, UnitPrice: 5.00, AmountTotal: 5.00},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Burger", items[0].Name)
}

func TestReplaceItems_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	receipt, err := f.receipts.CreateReceipt(ctx, "")
	require.NoError(t, err)

	cases := []struct {
		name  string
		input service.ItemInput
	}{
		{"zero qty", service.ItemInput{Name: "X", QtyTotal: 0, AmountTotal: 1.00}},
		{"negative amount", service.ItemInput{Name: "X", QtyTotal: 1, AmountTotal: -1.00}},
		{"blank name", service.ItemInput{Name: "   ", QtyTotal: 1, AmountTotal: 1.00}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.receipts.ReplaceItems(ctx, receipt.ID, []service.ItemInput{tc.input})
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		})
	}
}

func TestReplaceItems_RejectedAfterFinalize(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	receipt, err := f.receipts.CreateReceipt(ctx, "")
	require.NoError(t, err)
	_, err = f.receipts.ReplaceItems(ctx, receipt.ID, []service.ItemInput{
		{Name: "Pizza", QtyTotal: 1, UnitPrice: 9.00, AmountTotal: 9.00},
	})
	require.NoError(t, err)

	_, err = f.receipts.Finalize(ctx, receipt.ID)
	require.NoError(t, err)

	_, err = f.receipts.ReplaceItems(ctx, receipt.ID, []service.ItemInput{
		{Name: "Burger", QtyTotal: 1, UnitPrice: 5.00, AmountTotal: 5.00},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotDraft))
}

func TestFinalize_SplitsAmountsAcrossUnits(t *testing.T) {
	f := newFixture()

	// 1.00 over three units: the remainder cent lands on the last unit.
	token := f.openRoom(t, service.ItemInput{Name: "Fries", QtyTotal: 3, UnitPrice: 0.33, AmountTotal: 1.00})

	view := f.view(t, token)
	require.Len(t, view.Items, 1)
	units := view.Items[0].Units
	require.Len(t, units, 3)
	assert.Equal(t, int64(33), units[0].AmountTotal)
	assert.Equal(t, int64(33), units[1].AmountTotal)
	assert.Equal(t, int64(34), units[2].AmountTotal)
	for i, u := range units {
		assert.Equal(t, i, u.UnitIndex)
		assert.Equal(t, enum.UnitStatusUnpaid, u.Status)
	}
	assert.Equal(t, enum.ReceiptStatusOpen, view.Status)
}

func TestFinalize_Twice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	receipt, err := f.receipts.CreateReceipt(ctx, "")
	require.NoError(t, err)
	_, err = f.receipts.ReplaceItems(ctx, receipt.ID, []service.ItemInput{
		{Name: "Pizza", QtyTotal: 2, UnitPrice: 4.50, AmountTotal: 9.00},
	})
	require.NoError(t, err)

	roomURL, err := f.receipts.Finalize(ctx, receipt.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(roomURL, baseURL+"/room/"))

	_, err = f.receipts.Finalize(ctx, receipt.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyFinalized))

	// Units were generated exactly once.
	token := strings.TrimPrefix(roomURL, baseURL+"/room/")
	view := f.view(t, token)
	require.Len(t, view.Items, 1)
	assert.Len(t, view.Items[0].Units, 2)
}

func TestFinalize_UnknownReceipt(t *testing.T) {
	f := newFixture()

	_, err := f.receipts.Finalize(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRoomURL_TrimsTrailingSlash(t *testing.T) {
	s := service.NewReceiptService(nil, nil, "https://split.example.com/")
	assert.Equal(t, "https://split.example.com/room/abc", s.RoomURL("abc"))
}

func TestListReceipts_NewestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.receipts.CreateReceipt(ctx, "")
	require.NoError(t, err)
	second, err := f.receipts.CreateReceipt(ctx, "")
	require.NoError(t, err)

	result, err := f.receipts.ListReceipts(ctx, &pagination.PaginationParams{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, second.ID, result.Items[0].ID)
	assert.Equal(t, first.ID, result.Items[1].ID)
	assert.Equal(t, int64(2), result.Pagination.Total)
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(100), service.Cents(1.00))
	assert.Equal(t, int64(199), service.Cents(1.99))
	// 0.1+0.2 style float noise must not lose a cent.
	assert.Equal(t, int64(30), service.Cents(0.1+0.2))
	assert.Equal(t, int64(0), service.Cents(0))
}
