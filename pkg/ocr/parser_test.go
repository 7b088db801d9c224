package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItems_QtyForm(t *testing.T) {
	items := ParseItems("Pizza Margherita 2 x 4.50 9.00")
	require.Len(t, items, 1)
	assert.Equal(t, "Pizza Margherita", items[0].Name)
	assert.Equal(t, 2, items[0].QtyTotal)
	assert.Equal(t, 4.50, items[0].UnitPrice)
	assert.Equal(t, 9.00, items[0].AmountTotal)
}

func TestParseItems_TwoNumberForm(t *testing.T) {
	items := ParseItems("Cola 1.99 1.99")
	require.Len(t, items, 1)
	assert.Equal(t, "Cola", items[0].Name)
	assert.Equal(t, 1, items[0].QtyTotal)
	assert.Equal(t, 1.99, items[0].UnitPrice)
	assert.Equal(t, 1.99, items[0].AmountTotal)
}

func TestParseItems_CommaDecimalsAndCyrillicMultiplier(t *testing.T) {
	items := ParseItems("Борщ 2 x 3,50 7,00")
	require.Len(t, items, 1)
	assert.Equal(t, "Борщ", items[0].Name)
	assert.Equal(t, 2, items[0].QtyTotal)
	assert.Equal(t, 3.50, items[0].UnitPrice)
	assert.Equal(t, 7.00, items[0].AmountTotal)
}

func TestParseItems_StopsAtTotalsLine(t *testing.T) {
	text := "Pizza 2 x 4.50 9.00\nCola 1.99 1.99\nTOTAL 10.99\nThank you 5.00 5.00"
	items := ParseItems(text)
	require.Len(t, items, 2)
	assert.Equal(t, "Pizza", items[0].Name)
	assert.Equal(t, "Cola", items[1].Name)
}

func TestParseItems_SkipsNoise(t *testing.T) {
	text := "RECEIPT\n\n-----\nPizza 2 x 4.50 9.00\ncashier anna"
	items := ParseItems(text)
	require.Len(t, items, 1)
	assert.Equal(t, "Pizza", items[0].Name)
}

func TestParseItems_Empty(t *testing.T) {
	assert.Empty(t, ParseItems(""))
	assert.Empty(t, ParseItems("just words without numbers"))
}
