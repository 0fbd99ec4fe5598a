package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func writeGzipLines(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "orders-0001.jsonl.gz")
	f, err := os.Create(path)
	require.NoError(t, err)

	gz := pgzip.NewWriter(f)
	for _, l := range lines {
		_, err := gz.Write([]byte(l + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func TestStreamLines(t *testing.T) {
	path := writeGzipLines(t,
		`{"id":"a"}`,
		``,
		`{"id":"b"}`,
	)

	var got []string
	err := streamLines(context.Background(), path, func(line []byte) error {
		got = append(got, string(line))
		return nil
	})
	require.NoError(t, err, "a fully consumed file must not report an error")
	assert.Equal(t, []string{`{"id":"a"}`, `{"id":"b"}`}, got, "blank lines are skipped")
}

func TestStreamLines_CallbackError(t *testing.T) {
	path := writeGzipLines(t, `{"id":"a"}`, `{"id":"b"}`)

	boom := errors.New("boom")
	var calls int
	err := streamLines(context.Background(), path, func([]byte) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "streaming stops on the first callback error")
}

func TestStreamLines_MissingFile(t *testing.T) {
	err := streamLines(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl.gz"), func([]byte) error {
		t.Fatal("callback must not run")
		return nil
	})
	require.Error(t, err)
}

func TestPeekOrderID(t *testing.T) {
	t.Run("extracts id without full decode", func(t *testing.T) {
		id, err := peekOrderID([]byte(`{"subtotal":"12.50","id":"ord-1","items":[{"x":1}]}`))
		require.NoError(t, err)
		assert.Equal(t, "ord-1", id)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := peekOrderID([]byte(`{"subtotal":"12.50"}`))
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := peekOrderID([]byte(`{"id":`))
		require.Error(t, err)
	})
}

func TestDecodeFeedOrder(t *testing.T) {
	t.Run("mixed amount encodings", func(t *testing.T) {
		o, err := decodeFeedOrder([]byte(`{
			"id": "ord-1",
			"orderNumber": "SS-AB12CD34",
			"subtotal": 20,
			"discountsTotal": "5.00",
			"taxesTotal": null,
			"totalAmount": "15",
			"currency": "EUR",
			"itemCount": 2,
			"placedAt": "2024-05-17T09:45:00Z"
		}`))
		require.NoError(t, err)
		assert.Equal(t, "ord-1", o.ID)
		assert.Equal(t, "EUR", o.Currency)
		assert.True(t, o.Subtotal.Equal(dec("20")), "subtotal %s", o.Subtotal)
		assert.True(t, o.DiscountsTotal.Equal(dec("5")), "discounts %s", o.DiscountsTotal)
		assert.True(t, o.TaxesTotal.IsZero(), "taxes %s", o.TaxesTotal)
		assert.True(t, o.TotalAmount.Equal(dec("15")), "total %s", o.TotalAmount)
		require.NotNil(t, o.PlacedAt)
		assert.Equal(t, 2024, o.PlacedAt.Year())
	})

	t.Run("total derived when omitted", func(t *testing.T) {
		o, err := decodeFeedOrder([]byte(`{"id":"ord-2","subtotal":"10.00","taxesTotal":"1.00"}`))
		require.NoError(t, err)
		assert.True(t, o.TotalAmount.Equal(dec("11")), "total %s", o.TotalAmount)
	})

	t.Run("defaults", func(t *testing.T) {
		o, err := decodeFeedOrder([]byte(`{"id":"ord-3"}`))
		require.NoError(t, err)
		assert.Equal(t, "paid", o.Status)
		assert.Equal(t, "USD", o.Currency)
		assert.Nil(t, o.PlacedAt)
	})
}
