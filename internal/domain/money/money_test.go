package money

import (
	"encoding/json"
	"testing"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "0"},
		{name: "float", in: 12.5, want: "12.5"},
		{name: "int", in: 40, want: "40"},
		{name: "numeric string", in: "50", want: "50"},
		{name: "decimal string", in: "19.99", want: "19.99"},
		{name: "negative string", in: "-3.25", want: "-3.25"},
		{name: "padded string", in: "  7.5 ", want: "7.5"},
		{name: "empty string", in: "", want: "0"},
		{name: "garbage string", in: "abc", want: "0"},
		{name: "json number", in: json.Number("4.20"), want: "4.2"},
		{name: "bool is not a number", in: true, want: "0"},
		{name: "already decimal", in: decimal.RequireFromString("8.88"), want: "8.88"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"Parse(%v) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "1.50", Round2(decimal.RequireFromString("1.495")).StringFixed(2))
	assert.Equal(t, "1.49", Round2(decimal.RequireFromString("1.494")).StringFixed(2))
	assert.Equal(t, "2.00", Round2(decimal.RequireFromString("1.995")).StringFixed(2))
}

func TestDecodeAmount(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{name: "number", json: `12.34`, want: "12.34"},
		{name: "integer", json: `50`, want: "50"},
		{name: "string", json: `"40.5"`, want: "40.5"},
		{name: "null", json: `null`, want: "0"},
		{name: "garbage string", json: `"n/a"`, want: "0"},
		{name: "object decodes to zero", json: `{"a":1}`, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := jx.DecodeStr(tt.json)
			got, err := DecodeAmount(d)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"DecodeAmount(%s) = %s, want %s", tt.json, got, tt.want)
		})
	}
}
