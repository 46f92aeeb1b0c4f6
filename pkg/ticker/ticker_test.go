package ticker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInfersExchangeFromPrefix(t *testing.T) {
	cases := []struct {
		symbol string
		want   Exchange
	}{
		{"600000", Shanghai},
		{"000001", Shenzhen},
		{"300750", Shenzhen},
		{"150001", Shenzhen},
		{"430047", Beijing},
		{"830799", Beijing},
		{"00700", HongKong},
		{"999999", UnknownExc},
	}
	for _, c := range cases {
		tk, err := New(c.symbol, "", "")
		require.NoError(t, err)
		assert.Equal(t, c.want, tk.Exchange, "symbol %s", c.symbol)
		assert.Equal(t, Stock, tk.Type, "default type should be Stock")
	}
}

func TestNewRejectsEmptySymbol(t *testing.T) {
	_, err := New("   ", "", "")
	assert.Error(t, err)
}

func TestNewRespectsExplicitExchangeOverInference(t *testing.T) {
	tk, err := New("600000", HongKong, Stock)
	require.NoError(t, err)
	assert.Equal(t, HongKong, tk.Exchange)
}

func TestStringRendersSymbolDotExchange(t *testing.T) {
	tk, err := New("600000", "", "")
	require.NoError(t, err)
	assert.Equal(t, "600000.SH", tk.String())
}

func TestStringOmitsDotWhenExchangeUnknown(t *testing.T) {
	tk, err := New("999999", "", "")
	require.NoError(t, err)
	assert.Equal(t, "999999", tk.String())
}

func TestParseRoundTripsString(t *testing.T) {
	tk, err := New("600000", "", ConvertibleBond)
	require.NoError(t, err)

	parsed, err := Parse(tk.String())
	require.NoError(t, err)
	assert.Equal(t, tk.Symbol, parsed.Symbol)
	assert.Equal(t, tk.Exchange, parsed.Exchange)
}

func TestParseWithoutDotInfersExchange(t *testing.T) {
	parsed, err := Parse("600000")
	require.NoError(t, err)
	assert.Equal(t, Shanghai, parsed.Exchange)
}
