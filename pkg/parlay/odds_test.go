package parlay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAmericanToDecimal tests conversion of positive and negative prices
func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		odds int
		want float64
	}{
		{150, 2.50},
		{-200, 1.50},
		{100, 2.00},
		{-110, 1.9091},
		{300, 4.00},
	}

	for _, tt := range tests {
		got, err := AmericanToDecimal(tt.odds)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 0.0001, "odds %d", tt.odds)
	}
}

// TestAmericanToDecimal_Invalid tests that zero and sub-100 prices are rejected
func TestAmericanToDecimal_Invalid(t *testing.T) {
	for _, odds := range []int{0, 50, -99, 99} {
		_, err := AmericanToDecimal(odds)
		assert.ErrorIs(t, err, ErrInvalidOdds, "odds %d", odds)
	}
}

// TestImpliedProbability tests the market probability of a price
func TestImpliedProbability(t *testing.T) {
	p, err := ImpliedProbability(150)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, p, 1e-9)

	p, err = ImpliedProbability(-200)
	require.NoError(t, err)
	assert.InDelta(t, 0.6667, p, 0.0001)

	_, err = ImpliedProbability(0)
	assert.ErrorIs(t, err, ErrInvalidOdds)
}

// TestDecimalToAmerican tests both branches of the conversion
func TestDecimalToAmerican(t *testing.T) {
	tests := []struct {
		decimal float64
		want    int
	}{
		{2.50, 150},
		{1.50, -200},
		{2.00, 100},
		{3.75, 275},
		{1.25, -400},
	}

	for _, tt := range tests {
		got, err := DecimalToAmerican(tt.decimal)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "decimal %.2f", tt.decimal)
	}
}

// TestDecimalToAmerican_NoPayout tests that a price of 1.0 or less is reported, not guessed
func TestDecimalToAmerican_NoPayout(t *testing.T) {
	for _, d := range []float64{1.0, 0.5, 0} {
		got, err := DecimalToAmerican(d)
		assert.ErrorIs(t, err, ErrNoPayout)
		assert.Equal(t, 0, got)
	}
}

// TestDecimalToAmerican_OutOfRange tests that prices no int can hold are rejected, not wrapped
func TestDecimalToAmerican_OutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		decimal float64
	}{
		{"positive infinity", math.Inf(1)},
		{"huge", 1e300},
		{"beyond int64", 1e17},
		{"beyond int32 underdog", 3e7},
		{"beyond int32 favorite", 1 + 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecimalToAmerican(tt.decimal)
			assert.ErrorIs(t, err, ErrInvalidOdds)
			assert.Equal(t, 0, got)
		})
	}

	got, err := DecimalToAmerican(1e7)
	require.NoError(t, err)
	assert.Equal(t, 999999900, got)
}

// TestDecimalImpliedProbability tests the decimal price probability and its rejects
func TestDecimalImpliedProbability(t *testing.T) {
	p, err := DecimalImpliedProbability(2.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, p, 1e-9)

	_, err = DecimalImpliedProbability(1.0)
	assert.ErrorIs(t, err, ErrNoPayout)

	_, err = DecimalImpliedProbability(math.NaN())
	assert.ErrorIs(t, err, ErrNoPayout)

	_, err = DecimalImpliedProbability(math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidOdds)
}

// TestOddsRoundTrip tests that American -> decimal -> American reproduces the price
func TestOddsRoundTrip(t *testing.T) {
	prices := []int{-1000, -500, -250, -200, -150, -125, -110, -105, -101,
		100, 101, 105, 110, 125, 150, 200, 350, 1000, 2500}

	for _, odds := range prices {
		d, err := AmericanToDecimal(odds)
		require.NoError(t, err)

		back, err := DecimalToAmerican(d)
		require.NoError(t, err)
		assert.Equal(t, odds, back, "round trip of %d via %.6f", odds, d)
	}
}

// TestOddsRoundTrip_EvenMoney tests that -100 and +100 are the same price
func TestOddsRoundTrip_EvenMoney(t *testing.T) {
	d, err := AmericanToDecimal(-100)
	require.NoError(t, err)
	assert.Equal(t, 2.0, d)

	back, err := DecimalToAmerican(d)
	require.NoError(t, err)
	assert.Equal(t, 100, back)
}

// TestIsValidationError tests sentinel classification
func TestIsValidationError(t *testing.T) {
	_, err := AmericanToDecimal(0)
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(assert.AnError))
}
