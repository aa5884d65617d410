package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreditRatingBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{850, "Excellent"},
		{800, "Excellent"},
		{799, "Good"},
		{798, "Very Good"},
		{740, "Very Good"},
		{739, "Good"},
		{670, "Good"},
		{669, "Fair"},
		{580, "Fair"},
		{579, "Poor"},
		{300, "Poor"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CreditRating(tc.score), "score %d", tc.score)
	}
}

func TestValidCreditScore(t *testing.T) {
	assert.True(t, ValidCreditScore(300))
	assert.True(t, ValidCreditScore(850))
	assert.False(t, ValidCreditScore(299))
	assert.False(t, ValidCreditScore(851))
}

func TestUtilization(t *testing.T) {
	accounts := []CreditAccount{
		{Balance: 1500, CreditLimit: 5000},
		{Balance: 1000, CreditLimit: 5000},
	}
	assert.Equal(t, 25, Utilization(accounts))

	// No limits at all reports zero instead of dividing by zero.
	assert.Equal(t, 0, Utilization(nil))
	assert.Equal(t, 0, Utilization([]CreditAccount{{Balance: 100}}))
}
