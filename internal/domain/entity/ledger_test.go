package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeBalances(t *testing.T) {
	entries := []*LedgerEntry{
		{Debit: 500},
		{Credit: 500},
		{Debit: 1200},
		{Credit: 300, Balance: 99999}, // stale value is overwritten
	}

	RecomputeBalances(entries)

	want := []float64{500, 0, 1200, 900}
	for i, e := range entries {
		prev := 0.0
		if i > 0 {
			prev = entries[i-1].Balance
		}
		assert.Equal(t, want[i], e.Balance)
		assert.Equal(t, prev+e.Debit-e.Credit, e.Balance)
	}
}

func TestStatus_IsReturned(t *testing.T) {
	assert.True(t, StatusSentBack.IsReturned())
	assert.True(t, StatusRejected.IsReturned())
	assert.False(t, StatusPending.IsReturned())
	assert.False(t, StatusCorrectedByUser.IsReturned())
	assert.False(t, Status("archived").IsValid())
}
