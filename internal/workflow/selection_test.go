package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleTwiceIsNoOp(t *testing.T) {
	s := NewSelection()
	s.Toggle(1)
	s.Toggle(2)
	s.Toggle(3)
	before := s.IDs()

	s.Toggle(2)
	s.Toggle(2)
	assert.Equal(t, before, s.IDs())

	s.Toggle(9)
	s.Toggle(9)
	assert.Equal(t, before, s.IDs())
}

func TestTogglePreservesInsertionOrder(t *testing.T) {
	s := NewSelection()
	s.Toggle(5)
	s.Toggle(1)
	s.Toggle(3)
	assert.Equal(t, []int64{5, 1, 3}, s.IDs())

	s.Toggle(1)
	assert.Equal(t, []int64{5, 3}, s.IDs())

	s.Toggle(1)
	assert.Equal(t, []int64{5, 3, 1}, s.IDs())
}

func TestOnChangeFiresOnEveryMutation(t *testing.T) {
	s := NewSelection()
	var notified [][]int64
	s.OnChange(func(ids []int64) {
		notified = append(notified, ids)
	})

	s.Toggle(1)
	s.Toggle(2)
	s.Toggle(1)
	s.Clear()

	require.Len(t, notified, 4)
	assert.Equal(t, []int64{1}, notified[0])
	assert.Equal(t, []int64{1, 2}, notified[1])
	assert.Equal(t, []int64{2}, notified[2])
	assert.Empty(t, notified[3])
}

func TestClearOnEmptyDoesNotNotify(t *testing.T) {
	s := NewSelection()
	fired := 0
	s.OnChange(func([]int64) { fired++ })
	s.Clear()
	assert.Zero(t, fired)
}

func TestComputePreviewScenario(t *testing.T) {
	rates := PreviewRates{CreditPerSubject: 3, RatePerUnit: 500, MiscRate: 0.1}
	p := ComputePreview(2, rates)

	assert.Equal(t, 6, p.Units)
	assert.Equal(t, 3000.0, p.Tuition)
	assert.Equal(t, 300.0, p.Misc)
	assert.Equal(t, 3300.0, p.Total)
}

func TestPreviewArithmeticHoldsForAnyCount(t *testing.T) {
	rates := PreviewRates{CreditPerSubject: 3, RatePerUnit: 475.25, MiscRate: 0.1}
	for count := 0; count <= 12; count++ {
		p := ComputePreview(count, rates)
		assert.Equal(t, p.Tuition+p.Misc, p.Total)
		assert.Equal(t, p.Tuition*rates.MiscRate, p.Misc)
	}
}
