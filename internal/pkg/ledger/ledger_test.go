package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	allocations := []Allocation{
		{StallTypeID: 1, Quantity: 6},
		{StallTypeID: 2, Quantity: 3},
	}

	tests := []struct {
		name       string
		stallCount int
		excluding  uint
		want       int
	}{
		{name: "no exclusion", stallCount: 10, excluding: 0, want: 1},
		{name: "excluding the edited type", stallCount: 10, excluding: 1, want: 7},
		{name: "unknown exclusion is ignored", stallCount: 10, excluding: 99, want: 1},
		{name: "empty event", stallCount: 0, excluding: 0, want: -9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Remaining(tt.stallCount, allocations, tt.excluding))
		})
	}
}

func TestCanAllocate(t *testing.T) {
	premium := []Allocation{{StallTypeID: 1, Quantity: 6}}

	ok, by := CanAllocate(10, nil, 6, 0)
	assert.True(t, ok)
	assert.Zero(t, by)

	ok, by = CanAllocate(10, premium, 5, 0)
	assert.False(t, ok)
	assert.Equal(t, 1, by)

	ok, by = CanAllocate(10, premium, 4, 0)
	assert.True(t, ok)
	assert.Zero(t, by)

	// growing the only type is measured against the full capacity
	ok, _ = CanAllocate(10, []Allocation{{StallTypeID: 7, Quantity: 4}}, 6, 7)
	assert.True(t, ok)
}

func TestNextNumbers(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, NextNumbers(0, 3))
	assert.Equal(t, []int{8, 9}, NextNumbers(7, 2))
	assert.Nil(t, NextNumbers(7, 0))
}

func TestRelease(t *testing.T) {
	units := []Unit{
		{ID: 11, StallNumber: 1, Available: true},
		{ID: 12, StallNumber: 2, Available: false},
		{ID: 13, StallNumber: 3, Available: true},
		{ID: 14, StallNumber: 4, Available: false},
		{ID: 15, StallNumber: 5, Available: true},
	}

	t.Run("prefers highest numbers", func(t *testing.T) {
		ids, available, ok := Release(units, 2)
		assert.True(t, ok)
		assert.Equal(t, 3, available)
		assert.Equal(t, []uint{15, 13}, ids)
	})

	t.Run("never touches booked units", func(t *testing.T) {
		ids, available, ok := Release(units, 4)
		assert.False(t, ok)
		assert.Equal(t, 3, available)
		assert.Nil(t, ids)
	})

	t.Run("nothing to release", func(t *testing.T) {
		ids, _, ok := Release(units, 0)
		assert.True(t, ok)
		assert.Empty(t, ids)
	})
}
