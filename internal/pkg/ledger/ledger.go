// Package ledger holds the capacity arithmetic shared by the read-only capacity
// preview and the transactional write path, so both always agree.
package ledger

import "sort"

// Allocation is the slice of an event's capacity owned by one stall type.
type Allocation struct {
	StallTypeID uint
	Quantity    int
}

// Unit is a materialised stall as seen by the release planner.
type Unit struct {
	ID          uint
	StallNumber int
	Available   bool
}

// Allocated sums the quantities of all allocations except the excluded type.
// An excluded id of 0 excludes nothing.
func Allocated(allocations []Allocation, excluding uint) int {
	total := 0
	for _, a := range allocations {
		if excluding != 0 && a.StallTypeID == excluding {
			continue
		}
		total += a.Quantity
	}
	return total
}

// Remaining is the capacity left for a candidate quantity. It can only go
// negative if the stored data already violates the capacity invariant.
func Remaining(stallCount int, allocations []Allocation, excluding uint) int {
	return stallCount - Allocated(allocations, excluding)
}

// CanAllocate reports whether candidate fits and, when it does not, by how much
// it overflows.
func CanAllocate(stallCount int, allocations []Allocation, candidate int, excluding uint) (bool, int) {
	remaining := Remaining(stallCount, allocations, excluding)
	if candidate <= remaining {
		return true, 0
	}
	return false, candidate - remaining
}

// NextNumbers returns n consecutive stall numbers following the highest one in
// use.
func NextNumbers(highest int, n int) []int {
	if n <= 0 {
		return nil
	}
	numbers := make([]int, n)
	for i := range numbers {
		numbers[i] = highest + i + 1
	}
	return numbers
}

// Release picks n available units to remove, highest stall numbers first.
// It returns ok=false together with the number of available units when there
// are not enough of them; booked units are never picked.
func Release(units []Unit, n int) (ids []uint, available int, ok bool) {
	free := make([]Unit, 0, len(units))
	for _, u := range units {
		if u.Available {
			free = append(free, u)
		}
	}
	if n <= 0 {
		return nil, len(free), true
	}
	if len(free) < n {
		return nil, len(free), false
	}

	sort.Slice(free, func(i, j int) bool {
		return free[i].StallNumber > free[j].StallNumber
	})

	ids = make([]uint, n)
	for i := 0; i < n; i++ {
		ids[i] = free[i].ID
	}
	return ids, len(free), true
}
