package gpu

import (
	"errors"
	"fmt"
	"sync"
)

// Memory accounting errors.
var (
	// ErrMemoryBudgetExceeded is returned when a reservation would exceed
	// the configured budget.
	ErrMemoryBudgetExceeded = errors.New("gpu: memory budget exceeded")
)

// MemoryStats contains GPU memory usage statistics.
type MemoryStats struct {
	// BudgetBytes is the configured budget in bytes. Zero means unlimited.
	BudgetBytes uint64

	// UsedBytes is the currently reserved memory in bytes.
	UsedBytes uint64

	// PeakBytes is the high-water mark of reserved memory.
	PeakBytes uint64

	// AllocCount is the total number of reservations.
	AllocCount uint64

	// FreeCount is the total number of releases.
	FreeCount uint64

	// Utilization is the fraction of budget used (0.0 to 1.0).
	// Zero when the budget is unlimited.
	Utilization float64
}

// String returns a human-readable string of memory stats.
func (s MemoryStats) String() string {
	if s.BudgetBytes == 0 {
		return fmt.Sprintf("Memory[%d KB used, peak %d KB, %d allocs, %d frees]",
			s.UsedBytes/1024,
			s.PeakBytes/1024,
			s.AllocCount,
			s.FreeCount)
	}
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d KB, peak %d KB, %d allocs, %d frees]",
		s.Utilization*100,
		s.UsedBytes/1024,
		s.BudgetBytes/1024,
		s.PeakBytes/1024,
		s.AllocCount,
		s.FreeCount)
}

// Accountant tracks bytes of live GPU buffer allocations against an
// optional budget. It never evicts: a reservation that would exceed the
// budget fails and the caller decides what to free. This differs from a
// texture cache because buffer contents are caller state that cannot be
// regenerated on demand.
//
// Accountant is safe for concurrent use.
type Accountant struct {
	mu sync.Mutex

	budgetBytes uint64 // 0 = unlimited
	usedBytes   uint64
	peakBytes   uint64
	allocCount  uint64
	freeCount   uint64
}

// NewAccountant creates an accountant with the given budget in bytes.
// A zero budget disables the limit and keeps statistics only.
func NewAccountant(budgetBytes uint64) *Accountant {
	return &Accountant{budgetBytes: budgetBytes}
}

// Reserve records an allocation of size bytes.
// Fails with ErrMemoryBudgetExceeded when the budget would be crossed,
// leaving the accounting unchanged.
func (a *Accountant) Reserve(size uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.budgetBytes != 0 && a.usedBytes+size > a.budgetBytes {
		return fmt.Errorf("%w: used %d + requested %d > budget %d",
			ErrMemoryBudgetExceeded, a.usedBytes, size, a.budgetBytes)
	}
	a.usedBytes += size
	a.allocCount++
	if a.usedBytes > a.peakBytes {
		a.peakBytes = a.usedBytes
	}
	return nil
}

// Release records that size bytes were freed.
// Releasing more than is reserved clamps to zero.
func (a *Accountant) Release(size uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if size > a.usedBytes {
		slogger().Warn("gpu: releasing more memory than reserved",
			"released", size,
			"used", a.usedBytes)
		a.usedBytes = 0
	} else {
		a.usedBytes -= size
	}
	a.freeCount++
}

// Stats returns a snapshot of current memory usage.
func (a *Accountant) Stats() MemoryStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := MemoryStats{
		BudgetBytes: a.budgetBytes,
		UsedBytes:   a.usedBytes,
		PeakBytes:   a.peakBytes,
		AllocCount:  a.allocCount,
		FreeCount:   a.freeCount,
	}
	if a.budgetBytes > 0 {
		stats.Utilization = float64(a.usedBytes) / float64(a.budgetBytes)
	}
	return stats
}
