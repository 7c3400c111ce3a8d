package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOccupancy(t *testing.T) {
	available, pct := computeOccupancy(5285, 4500)
	assert.Equal(t, uint32(785), available)
	assert.InDelta(t, 85.15, pct, 0.001)

	available, pct = computeOccupancy(5285, 4581)
	assert.Equal(t, uint32(704), available)
	assert.InDelta(t, 86.68, pct, 0.001)
}

func TestOccupancyZeroCapacity(t *testing.T) {
	available, pct := computeOccupancy(0, 120)
	assert.Equal(t, uint32(0), available)
	assert.Equal(t, 0.0, pct)
}

func TestOccupancyOversold(t *testing.T) {
	// Availability never goes negative even when the platform reports
	// more sold than the recorded capacity.
	available, pct := computeOccupancy(500, 620)
	assert.Equal(t, uint32(0), available)
	assert.InDelta(t, 124.0, pct, 0.001)
}

func TestOccupancySoldOut(t *testing.T) {
	available, pct := computeOccupancy(500, 500)
	assert.Equal(t, uint32(0), available)
	assert.InDelta(t, 100.0, pct, 0.001)
}
