package reconcile

import "math"

// computeOccupancy derives remaining availability and the occupancy
// percentage from a known capacity and the platform's cumulative sold
// counter. Capacity is taken as a given input; adapters for platforms
// that only report a percentage estimate a capacity before calling the
// engine. Availability never goes negative even when sold exceeds
// capacity, and a zero capacity yields 0% rather than a division error.
func computeOccupancy(capacityTotal, cumulativeSold uint32) (ticketsAvailable uint32, occupancyPct float64) {
	if capacityTotal > cumulativeSold {
		ticketsAvailable = capacityTotal - cumulativeSold
	}
	if capacityTotal > 0 {
		occupancyPct = math.Round(float64(cumulativeSold)/float64(capacityTotal)*100*100) / 100
	}
	return ticketsAvailable, occupancyPct
}
