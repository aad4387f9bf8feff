package engine

import (
	"time"

	"github.com/roach88/semnet/internal/network"
)

// Observer receives progress events from Search. Implementations must be
// safe for concurrent use when the matcher runs with parallelism.
type Observer interface {
	// Seeded reports the start label and how many seed chains it produced.
	Seeded(label string, chains int)

	// Expanded reports one pattern edge expansion: chains in and chains out.
	Expanded(pattern network.Triplet, in, out int)

	// Finished reports the end of a search.
	Finished(matches int, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) Seeded(string, int) {}
func (nopObserver) Expanded(network.Triplet, int, int) {}
func (nopObserver) Finished(int, time.Duration, error) {}
