// Package bitonic implements the bitonic sorting network over fixed-width
// signed integers.
//
// The network for a power-of-two length n is a fixed sequence of stages.
// Stage (k, j) compares every index i with its partner i^j, in ascending
// order when i&k == 0 and descending order otherwise. Running the stages
// k = 2, 4, ..., n and, for each k, j = k/2, ..., 1 sorts the input.
//
// # Engines
//
// This package holds the single-threaded engine in two equivalent forms:
//   - [Sort] runs the iterative (k, j, i) stage loop in place
//   - [SortRecursive] builds ascending and descending halves recursively and
//     merges them by halving the compare distance
//
// The shared-memory engine lives in bitonic/contrib/parallel and the
// distributed engine in bitonic/contrib/cluster. All three route every
// ordering decision through [CompareExchange], so they produce identical
// output for identical input.
//
// # Padding
//
// Inputs whose length is not a power of two are padded with [MaxValue] up to
// [NextEligibleLength]. After an ascending sort the sentinels occupy the tail
// and [Truncate] drops them:
//
//	padded, n, err := bitonic.Pad(data, 1)
//	if err != nil {
//	    return err
//	}
//	if err := bitonic.Sort(padded); err != nil {
//	    return err
//	}
//	sorted := bitonic.Truncate(padded, n)
//
// [SortPadded] does the three steps in one call.
package bitonic
