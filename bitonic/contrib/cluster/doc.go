// Package cluster implements the distributed bitonic engine: a sequence is
// split across a group of ranks that share no memory and coordinate only by
// messages.
//
// # Protocol
//
// Every rank calls [Sort] (SPMD). Only rank 0 passes the input, and the merge
// strategy of rank 0 applies to the whole group. The protocol runs in lock-step:
//
//  1. Distribute: rank 0 pads the input to a power of two divisible by the
//     group size, broadcasts the original and padded lengths along with the
//     strategy, then scatters one equal partition to every rank, itself
//     included.
//  2. Local sort: each rank sorts its partition with the recursive network,
//     so recursion depth is bounded by log2 of the partition length.
//  3. Global merge: with [GatherMerge] (the default) rank 0 gathers the
//     sorted partitions and merges them bottom-up. With [Pairwise] the ranks
//     first run the inter-partition stages of the network by exchanging whole
//     partitions with their partner and keeping the lower or upper half.
//  4. Collect: rank 0 returns the sorted, truncated sequence; the other ranks
//     return nil.
//
// # Transports
//
// Collectives ([Comm]) are built once on a point-to-point [Link]. The
// bitonic/contrib/cluster/local package provides an in-process group (one
// goroutine per rank) and bitonic/contrib/cluster/wsnet a multi-process group
// over WebSocket.
//
// # Failure
//
// Any fatal error on any rank aborts the whole group through [Link.Abort]:
// a partial exchange among a subset of ranks would corrupt the network for
// all of them, so no rank returns a partial result.
package cluster
