// Package graph ranks named nodes so that every node is deployed before the nodes
// that reference it.
//
// The input is a reverse-dependency map: each key maps to the names of the nodes
// that reference it. Ranking repeatedly peels off the nodes nobody still references
// (Kahn's algorithm) and gives each wave the next rank, starting at 1. Higher ranks
// are more foundational and are deployed first.
//
// Two cycle policies are available. Strict fails with a CircularDependencyError as
// soon as a wave is empty. Relaxed tolerates cycles by accepting nodes that are
// still referenced by exactly t nodes, raising t until something qualifies.
//
// Example usage:
//
//	ranks, err := graph.Rank(map[string][]string{
//		"orders":   {"vw_orders", "sp_orders"},
//		"vw_orders": {"sp_orders"},
//		"sp_orders": {},
//	}, graph.Strict)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// ranks["sp_orders"] == 1, ranks["vw_orders"] == 2, ranks["orders"] == 3
package graph
