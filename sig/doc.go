// Package sig implements the symbol-interaction graph (SIG) of one system of
// staves: recognized symbols ("inters") as vertices and typed relations as
// directed edges.
//
// The graph is an arena: inters and relations are indexed by stable IDs that
// survive removal and re-insertion, so undo can put back exactly what was
// taken out. All queries return results in ascending ID order, making every
// caller deterministic.
//
// Symbol kinds form a closed set (Kind) with static traits; relation kinds
// (RelationKind) declare their cardinality and the kind pairs they may link.
// Both registries are built once at init and never mutated.
//
// Concurrency: SIG methods are safe for concurrent use. Inter field setters
// are not synchronized; the editor mutates inters from its single worker.
//
// Errors:
//
//	ErrNilInter          - nil inter argument.
//	ErrInterNotFound     - inter is not a vertex of this graph.
//	ErrForeignInter      - inter already belongs to another graph.
//	ErrRelationNotFound  - relation is not an edge of this graph.
//	ErrRelationInUse     - relation instance already linked.
//	ErrSelfRelation      - source and target are the same inter.
package sig
