// Package dag provides a small directed acyclic graph with deterministic,
// insertion-ordered traversal.
//
// # Overview
//
// Cellforge records placement as a dependency graph: a step that places an
// instance relative to another instance's anchor depends on that instance
// being placed first. This package provides the graph; package place builds
// placement plans on top of it.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "MN0"})
//	g.AddNode(dag.Node{ID: "MP0"})
//	g.AddEdge(dag.Edge{From: "MN0", To: "MP0"})
//
// [DAG.Validate] reports cycles, [DAG.TopoSort] yields an evaluation order,
// and [DAG.Descendants] lists everything downstream of a node.
//
// # Determinism
//
// Nodes keep their insertion order. Topological sorting breaks ties by that
// order, so the same sequence of AddNode/AddEdge calls always produces the
// same result.
//
// # Concurrency
//
// DAG is not safe for concurrent use. Build it in one goroutine, after which
// read-only queries may be shared.
package dag
