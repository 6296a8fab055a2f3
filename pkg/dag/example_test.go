package dag_test

import (
	"fmt"

	"github.com/matzehuels/cellforge/pkg/dag"
)

func ExampleDAG_TopoSort() {
	// MP0 sits on MN0, MN1 sits right of MN0, MP1 sits on MN1 and right of MP0.
	g := dag.New()
	for _, id := range []string{"MP1", "MN0", "MP0", "MN1"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "MN0", To: "MP0"})
	_ = g.AddEdge(dag.Edge{From: "MN0", To: "MN1"})
	_ = g.AddEdge(dag.Edge{From: "MP0", To: "MP1"})
	_ = g.AddEdge(dag.Edge{From: "MN1", To: "MP1"})

	order, _ := g.TopoSort()
	fmt.Println("Order:", order)
	fmt.Println("Downstream of MP0:", g.Descendants("MP0"))
	// Output:
	// Order: [MN0 MP0 MN1 MP1]
	// Downstream of MP0: [MP1]
}

func ExampleDAG_Validate() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "a"})

	fmt.Println(g.Validate())
	// Output:
	// graph contains a cycle
}
