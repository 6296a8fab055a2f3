package dag

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func build(t *testing.T, nodes []string, edges [][2]string) *DAG {
	t.Helper()
	g := New()
	for _, id := range nodes {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s) error: %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v) error: %v", e, err)
		}
	}
	return g
}

func TestAddErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) error = %v", err)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) error = %v", err)
	}
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(unknown from) error = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(unknown to) error = %v", err)
	}
	if n, _ := g.Node("a"); n.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestTopoSort(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []string
		edges   [][2]string
		want    []string
		wantErr bool
	}{
		{"empty", nil, nil, []string{}, false},
		{"independent keeps insertion order", []string{"c", "a", "b"}, nil, []string{"c", "a", "b"}, false},
		{"chain against insertion order", []string{"c", "b", "a"}, [][2]string{{"a", "b"}, {"b", "c"}}, []string{"a", "b", "c"}, false},
		{"diamond", []string{"d", "b", "c", "a"}, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, []string{"a", "b", "c", "d"}, false},
		{"cycle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}}, nil, true},
		{"self loop", []string{"a"}, [][2]string{{"a", "a"}}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.edges)
			got, err := g.TopoSort()
			if tt.wantErr {
				if !errors.Is(err, ErrGraphHasCycle) {
					t.Fatalf("TopoSort() error = %v, want ErrGraphHasCycle", err)
				}
				if vErr := g.Validate(); !errors.Is(vErr, ErrGraphHasCycle) {
					t.Errorf("Validate() error = %v, want ErrGraphHasCycle", vErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TopoSort() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDescendants(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"a", "d"}, {"d", "c"}},
	)

	tests := []struct {
		id   string
		want []string
	}{
		{"a", []string{"b", "d", "c"}},
		{"b", []string{"c"}},
		{"c", nil},
		{"e", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, g.Descendants(tt.id)); diff != "" {
			t.Errorf("Descendants(%s) mismatch (-want +got):\n%s", tt.id, diff)
		}
	}
}
