package extractor

import (
	"strings"
	"testing"
)

func treeDepth(n *TreeNode) int {
	max := 0
	for _, c := range n.Children {
		if d := treeDepth(c) + 1; d > max {
			max = d
		}
	}
	return max
}

func TestBuildTreeLabels(t *testing.T) {
	src := `function outer() {
  if (ready) {
    run();
  } else {
    retry();
  }
}
class Widget {
}
const cb = () => {
};
`
	root := buildTree(sanitize(strings.Split(src, "\n")))

	if root.Label != "program" {
		t.Fatalf("Expected program root, got %s", root.Label)
	}
	if len(root.Children) != 3 {
		t.Fatalf("Expected 3 top-level blocks, got %d", len(root.Children))
	}
	if root.Children[0].Label != "function" {
		t.Errorf("Expected function block, got %s", root.Children[0].Label)
	}
	if root.Children[1].Label != "class" {
		t.Errorf("Expected class block, got %s", root.Children[1].Label)
	}
	if root.Children[2].Label != "arrow" {
		t.Errorf("Expected arrow block, got %s", root.Children[2].Label)
	}

	fn := root.Children[0]
	if len(fn.Children) != 2 {
		t.Fatalf("Expected if and else under function, got %d", len(fn.Children))
	}
	if fn.Children[0].Label != "if" || fn.Children[1].Label != "else" {
		t.Errorf("Expected if/else labels, got %s/%s", fn.Children[0].Label, fn.Children[1].Label)
	}
	if fn.Children[0].Line != 2 {
		t.Errorf("Expected if block on line 2, got %d", fn.Children[0].Line)
	}
}

func TestBuildTreeDepthCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("function outer() {\n")
	for i := 0; i < 14; i++ {
		sb.WriteString("if (x) {\n")
	}
	for i := 0; i < 15; i++ {
		sb.WriteString("}\n")
	}

	root := buildTree(sanitize(strings.Split(sb.String(), "\n")))

	depth := treeDepth(root)
	if depth != maxTreeDepth {
		t.Fatalf("Expected tree capped at depth %d, got %d", maxTreeDepth, depth)
	}

	// The node sitting at the cap must be a childless stub.
	node := root
	for len(node.Children) > 0 {
		node = node.Children[0]
	}
	if node == nil {
		t.Fatal("Walk ended on a nil node")
	}
}

func TestBlockLabel(t *testing.T) {
	tests := []struct {
		segment  string
		expected string
	}{
		{"function f() ", "function"},
		{"} else ", "else"},
		{"for (let i = 0; i < n; i++) ", "for"},
		{"const h = async () => ", "arrow"},
		{"switch (kind) ", "switch"},
		{"", "block"},
		{"someObject = ", "block"},
	}
	for _, tt := range tests {
		if got := blockLabel(tt.segment); got != tt.expected {
			t.Errorf("blockLabel(%q) = %q, expected %q", tt.segment, got, tt.expected)
		}
	}
}
