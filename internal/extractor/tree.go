package extractor

import "regexp"

// maxTreeDepth caps the simplified tree view: nodes at the cap are leaf
// stubs, anything deeper is dropped entirely.
const maxTreeDepth = 10

var blockLabelRe = regexp.MustCompile(`\b(function|class|if|else|for|while|do|switch|try|catch|finally)\b|=>`)

// buildTree derives the simplified block tree from sanitized source. Each
// brace block becomes a node labeled by the construct that introduced it.
func buildTree(sanitized []string) *TreeNode {
	root := &TreeNode{Label: "program", Line: 1}
	stack := []*TreeNode{root}

	for i, line := range sanitized {
		segStart := 0
		for j := 0; j < len(line); j++ {
			switch line[j] {
			case '{':
				depth := len(stack)
				parent := stack[len(stack)-1]
				var node *TreeNode
				if parent != nil && depth <= maxTreeDepth {
					node = &TreeNode{Label: blockLabel(line[segStart:j]), Line: i + 1}
					parent.Children = append(parent.Children, node)
				}
				if depth >= maxTreeDepth {
					stack = append(stack, nil)
				} else {
					stack = append(stack, node)
				}
				segStart = j + 1
			case '}':
				if len(stack) > 1 {
					stack = stack[:len(stack)-1]
				}
				segStart = j + 1
			}
		}
	}

	return root
}

// blockLabel names a block by the last construct keyword appearing before
// its opening brace on the same line.
func blockLabel(segment string) string {
	matches := blockLabelRe.FindAllString(segment, -1)
	if len(matches) == 0 {
		return "block"
	}
	if last := matches[len(matches)-1]; last != "=>" {
		return last
	}
	return "arrow"
}
