package engine

import (
	"fmt"
	"strings"

	"github.com/bisegni/ossql/pkg/database"
	"github.com/bisegni/ossql/pkg/types"
)

type treeNode struct {
	label    string
	children []treeNode
}

// FormatTree renders a row as a tree. Struct attributes and array
// elements become child nodes; scalars are printed inline.
func FormatTree(title string, row database.OrderedMap) string {
	root := treeNode{label: title}
	for _, kv := range row {
		root.children = append(root.children, nodeOf(kv.Key, kv.Val))
	}

	var sb strings.Builder
	sb.WriteString(root.label)
	sb.WriteString("\n")
	for i, child := range root.children {
		formatRecursive(child, "", i == len(root.children)-1, &sb)
	}
	return sb.String()
}

func nodeOf(label string, v interface{}) treeNode {
	switch x := v.(type) {
	case *types.Struct:
		if x == nil {
			return treeNode{label: label + ": null"}
		}
		n := treeNode{label: fmt.Sprintf("%s (%s)", label, x.TypeName())}
		for _, a := range x.Attributes() {
			n.children = append(n.children, nodeOf(a.Name, a.Value.Interface()))
		}
		return n
	case *types.Array:
		if x == nil {
			return treeNode{label: label + ": null"}
		}
		n := treeNode{label: fmt.Sprintf("%s [%d %s]", label, x.Len(), x.ElementType())}
		for i, e := range x.Elements() {
			n.children = append(n.children, nodeOf(fmt.Sprintf("[%d]", i), e.Interface()))
		}
		return n
	case nil:
		return treeNode{label: label + ": null"}
	case string:
		return treeNode{label: fmt.Sprintf("%s: %q", label, x)}
	}
	return treeNode{label: fmt.Sprintf("%s: %s", label, types.Format(v))}
}

func formatRecursive(n treeNode, prefix string, checkLast bool, sb *strings.Builder) {
	// Current node
	sb.WriteString(prefix)
	if checkLast {
		sb.WriteString("└─ ")
		prefix += "   "
	} else {
		sb.WriteString("├─ ")
		prefix += "│  "
	}
	sb.WriteString(n.label)
	sb.WriteString("\n")

	// Children
	for i, child := range n.children {
		isLast := i == len(n.children)-1
		formatRecursive(child, prefix, isLast, sb)
	}
}
