package recipe

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// MaxLineageDepth bounds every lineage walk so corrupt data cannot loop
const MaxLineageDepth = 32

// LineageMode selects how much of a lineage is shown around a recipe
type LineageMode string

const (
	// LineageAncestor shows the full descendant tree of the lineage root
	LineageAncestor LineageMode = "ancestor"
	// LineageBranch shows the parent with its direct children
	LineageBranch LineageMode = "branch"
)

// ParseLineageMode parses a mode, defaulting to ancestor
func ParseLineageMode(value string) (LineageMode, error) {
	switch LineageMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", LineageAncestor:
		return LineageAncestor, nil
	case LineageBranch:
		return LineageBranch, nil
	}
	return "", ErrInvalidLineageMode
}

// LineageNode is a recipe with its variations
type LineageNode struct {
	Recipe   *Recipe
	Children []*LineageNode
}

// Size counts the recipes in the tree
func (n *LineageNode) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, child := range n.Children {
		size += child.Size()
	}
	return size
}

// BuildTree arranges members under root by parent id. Members not connected
// to root are ignored, children are ordered oldest first, and depth is capped
// at maxDepth levels below root.
func BuildTree(root *Recipe, members []*Recipe, maxDepth int) *LineageNode {
	if root == nil {
		return nil
	}

	byParent := make(map[uuid.UUID][]*Recipe)
	for _, m := range members {
		if m == nil || m.parentID == nil || m.id == root.id {
			continue
		}
		byParent[*m.parentID] = append(byParent[*m.parentID], m)
	}
	for _, siblings := range byParent {
		sort.SliceStable(siblings, func(i, j int) bool {
			return siblings[i].createdAt.Before(siblings[j].createdAt)
		})
	}

	visited := map[uuid.UUID]bool{root.id: true}
	var grow func(r *Recipe, depth int) *LineageNode
	grow = func(r *Recipe, depth int) *LineageNode {
		node := &LineageNode{Recipe: r}
		if depth >= maxDepth {
			return node
		}
		for _, child := range byParent[r.id] {
			if visited[child.id] {
				continue
			}
			visited[child.id] = true
			node.Children = append(node.Children, grow(child, depth+1))
		}
		return node
	}

	return grow(root, 0)
}

// ChildrenOf returns the members whose parent is parentID, preserving order
func ChildrenOf(parentID uuid.UUID, members []*Recipe) []*Recipe {
	var out []*Recipe
	for _, m := range members {
		if m.parentID != nil && *m.parentID == parentID {
			out = append(out, m)
		}
	}
	return out
}
