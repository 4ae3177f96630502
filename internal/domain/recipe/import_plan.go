package recipe

import "sort"

// ImportCandidate is a recipe extracted from an imported conversation. Index
// reflects the position of its message in the conversation.
type ImportCandidate struct {
	Index   int
	Payload Payload
}

// PlannedImport is a candidate with its place in the import order
type PlannedImport struct {
	ImportIndex          int
	SuggestedParentIndex *int
	Candidate            ImportCandidate
}

// BuildImportPlan orders candidates by conversation position and suggests a
// chronological chain: each recipe descends from the one imported before it.
// The result does not depend on the input order.
func BuildImportPlan(candidates []ImportCandidate) []PlannedImport {
	sorted := append([]ImportCandidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	plan := make([]PlannedImport, len(sorted))
	for i, candidate := range sorted {
		plan[i] = PlannedImport{ImportIndex: i, Candidate: candidate}
		if i > 0 {
			parent := i - 1
			plan[i].SuggestedParentIndex = &parent
		}
	}
	return plan
}

// ResolveParents turns user selections (import index to parent import index,
// nil meaning root) into the final parent of every planned item. Items without
// a selection become roots. A parent must be committed before its child, so a
// selection may only point at an earlier import index.
func ResolveParents(plan []PlannedImport, selections map[int]*int) ([]*int, error) {
	resolved := make([]*int, len(plan))

	for importIndex, parent := range selections {
		if importIndex < 0 || importIndex >= len(plan) {
			return nil, ErrUnknownParent
		}
		if parent == nil {
			continue
		}
		switch {
		case *parent < 0 || *parent >= len(plan):
			return nil, ErrUnknownParent
		case *parent == importIndex:
			return nil, ErrSelfParent
		case *parent > importIndex:
			return nil, ErrForwardParent
		}
		p := *parent
		resolved[importIndex] = &p
	}

	return resolved, nil
}

// ValidatePlanContent checks every item before anything is written: content
// must be valid, items with a parent need a variation note and no chain may
// go deeper than MaxLineageDepth.
func ValidatePlanContent(plan []PlannedImport, parents []*int) error {
	depth := make([]int, len(plan))
	for i, item := range plan {
		content := tidy(item.Candidate.Payload.Content)
		if err := content.Validate(); err != nil {
			return err
		}
		if i >= len(parents) || parents[i] == nil {
			continue
		}
		if content.VariationNote == "" {
			return ErrVariationNoteRequired
		}
		// parents always point backwards, so depth[p] is already known
		if depth[*parents[i]] >= MaxLineageDepth {
			return ErrLineageTooDeep
		}
		depth[i] = depth[*parents[i]] + 1
	}
	return nil
}
