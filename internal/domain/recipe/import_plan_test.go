package recipe

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func candidates(indexes ...int) []ImportCandidate {
	out := make([]ImportCandidate, len(indexes))
	for i, idx := range indexes {
		out[i] = ImportCandidate{
			Index:   idx,
			Payload: NormalizePayload(map[string]any{"title": "recipe", "variationNote": "v"}),
		}
	}
	return out
}

func planShape(plan []PlannedImport) [][3]int {
	shape := make([][3]int, len(plan))
	for i, item := range plan {
		parent := -1
		if item.SuggestedParentIndex != nil {
			parent = *item.SuggestedParentIndex
		}
		shape[i] = [3]int{item.ImportIndex, parent, item.Candidate.Index}
	}
	return shape
}

func TestBuildImportPlan_ChronologicalChain(t *testing.T) {
	plan := BuildImportPlan(candidates(7, 2, 11))

	require.Len(t, plan, 3)
	assert.Equal(t, [][3]int{{0, -1, 2}, {1, 0, 7}, {2, 1, 11}}, planShape(plan))
}

func TestBuildImportPlan_IndependentOfInputOrder(t *testing.T) {
	base := candidates(3, 8, 1, 5, 13, 21)
	want := planShape(BuildImportPlan(base))
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		shuffled := append([]ImportCandidate(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := planShape(BuildImportPlan(shuffled))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("plan depends on input order (-want +got):\n%s", diff)
		}
	}
}

func TestBuildImportPlan_Empty(t *testing.T) {
	assert.Empty(t, BuildImportPlan(nil))
}

func TestResolveParents(t *testing.T) {
	plan := BuildImportPlan(candidates(0, 1, 2, 3))

	t.Run("UnsetBecomesRoot", func(t *testing.T) {
		parents, err := ResolveParents(plan, map[int]*int{2: intPtr(0), 1: nil})

		require.NoError(t, err)
		assert.Equal(t, []*int{nil, nil, intPtr(0), nil}, parents)
	})

	t.Run("SelfParent", func(t *testing.T) {
		_, err := ResolveParents(plan, map[int]*int{1: intPtr(1)})
		assert.ErrorIs(t, err, ErrSelfParent)
	})

	t.Run("ForwardParent", func(t *testing.T) {
		_, err := ResolveParents(plan, map[int]*int{1: intPtr(3)})
		assert.ErrorIs(t, err, ErrForwardParent)
	})

	t.Run("UnknownParent", func(t *testing.T) {
		_, err := ResolveParents(plan, map[int]*int{1: intPtr(9)})
		assert.ErrorIs(t, err, ErrUnknownParent)

		_, err = ResolveParents(plan, map[int]*int{9: intPtr(0)})
		assert.ErrorIs(t, err, ErrUnknownParent)
	})
}

func TestValidatePlanContent_RequiresNoteForChildren(t *testing.T) {
	plan := BuildImportPlan([]ImportCandidate{
		{Index: 0, Payload: NormalizePayload(map[string]any{"title": "Base"})},
		{Index: 1, Payload: NormalizePayload(map[string]any{"title": "Variante"})},
	})

	assert.NoError(t, ValidatePlanContent(plan, []*int{nil, nil}))
	assert.ErrorIs(t, ValidatePlanContent(plan, []*int{nil, intPtr(0)}), ErrVariationNoteRequired)
}

func TestValidatePlanContent_RejectsChainsBeyondMaxDepth(t *testing.T) {
	chain := func(n int) ([]PlannedImport, []*int) {
		candidates := make([]ImportCandidate, n)
		for i := range candidates {
			candidates[i] = ImportCandidate{Index: i, Payload: NormalizePayload(map[string]any{
				"title":         "Step",
				"variationNote": "next",
			})}
		}
		plan := BuildImportPlan(candidates)
		parents := make([]*int, n)
		for i := range plan {
			parents[i] = plan[i].SuggestedParentIndex
		}
		return plan, parents
	}

	plan, parents := chain(MaxLineageDepth + 1)
	assert.NoError(t, ValidatePlanContent(plan, parents))

	plan, parents = chain(MaxLineageDepth + 2)
	assert.ErrorIs(t, ValidatePlanContent(plan, parents), ErrLineageTooDeep)
}
