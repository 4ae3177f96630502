package recipe

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreAt(owner uuid.UUID, title string, parent *Recipe, created time.Time) *Recipe {
	s := Snapshot{
		ID:        uuid.New(),
		UserID:    owner,
		Content:   Content{Title: title, VariationNote: "note"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	if parent != nil {
		id := parent.ID()
		s.ParentID = &id
	}
	return Restore(s)
}

func TestParseLineageMode(t *testing.T) {
	mode, err := ParseLineageMode("")
	require.NoError(t, err)
	assert.Equal(t, LineageAncestor, mode)

	mode, err = ParseLineageMode(" Branch ")
	require.NoError(t, err)
	assert.Equal(t, LineageBranch, mode)

	_, err = ParseLineageMode("sideways")
	assert.ErrorIs(t, err, ErrInvalidLineageMode)
}

func TestBuildTree(t *testing.T) {
	owner := uuid.New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	root := restoreAt(owner, "root", nil, t0)
	late := restoreAt(owner, "late", root, t0.Add(2*time.Hour))
	early := restoreAt(owner, "early", root, t0.Add(time.Hour))
	grandchild := restoreAt(owner, "grandchild", early, t0.Add(3*time.Hour))
	stranger := restoreAt(owner, "stranger", nil, t0)

	tree := BuildTree(root, []*Recipe{late, grandchild, early, stranger, root}, MaxLineageDepth)

	require.NotNil(t, tree)
	assert.Equal(t, 4, tree.Size())
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "early", tree.Children[0].Recipe.Title())
	assert.Equal(t, "late", tree.Children[1].Recipe.Title())
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "grandchild", tree.Children[0].Children[0].Recipe.Title())
}

func TestBuildTree_DepthCap(t *testing.T) {
	owner := uuid.New()
	now := time.Now()
	root := restoreAt(owner, "0", nil, now)
	members := []*Recipe{root}
	prev := root
	for i := 0; i < 5; i++ {
		next := restoreAt(owner, "n", prev, now)
		members = append(members, next)
		prev = next
	}

	assert.Equal(t, 3, BuildTree(root, members, 2).Size())
}

func TestChildrenOf_ExactlyDirectChildren(t *testing.T) {
	owner := uuid.New()
	now := time.Now()
	root := restoreAt(owner, "root", nil, now)
	child := restoreAt(owner, "child", root, now)
	deep := restoreAt(owner, "deep", child, now)
	deepSibling := restoreAt(owner, "deep sibling", child, now)

	got := ChildrenOf(child.ID(), []*Recipe{root, child, deep, deepSibling})

	assert.ElementsMatch(t, []*Recipe{deep, deepSibling}, got)
}

func TestListFilter_Matches(t *testing.T) {
	owner := uuid.New()
	r := Restore(Snapshot{
		ID:     uuid.New(),
		UserID: owner,
		Content: Content{
			Title:       "Ratatouille",
			DishType:    "Main",
			Tags:        []string{"Provençale", "vegan"},
			Ingredients: []IngredientLine{{Name: "Courgettes"}, {Name: "Tomates cerises"}, {Name: "Persil"}},
		},
	})

	base := ListFilter{UserID: owner}
	tests := []struct {
		name   string
		filter ListFilter
		want   bool
	}{
		{"owner only", base, true},
		{"other owner", ListFilter{UserID: uuid.New()}, false},
		{"include matches accents and case", ListFilter{UserID: owner, IncludeIngredients: []string{"TOMATES  CERISES"}}, true},
		{"include is not a substring match", ListFilter{UserID: owner, IncludeIngredients: []string{"tomate"}}, false},
		{"include missing", ListFilter{UserID: owner, IncludeIngredients: []string{"tomates cerises", "aubergine"}}, false},
		{"exclude hits", ListFilter{UserID: owner, ExcludeIngredients: []string{"courgettes"}}, false},
		{"exclude ignores partial names", ListFilter{UserID: owner, ExcludeIngredients: []string{"sel"}}, true},
		{"dish type", ListFilter{UserID: owner, DishType: "main"}, true},
		{"diet tag", ListFilter{UserID: owner, Diet: "Vegan"}, true},
		{"cuisine tag", ListFilter{UserID: owner, Cuisine: "italienne"}, false},
		{"parents only", ListFilter{UserID: owner, ParentsOnly: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Normalized().Matches(r))
		})
	}
}

func TestListFilter_NormalizedAndPage(t *testing.T) {
	f := ListFilter{Offset: -1, Limit: 1000}.Normalized()
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, MaxListLimit, f.Limit)
	assert.Equal(t, DefaultListLimit, ListFilter{}.Normalized().Limit)

	owner := uuid.New()
	recipes := []*Recipe{
		restoreAt(owner, "a", nil, time.Now()),
		restoreAt(owner, "b", nil, time.Now()),
		restoreAt(owner, "c", nil, time.Now()),
	}
	page := ListFilter{Offset: 1, Limit: 1}.Page(recipes)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Title())
	assert.Empty(t, ListFilter{Offset: 5, Limit: 1}.Page(recipes))
}
