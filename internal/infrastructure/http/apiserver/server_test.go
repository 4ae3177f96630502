package apiserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/application/ingredient"
	"github.com/alchemorsel/cookbook/internal/application/journal"
	"github.com/alchemorsel/cookbook/internal/application/planner"
	"github.com/alchemorsel/cookbook/internal/application/recipe"
	"github.com/alchemorsel/cookbook/internal/application/shopping"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	gormrepo "github.com/alchemorsel/cookbook/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/infrastructure/storage"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
	"github.com/alchemorsel/cookbook/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// APIServerTestSuite drives the full router against an in-memory SQLite store
type APIServerTestSuite struct {
	suite.Suite
	handler http.Handler
	token   string
	userID  uuid.UUID
	cleanup *testutils.CleanupCounter
	cache   *memory.CacheRepository
}

func (s *APIServerTestSuite) SetupTest() {
	log := zap.NewNop()
	db := testutils.SetupSQLite(s.T())

	recipes := gormrepo.NewRecipeRepository(db)
	realizations := gormrepo.NewRealizationRepository(db)
	meals := gormrepo.NewPlannedMealRepository(db)
	items := gormrepo.NewShoppingItemRepository(db)
	ingredients := gormrepo.NewIngredientRepository(db)
	s.cleanup = &testutils.CleanupCounter{}
	s.cache = memory.NewCacheRepository(time.Minute)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "cookbook", Version: "test"},
		Server: config.ServerConfig{Port: 8080, MaxBodyBytes: 1 << 20},
		Auth:   config.AuthConfig{JWTSecret: "api-server-test-secret", JWTExpiration: time.Hour},
	}
	tokens := security.NewTokenService(cfg.Auth, log)

	s.userID = uuid.New()
	var err error
	s.token, _, err = tokens.GenerateAccessToken(s.userID, "chef@example.com")
	s.Require().NoError(err)

	health := healthcheck.New("test", log)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	health.Register("database", healthcheck.NewPingChecker(sqlDB.PingContext, time.Second))

	server := NewAPIServer(cfg, log, Services{
		Recipes:     recipe.NewRecipeService(recipes, &testutils.MockRecipeStructurer{}, storage.Disabled{}, &testutils.EventRecorder{}, log),
		Journal:     journal.NewJournalService(realizations, recipes, log),
		Planner:     planner.NewPlannerService(meals, realizations, recipes, log),
		Shopping:    shopping.NewShoppingService(items, realizations, meals, s.cleanup, log),
		Ingredients: ingredient.NewIngredientService(ingredients, recipes, items, testutils.StaticDataset{}, nil, s.cache, log),
	}, tokens, Options{
		Metrics: monitoring.NewMetricsCollector(log),
		Health:  health,
	})
	s.handler = server.Handler()
}

func (s *APIServerTestSuite) TearDownTest() {
	s.cache.Close()
}

func (s *APIServerTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APIServerTestSuite) decode(rec *httptest.ResponseRecorder, want int, dst interface{}) {
	s.Require().Equal(want, rec.Code, rec.Body.String())
	if dst != nil {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), dst))
	}
}

func (s *APIServerTestSuite) createRecipe(payload map[string]any) string {
	var created struct {
		ID string `json:"id"`
	}
	s.decode(s.do(http.MethodPost, "/api/recipes", payload), http.StatusCreated, &created)
	return created.ID
}

func (s *APIServerTestSuite) TestRequiresToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	rec := httptest.NewRecorder()

	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APIServerTestSuite) TestOperationalRoutes() {
	for _, path := range []string{"/health", "/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		s.Equal(http.StatusOK, rec.Code, path)
	}
}

func (s *APIServerTestSuite) TestRecipeLineage() {
	// Arrange
	parentID := s.createRecipe(map[string]any{"title": " Tarte ", "ingredients": []any{map[string]any{"name": "pommes"}}})
	childID := s.createRecipe(map[string]any{"title": "Tarte fine", "parentId": parentID, "variationNote": "pâte feuilletée"})

	// Act
	var children struct {
		Recipes []struct {
			ID       string `json:"id"`
			ParentID string `json:"parentId"`
		} `json:"recipes"`
	}
	s.decode(s.do(http.MethodGet, "/api/recipes/"+parentID+"/children", nil), http.StatusOK, &children)

	var tree struct {
		Recipe   struct{ ID string } `json:"recipe"`
		Children []struct {
			Recipe struct{ ID string } `json:"recipe"`
		} `json:"children"`
	}
	s.decode(s.do(http.MethodGet, "/api/recipes/"+childID+"/lineage?mode=ancestor", nil), http.StatusOK, &tree)

	// Assert
	s.Require().Len(children.Recipes, 1)
	s.Equal(childID, children.Recipes[0].ID)
	s.Equal(parentID, tree.Recipe.ID)
	s.Require().Len(tree.Children, 1)
	s.Equal(childID, tree.Children[0].Recipe.ID)
}

func (s *APIServerTestSuite) TestVariationRequiresNote() {
	parentID := s.createRecipe(map[string]any{"title": "Soupe"})

	rec := s.do(http.MethodPost, "/api/recipes", map[string]any{"title": "Soupe froide", "parentId": parentID})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "VALIDATION_FAILED")
}

func (s *APIServerTestSuite) TestDeleteDetachesChildren() {
	parentID := s.createRecipe(map[string]any{"title": "Pain"})
	s.createRecipe(map[string]any{"title": "Pain complet", "parentId": parentID, "variationNote": "farine complète"})

	var result struct {
		Deleted          bool `json:"deleted"`
		DetachedChildren int  `json:"detachedChildren"`
	}
	s.decode(s.do(http.MethodDelete, "/api/recipes/"+parentID, nil), http.StatusOK, &result)

	s.True(result.Deleted)
	s.Equal(1, result.DetachedChildren)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/recipes/"+parentID, nil).Code)
}

func (s *APIServerTestSuite) TestImportPlanAndCommit() {
	candidates := []map[string]any{
		{"index": 7, "recipe": map[string]any{"title": "Crêpes v2"}},
		{"index": 3, "recipe": map[string]any{"title": "Crêpes"}},
	}

	var plan struct {
		Items []struct {
			ImportIndex          int  `json:"importIndex"`
			SuggestedParentIndex *int `json:"suggestedParentIndex"`
			Index                int  `json:"index"`
		} `json:"items"`
	}
	s.decode(s.do(http.MethodPost, "/api/recipes/import/plan", map[string]any{"candidates": candidates}), http.StatusOK, &plan)

	s.Require().Len(plan.Items, 2)
	s.Equal(3, plan.Items[0].Index)
	s.Nil(plan.Items[0].SuggestedParentIndex)
	s.Require().NotNil(plan.Items[1].SuggestedParentIndex)
	s.Equal(0, *plan.Items[1].SuggestedParentIndex)

	var committed struct {
		Recipes []struct {
			ID       string  `json:"id"`
			ParentID *string `json:"parentId"`
		} `json:"recipes"`
	}
	s.decode(s.do(http.MethodPost, "/api/recipes/import/commit", map[string]any{
		"candidates":       candidates,
		"parentSelections": map[string]any{"0": nil, "1": nil},
	}), http.StatusCreated, &committed)

	s.Require().Len(committed.Recipes, 2)
	s.Nil(committed.Recipes[0].ParentID)
	s.Nil(committed.Recipes[1].ParentID)
}

func (s *APIServerTestSuite) TestCalendarRange() {
	// Arrange
	recipeID := s.createRecipe(map[string]any{"title": "Ratatouille", "dishType": "plat"})
	for _, at := range []string{"2024-01-03T10:00:00Z", "2024-01-08T10:00:00Z"} {
		s.decode(s.do(http.MethodPost, "/api/journal", map[string]any{"recipeId": recipeID, "realizedAt": at}), http.StatusCreated, nil)
	}
	s.decode(s.do(http.MethodPost, "/api/meal-planner/planned-meals", map[string]any{
		"date": "2024-01-07", "slot": "lunch", "recipeId": recipeID,
	}), http.StatusCreated, nil)

	// Act
	var calendar struct {
		Realizations []struct {
			Date string `json:"date"`
		} `json:"realizations"`
		PlannedMeals []struct {
			Date           string `json:"date"`
			RecipeDishType string `json:"recipeDishType"`
		} `json:"plannedMeals"`
	}
	s.decode(s.do(http.MethodGet, "/api/meal-planner/calendar?from=2024-01-01&to=2024-01-07", nil), http.StatusOK, &calendar)

	// Assert
	s.Require().Len(calendar.Realizations, 1)
	s.Equal("2024-01-03", calendar.Realizations[0].Date)
	s.Require().Len(calendar.PlannedMeals, 1)
	s.Equal("2024-01-07", calendar.PlannedMeals[0].Date)
	s.Equal("plat", calendar.PlannedMeals[0].RecipeDishType)
}

func (s *APIServerTestSuite) TestPlannedMealRejectsUnknownSlot() {
	rec := s.do(http.MethodPost, "/api/meal-planner/planned-meals", map[string]any{
		"date": "2024-01-07", "slot": "brunch", "recipeTitle": "Oeufs",
	})

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APIServerTestSuite) TestShoppingCleanupRemovesYesterdaysItems() {
	// Arrange
	recipeID := s.createRecipe(map[string]any{"title": "Quiche"})
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.RFC3339)

	var realization struct {
		ID string `json:"id"`
	}
	s.decode(s.do(http.MethodPost, "/api/journal", map[string]any{"recipeId": recipeID, "realizedAt": yesterday}), http.StatusCreated, &realization)

	var batch struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	s.decode(s.do(http.MethodPost, "/api/shopping-list", map[string]any{"items": []map[string]any{
		{"name": "oeufs", "quantity": 6, "sourceRealizationId": realization.ID},
		{"name": "lait"},
	}}), http.StatusCreated, &batch)
	s.Require().Len(batch.Items, 2)

	// Act
	var list struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	s.decode(s.do(http.MethodGet, "/api/shopping-list", nil), http.StatusOK, &list)

	// Assert
	s.Require().Len(list.Items, 1)
	s.Equal("lait", list.Items[0].Name)
	s.Equal(1, s.cleanup.Total)
}

func (s *APIServerTestSuite) TestShoppingItemPatch() {
	type shoppingItem struct {
		ID       string   `json:"id"`
		Quantity *float64 `json:"quantity"`
		Unit     string   `json:"unit"`
		Bought   bool     `json:"bought"`
	}
	var created shoppingItem
	s.decode(s.do(http.MethodPost, "/api/shopping-list", map[string]any{"name": "farine", "quantity": 1, "unit": "kg"}), http.StatusCreated, &created)
	s.Require().NotNil(created.Quantity)

	var patched shoppingItem
	s.decode(s.do(http.MethodPatch, "/api/shopping-list/"+created.ID, map[string]any{"bought": true, "quantity": nil}), http.StatusOK, &patched)

	s.True(patched.Bought)
	s.Nil(patched.Quantity)
	s.Equal("kg", patched.Unit)

	var list struct {
		Items []shoppingItem `json:"items"`
	}
	s.decode(s.do(http.MethodGet, "/api/shopping-list", nil), http.StatusOK, &list)
	s.Require().Len(list.Items, 1)
	s.Equal(created.ID, list.Items[0].ID)
	s.True(list.Items[0].Bought)
	s.Nil(list.Items[0].Quantity)

	s.Equal(http.StatusNotFound, s.do(http.MethodPatch, "/api/shopping-list/"+uuid.NewString(), map[string]any{"bought": true}).Code)
}

func (s *APIServerTestSuite) TestIngredientGallery() {
	var first, second struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	s.decode(s.do(http.MethodPost, "/api/ingredients", map[string]any{"name": "Crème fraîche"}), http.StatusCreated, &first)
	s.decode(s.do(http.MethodPost, "/api/ingredients", map[string]any{"name": "creme  FRAICHE"}), http.StatusOK, &second)
	s.Equal(first.ID, second.ID)

	rec := s.do(http.MethodPost, "/api/ingredients/"+first.ID+"/enrich-usda", nil)
	s.Equal(http.StatusServiceUnavailable, rec.Code)

	rec = s.do(http.MethodPost, "/api/ingredients/"+first.ID+"/enrich-usda?refresh=sometimes", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func TestAPIServerTestSuite(t *testing.T) {
	suite.Run(t, new(APIServerTestSuite))
}
