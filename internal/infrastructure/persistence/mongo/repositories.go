package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return outbound.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return outbound.ErrDuplicate
	}
	return err
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func owned(userID, id uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "user_id": userID.String()}
}

// RecipeRepository stores recipes with their content embedded
type RecipeRepository struct {
	store *Store
}

var _ outbound.RecipeRepository = (*RecipeRepository)(nil)

func NewRecipeRepository(store *Store) *RecipeRepository {
	return &RecipeRepository{store: store}
}

func (r *RecipeRepository) coll() *mongo.Collection { return r.store.collection(recipesCollection) }

func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	_, err := r.coll().InsertOne(ctx, toRecipeDocument(rec))
	return translateError(err)
}

func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	doc := toRecipeDocument(rec)
	result, err := r.coll().UpdateOne(ctx,
		owned(rec.UserID(), rec.ID()),
		bson.M{"$set": bson.M{
			"parent_id":  doc.ParentID,
			"dish_type":  doc.DishType,
			"content":    doc.Content,
			"updated_at": doc.UpdatedAt,
		}},
	)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

// Delete detaches the direct children and removes the recipe in one transaction
func (r *RecipeRepository) Delete(ctx context.Context, userID, id uuid.UUID) (int, error) {
	detached := 0
	err := r.store.inTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := r.coll().UpdateMany(sc,
			bson.M{"user_id": userID.String(), "parent_id": id.String()},
			bson.M{"$set": bson.M{"parent_id": nil, "updated_at": time.Now().UTC()}},
		)
		if err != nil {
			return err
		}
		detached = int(result.ModifiedCount)

		deleted, err := r.coll().DeleteOne(sc, owned(userID, id))
		if err != nil {
			return err
		}
		if deleted.DeletedCount == 0 {
			return outbound.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, translateError(err)
	}
	return detached, nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*recipe.Recipe, error) {
	var doc recipeDocument
	if err := r.coll().FindOne(ctx, owned(userID, id)).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toRecipe()
}

func (r *RecipeRepository) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	if len(ids) == 0 {
		return []*recipe.Recipe{}, nil
	}
	docs, err := findAll[recipeDocument](ctx, r.coll(),
		bson.M{"user_id": userID.String(), "_id": bson.M{"$in": idStrings(ids)}})
	if err != nil {
		return nil, err
	}
	return toRecipes(docs)
}

// List applies the structural filters, newest first
func (r *RecipeRepository) List(ctx context.Context, filter recipe.ListFilter) ([]*recipe.Recipe, error) {
	query := bson.M{"user_id": filter.UserID.String()}
	if filter.ParentsOnly {
		query["parent_id"] = nil
	}
	if filter.ParentID != nil {
		query["parent_id"] = filter.ParentID.String()
	}
	if len(filter.IDs) > 0 {
		query["_id"] = bson.M{"$in": idStrings(filter.IDs)}
	}
	if filter.DishType != "" {
		query["dish_type"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.DishType) + "$", Options: "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	docs, err := findAll[recipeDocument](ctx, r.coll(), query, opts)
	if err != nil {
		return nil, err
	}
	return toRecipes(docs)
}

// FindChildren returns direct children, oldest first
func (r *RecipeRepository) FindChildren(ctx context.Context, userID, parentID uuid.UUID) ([]*recipe.Recipe, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	docs, err := findAll[recipeDocument](ctx, r.coll(),
		bson.M{"user_id": userID.String(), "parent_id": parentID.String()}, opts)
	if err != nil {
		return nil, err
	}
	return toRecipes(docs)
}

func toRecipes(docs []recipeDocument) ([]*recipe.Recipe, error) {
	out := make([]*recipe.Recipe, len(docs))
	for i, doc := range docs {
		rec, err := doc.toRecipe()
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

// RealizationRepository stores journal entries
type RealizationRepository struct {
	store *Store
}

var _ outbound.RealizationRepository = (*RealizationRepository)(nil)

func NewRealizationRepository(store *Store) *RealizationRepository {
	return &RealizationRepository{store: store}
}

func (r *RealizationRepository) coll() *mongo.Collection {
	return r.store.collection(realizationsCollection)
}

func (r *RealizationRepository) Create(ctx context.Context, entry *journal.Realization) error {
	_, err := r.coll().InsertOne(ctx, toRealizationDocument(entry))
	return translateError(err)
}

func (r *RealizationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.coll().DeleteOne(ctx, owned(userID, id))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *RealizationRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*journal.Realization, error) {
	var doc realizationDocument
	if err := r.coll().FindOne(ctx, owned(userID, id)).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toRealization(), nil
}

func (r *RealizationRepository) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*journal.Realization, error) {
	if len(ids) == 0 {
		return []*journal.Realization{}, nil
	}
	docs, err := findAll[realizationDocument](ctx, r.coll(),
		bson.M{"user_id": userID.String(), "_id": bson.M{"$in": idStrings(ids)}})
	if err != nil {
		return nil, err
	}
	return toRealizations(docs), nil
}

// Find applies the query; From and To are inclusive
func (r *RealizationRepository) Find(ctx context.Context, q journal.Query) ([]*journal.Realization, error) {
	query := bson.M{"user_id": q.UserID.String()}
	if q.RecipeID != nil {
		query["recipe_id"] = q.RecipeID.String()
	}
	if q.From != nil || q.To != nil {
		window := bson.M{}
		if q.From != nil {
			window["$gte"] = q.From.UTC()
		}
		if q.To != nil {
			window["$lte"] = q.To.UTC()
		}
		query["realized_at"] = window
	}

	direction := -1
	if q.Sort == journal.SortAscending {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "realized_at", Value: direction}, {Key: "_id", Value: 1}})

	docs, err := findAll[realizationDocument](ctx, r.coll(), query, opts)
	if err != nil {
		return nil, err
	}
	return toRealizations(docs), nil
}

func toRealizations(docs []realizationDocument) []*journal.Realization {
	out := make([]*journal.Realization, len(docs))
	for i, doc := range docs {
		out[i] = doc.toRealization()
	}
	return out
}

// PlannedMealRepository stores calendar entries
type PlannedMealRepository struct {
	store *Store
}

var _ outbound.PlannedMealRepository = (*PlannedMealRepository)(nil)

func NewPlannedMealRepository(store *Store) *PlannedMealRepository {
	return &PlannedMealRepository{store: store}
}

func (r *PlannedMealRepository) coll() *mongo.Collection { return r.store.collection(mealsCollection) }

func (r *PlannedMealRepository) Create(ctx context.Context, m *planner.PlannedMeal) error {
	_, err := r.coll().InsertOne(ctx, toMealDocument(m))
	return translateError(err)
}

func (r *PlannedMealRepository) Update(ctx context.Context, m *planner.PlannedMeal) error {
	result, err := r.coll().ReplaceOne(ctx, owned(m.UserID, m.ID), toMealDocument(m))
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *PlannedMealRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.coll().DeleteOne(ctx, owned(userID, id))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *PlannedMealRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*planner.PlannedMeal, error) {
	var doc mealDocument
	if err := r.coll().FindOne(ctx, owned(userID, id)).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toPlannedMeal(), nil
}

func (r *PlannedMealRepository) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*planner.PlannedMeal, error) {
	if len(ids) == 0 {
		return []*planner.PlannedMeal{}, nil
	}
	docs, err := findAll[mealDocument](ctx, r.coll(),
		bson.M{"user_id": userID.String(), "_id": bson.M{"$in": idStrings(ids)}})
	if err != nil {
		return nil, err
	}
	return toPlannedMeals(docs), nil
}

func (r *PlannedMealRepository) FindInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*planner.PlannedMeal, error) {
	docs, err := findAll[mealDocument](ctx, r.coll(), bson.M{
		"user_id": userID.String(),
		"date":    bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
	})
	if err != nil {
		return nil, err
	}
	meals := toPlannedMeals(docs)
	planner.SortMeals(meals)
	return meals, nil
}

func toPlannedMeals(docs []mealDocument) []*planner.PlannedMeal {
	out := make([]*planner.PlannedMeal, len(docs))
	for i, doc := range docs {
		out[i] = doc.toPlannedMeal()
	}
	return out
}

// ShoppingItemRepository stores shopping list items
type ShoppingItemRepository struct {
	store *Store
}

var _ outbound.ShoppingItemRepository = (*ShoppingItemRepository)(nil)

func NewShoppingItemRepository(store *Store) *ShoppingItemRepository {
	return &ShoppingItemRepository{store: store}
}

func (r *ShoppingItemRepository) coll() *mongo.Collection {
	return r.store.collection(shoppingCollection)
}

// Create inserts every item or none of them
func (r *ShoppingItemRepository) Create(ctx context.Context, items ...*shopping.Item) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i, item := range items {
		docs[i] = toItemDocument(item)
	}
	err := r.store.inTransaction(ctx, func(sc mongo.SessionContext) error {
		_, err := r.coll().InsertMany(sc, docs)
		return err
	})
	return translateError(err)
}

func (r *ShoppingItemRepository) Update(ctx context.Context, item *shopping.Item) error {
	result, err := r.coll().ReplaceOne(ctx, owned(item.UserID, item.ID), toItemDocument(item))
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *ShoppingItemRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.coll().DeleteOne(ctx, owned(userID, id))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *ShoppingItemRepository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.coll().DeleteMany(ctx,
		bson.M{"user_id": userID.String(), "_id": bson.M{"$in": idStrings(ids)}})
	if err != nil {
		return 0, err
	}
	return int(result.DeletedCount), nil
}

func (r *ShoppingItemRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*shopping.Item, error) {
	var doc itemDocument
	if err := r.coll().FindOne(ctx, owned(userID, id)).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toItem(), nil
}

func (r *ShoppingItemRepository) List(ctx context.Context, userID uuid.UUID, bought *bool) ([]*shopping.Item, error) {
	query := bson.M{"user_id": userID.String()}
	if bought != nil {
		query["bought"] = *bought
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	docs, err := findAll[itemDocument](ctx, r.coll(), query, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*shopping.Item, len(docs))
	for i, doc := range docs {
		out[i] = doc.toItem()
	}
	return out, nil
}

// IngredientRepository stores the shared gallery; names are unique by index
type IngredientRepository struct {
	store *Store
}

var _ outbound.IngredientRepository = (*IngredientRepository)(nil)

func NewIngredientRepository(store *Store) *IngredientRepository {
	return &IngredientRepository{store: store}
}

func (r *IngredientRepository) coll() *mongo.Collection {
	return r.store.collection(ingredientsCollection)
}

func (r *IngredientRepository) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	_, err := r.coll().InsertOne(ctx, toIngredientDocument(ing))
	return translateError(err)
}

func (r *IngredientRepository) Update(ctx context.Context, ing *ingredient.Ingredient) error {
	result, err := r.coll().ReplaceOne(ctx, bson.M{"_id": ing.ID.String()}, toIngredientDocument(ing))
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *IngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *IngredientRepository) FindByName(ctx context.Context, canonicalName string) (*ingredient.Ingredient, error) {
	return r.findOne(ctx, bson.M{"name": canonicalName})
}

func (r *IngredientRepository) findOne(ctx context.Context, filter bson.M) (*ingredient.Ingredient, error) {
	var doc ingredientDocument
	if err := r.coll().FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toIngredient(), nil
}

func (r *IngredientRepository) FindByNames(ctx context.Context, canonicalNames []string) ([]*ingredient.Ingredient, error) {
	if len(canonicalNames) == 0 {
		return []*ingredient.Ingredient{}, nil
	}
	return r.find(ctx, bson.M{"name": bson.M{"$in": canonicalNames}})
}

func (r *IngredientRepository) List(ctx context.Context) ([]*ingredient.Ingredient, error) {
	return r.find(ctx, bson.M{})
}

func (r *IngredientRepository) find(ctx context.Context, filter bson.M) ([]*ingredient.Ingredient, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	docs, err := findAll[ingredientDocument](ctx, r.coll(), filter, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*ingredient.Ingredient, len(docs))
	for i, doc := range docs {
		out[i] = doc.toIngredient()
	}
	return out, nil
}
