// Package tracker composes persistence, the food provider and the nutrition
// core into the operations the HTTP layer exposes.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sugarbeat/internal/aggregate"
	applog "sugarbeat/internal/log"
	"sugarbeat/internal/nutrition"
	"sugarbeat/internal/provider"
	"sugarbeat/internal/store"
	"sugarbeat/models"
)

// ErrFoodNotFound is returned when the provider does not know a food id.
var ErrFoodNotFound = errors.New("tracker: food not found")

// Kinds of sources an item can be resolved from.
const (
	KindProvider = "provider"
	KindCustom   = "custom"
	KindRecipe   = "recipe"
	KindEntry    = "entry"
)

// favoriteLookupLimit bounds concurrent provider lookups per request.
const favoriteLookupLimit = 4

// Service is safe for concurrent use.
type Service struct {
	store    *store.Store
	provider provider.Provider
	now      func() time.Time
}

// New builds a Service.
func New(st *store.Store, p provider.Provider) *Service {
	return &Service{store: st, provider: p, now: time.Now}
}

// Store returns the underlying store.
func (s *Service) Store() *store.Store {
	return s.store
}

// Now returns the current time of the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// WithClock returns a copy of s using now as the reference clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	clone := *s
	clone.now = now
	return &clone
}

// Search queries the provider and normalizes every usable result.
func (s *Service) Search(ctx context.Context, query string) ([]nutrition.FoodItem, error) {
	if s.provider == nil {
		return nil, provider.Wrap("none", "search", 0, provider.ErrMissingCredentials)
	}
	foods, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	items := make([]nutrition.FoodItem, 0, len(foods))
	for _, food := range foods {
		item, err := nutrition.Normalize(food)
		if err != nil {
			applog.Debug(ctx, "skipping provider result", "provider", s.provider.Name(), "food_id", food.ID, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// LookupFood fetches and normalizes a provider food.
func (s *Service) LookupFood(ctx context.Context, id string) (nutrition.FoodItem, error) {
	if s.provider == nil {
		return nutrition.FoodItem{}, provider.Wrap("none", "get", 0, provider.ErrMissingCredentials)
	}
	food, found, err := s.provider.GetByID(ctx, id)
	if err != nil {
		return nutrition.FoodItem{}, err
	}
	if !found {
		return nutrition.FoodItem{}, fmt.Errorf("%w: %s", ErrFoodNotFound, id)
	}
	return nutrition.Normalize(food)
}

// FavoriteItem pairs a bookmark with its resolved canonical item.
type FavoriteItem struct {
	FavoriteID uint               `json:"favoriteId"`
	Item       nutrition.FoodItem `json:"item"`
}

// ResolveFavorites turns the user's bookmarks into canonical items. Database
// foods are looked up concurrently; a food the provider no longer knows is
// dropped.
func (s *Service) ResolveFavorites(ctx context.Context, userID uint) ([]FavoriteItem, error) {
	favorites, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}

	resolved := make([]*FavoriteItem, len(favorites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(favoriteLookupLimit)
	for i, fav := range favorites {
		switch {
		case fav.CustomFood != nil:
			item, err := nutrition.Normalize(fav.CustomFood.Source())
			if err != nil {
				applog.Warn(ctx, "dropping unusable favorite", "favorite_id", fav.ID, "error", err)
				continue
			}
			resolved[i] = &FavoriteItem{FavoriteID: fav.ID, Item: item}
		case fav.Recipe != nil:
			item, err := nutrition.Normalize(fav.Recipe.Source(nil))
			if err != nil {
				applog.Warn(ctx, "dropping unusable favorite", "favorite_id", fav.ID, "error", err)
				continue
			}
			resolved[i] = &FavoriteItem{FavoriteID: fav.ID, Item: item}
		case fav.EdamamFoodID != nil:
			favID, foodID := fav.ID, *fav.EdamamFoodID
			g.Go(func() error {
				item, err := s.LookupFood(gctx, foodID)
				if errors.Is(err, ErrFoodNotFound) {
					applog.Warn(gctx, "dropping favorite unknown to provider", "favorite_id", favID, "food_id", foodID)
					return nil
				}
				if err != nil {
					return err
				}
				resolved[i] = &FavoriteItem{FavoriteID: favID, Item: item}
				return nil
			})
		default:
			applog.Warn(ctx, "dropping favorite whose source is gone", "favorite_id", fav.ID)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]FavoriteItem, 0, len(resolved))
	for _, item := range resolved {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

// ItemForEntry rebuilds the canonical item of a logged entry for editing.
func (s *Service) ItemForEntry(ctx context.Context, userID, entryID uint) (nutrition.FoodItem, error) {
	entry, err := s.store.GetEntry(ctx, userID, entryID)
	if err != nil {
		return nutrition.FoodItem{}, err
	}
	return nutrition.Normalize(entry.Source())
}

// ItemForSource resolves a canonical item from a source kind and id.
func (s *Service) ItemForSource(ctx context.Context, userID uint, kind, id string) (nutrition.FoodItem, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == KindProvider {
		return s.LookupFood(ctx, id)
	}

	parsed, err := models.ParseID(id)
	if err != nil {
		return nutrition.FoodItem{}, &store.Error{Op: "resolve " + kind, Err: fmt.Errorf("%w: %v", store.ErrInvalid, err)}
	}
	switch kind {
	case KindCustom:
		food, err := s.store.GetCustomFood(ctx, userID, parsed)
		if err != nil {
			return nutrition.FoodItem{}, err
		}
		return nutrition.Normalize(food.Source())
	case KindRecipe:
		recipe, err := s.store.GetRecipe(ctx, userID, parsed)
		if err != nil {
			return nutrition.FoodItem{}, err
		}
		return nutrition.Normalize(recipe.Source(nil))
	case KindEntry:
		return s.ItemForEntry(ctx, userID, parsed)
	default:
		return nutrition.FoodItem{}, &store.Error{Op: "resolve item", Err: fmt.Errorf("%w: unknown kind %q", store.ErrInvalid, kind)}
	}
}

// LogItem persists item as a new entry. The item's category decides which
// reference column is set.
func (s *Service) LogItem(ctx context.Context, userID uint, item nutrition.FoodItem) (*models.FoodEntry, error) {
	in := store.EntryInput{
		Name:        item.Label,
		ServingSize: item.ServingSize,
		ServingUnit: item.ServingSizeUnit,
		Calories:    item.Value(nutrition.Calories),
		Protein:     item.Value(nutrition.Protein),
		AddedSugar:  item.Value(nutrition.AddedSugar),
	}

	foodID := strings.TrimSpace(item.FoodID)
	if foodID != "" {
		switch item.Category {
		case nutrition.CategoryCustomFood:
			id, err := models.ParseID(foodID)
			if err != nil {
				return nil, &store.Error{Op: "log item", Err: fmt.Errorf("%w: %v", store.ErrInvalid, err)}
			}
			if _, err := s.store.GetCustomFood(ctx, userID, id); err != nil {
				return nil, err
			}
			in.CustomFoodID = &id
		case nutrition.CategoryRecipe:
			id, err := models.ParseID(foodID)
			if err != nil {
				return nil, &store.Error{Op: "log item", Err: fmt.Errorf("%w: %v", store.ErrInvalid, err)}
			}
			if _, err := s.store.GetRecipe(ctx, userID, id); err != nil {
				return nil, err
			}
			in.RecipeID = &id
		default:
			in.EdamamFoodID = &foodID
		}
	}

	entry, err := s.store.LogEntry(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	applog.Info(ctx, "entry logged", "user_id", userID, "entry_id", entry.ID, "category", item.Category)
	return entry, nil
}

// SaveEntryEdit writes an edited item back onto its entry.
func (s *Service) SaveEntryEdit(ctx context.Context, userID, entryID uint, item nutrition.FoodItem) (*models.FoodEntry, error) {
	return s.store.UpdateEntry(ctx, userID, entryID, store.EntryPatch{
		ServingSize: item.ServingSize,
		ServingUnit: item.ServingSizeUnit,
		Calories:    item.Value(nutrition.Calories),
		Protein:     item.Value(nutrition.Protein),
		AddedSugar:  item.Value(nutrition.AddedSugar),
	})
}

// Entries returns the user's entries for ref's day, or ref's week when week
// is set.
func (s *Service) Entries(ctx context.Context, userID uint, ref time.Time, week bool) ([]models.FoodEntry, error) {
	window := aggregate.DayBounds(ref)
	if week {
		window = aggregate.WeekBounds(ref)
	}
	return s.store.ListEntriesBetween(ctx, userID, window.Start, window.End)
}

// Dashboard loads goals and the week's entries concurrently and summarizes
// them around ref.
func (s *Service) Dashboard(ctx context.Context, userID uint, ref time.Time) (aggregate.Summary, error) {
	var (
		goals   []models.UserGoal
		entries []models.FoodEntry
	)
	week := aggregate.WeekBounds(ref)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = s.store.ActiveGoals(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.store.ListEntriesBetween(gctx, userID, week.Start, week.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return aggregate.Summary{}, err
	}
	return aggregate.Summarize(entries, goals, ref), nil
}

// FriendLog returns a friend's summary. Viewers who are not accepted friends
// get store.ErrForbidden.
func (s *Service) FriendLog(ctx context.Context, viewerID, friendID uint, ref time.Time) (aggregate.Summary, error) {
	friends, err := s.store.AreFriends(ctx, viewerID, friendID)
	if err != nil {
		return aggregate.Summary{}, err
	}
	if !friends {
		return aggregate.Summary{}, &store.Error{Op: "friend log", Err: store.ErrForbidden}
	}
	return s.Dashboard(ctx, friendID, ref)
}
