// Package mock provides an in-memory sqlite database seeded with demo data
// for local runs.
package mock

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sugarbeat/internal/db"
	applog "sugarbeat/internal/log"
	"sugarbeat/internal/store"
	"sugarbeat/models"
)

const (
	DemoEmail    = "demo@sugarbeat.app"
	DemoPassword = "sugarbeat"
	FriendEmail  = "riley@sugarbeat.app"
)

// New returns an in-memory sqlite database seeded with a demo user, their
// foods, a week of entries and goals, and an accepted friend.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:sugarbeat-mock?mode=memory&cache=shared"), db.GormConfig(logger.Silent))
	if err != nil {
		return nil, err
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	var users int64
	if err := database.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return nil, err
	}
	if users == 0 {
		if err := seed(ctx, store.New(database), time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

type seedEntry struct {
	daysAgo    int
	hour       int
	name       string
	size       float64
	unit       string
	calories   float64
	protein    float64
	addedSugar float64
}

func seed(ctx context.Context, st *store.Store, now time.Time) error {
	applog.Debug(ctx, "seeding mock database")

	demo, err := st.CreateUser(ctx, DemoEmail, "Demo Eater", DemoPassword)
	if err != nil {
		return err
	}
	friend, err := st.CreateUser(ctx, FriendEmail, "Riley", DemoPassword)
	if err != nil {
		return err
	}

	granola, err := st.CreateCustomFood(ctx, demo.ID, store.CustomFoodInput{
		Name:        "Homemade Granola",
		ServingSize: 50,
		ServingUnit: "g",
		IsShared:    true,
		NutritionValues: models.NutritionValues{
			"calories":    {Quantity: 230, Unit: "kcal"},
			"protein":     {Quantity: 6, Unit: "g"},
			"sugar":       {Quantity: 11, Unit: "g"},
			"added_sugar": {Quantity: 8, Unit: "g"},
			"carbs":       {Quantity: 31, Unit: "g"},
			"fat":         {Quantity: 9, Unit: "g"},
		},
	})
	if err != nil {
		return err
	}
	yogurt, err := st.CreateCustomFood(ctx, demo.ID, store.CustomFoodInput{
		Name:        "Plain Greek Yogurt",
		ServingSize: 170,
		ServingUnit: "g",
		NutritionValues: models.NutritionValues{
			"calories": {Quantity: 100, Unit: "kcal"},
			"protein":  {Quantity: 17, Unit: "g"},
			"sugar":    {Quantity: 6, Unit: "g"},
		},
	})
	if err != nil {
		return err
	}

	oats := "food_a1gb9ubb72c7snbuxr3weagwv0dd"
	parfait, err := st.CreateRecipe(ctx, demo.ID, store.RecipeInput{
		Name:        "Breakfast Parfait",
		Description: "Yogurt layered with granola.",
		Servings:    1,
		IsShared:    true,
		Ingredients: []store.IngredientInput{
			{Amount: 170, Unit: "g", CustomFoodID: &yogurt.ID},
			{Amount: 25, Unit: "g", CustomFoodID: &granola.ID},
			{Amount: 10, Unit: "g", EdamamFoodID: &oats},
		},
	})
	if err != nil {
		return err
	}

	if _, err := st.AddFavorite(ctx, demo.ID, store.FavoriteInput{Name: granola.Name, CustomFoodID: &granola.ID}); err != nil {
		return err
	}
	if _, err := st.AddFavorite(ctx, demo.ID, store.FavoriteInput{Name: parfait.Name, RecipeID: &parfait.ID}); err != nil {
		return err
	}

	if _, err := st.CreateGoal(ctx, demo.ID, store.GoalInput{GoalType: models.GoalAddedSugar, TargetValue: 25, Timeframe: models.TimeframeDaily}); err != nil {
		return err
	}
	if _, err := st.CreateGoal(ctx, demo.ID, store.GoalInput{GoalType: models.GoalCalories, TargetValue: 14000, Timeframe: models.TimeframeWeekly}); err != nil {
		return err
	}
	if _, err := st.CreateGoal(ctx, friend.ID, store.GoalInput{GoalType: models.GoalAddedSugar, TargetValue: 30, Timeframe: models.TimeframeDaily}); err != nil {
		return err
	}

	entries := []seedEntry{
		{daysAgo: 0, hour: 8, name: "Breakfast Parfait", size: 1, unit: "serving", calories: 215, protein: 20, addedSugar: 4},
		{daysAgo: 0, hour: 13, name: "Cola", size: 330, unit: "ml", calories: 139, addedSugar: 35},
		{daysAgo: 1, hour: 9, name: "Homemade Granola", size: 50, unit: "g", calories: 230, protein: 6, addedSugar: 8},
		{daysAgo: 2, hour: 19, name: "Dark Chocolate", size: 20, unit: "g", calories: 120, protein: 2, addedSugar: 6},
	}
	for _, e := range entries {
		at := time.Date(now.Year(), now.Month(), now.Day()-e.daysAgo, e.hour, 0, 0, 0, time.UTC)
		in := store.EntryInput{
			Name:        e.name,
			ServingSize: e.size,
			ServingUnit: e.unit,
			Calories:    e.calories,
			Protein:     e.protein,
			AddedSugar:  e.addedSugar,
		}
		switch e.name {
		case parfait.Name:
			in.RecipeID = &parfait.ID
		case granola.Name:
			in.CustomFoodID = &granola.ID
		}
		if _, err := st.WithClock(func() time.Time { return at }).LogEntry(ctx, demo.ID, in); err != nil {
			return err
		}
	}
	if _, err := st.LogEntry(ctx, friend.ID, store.EntryInput{Name: "Iced Latte", ServingSize: 350, ServingUnit: "ml", Calories: 190, Protein: 9, AddedSugar: 18}); err != nil {
		return err
	}

	conn, err := st.SendFriendRequest(ctx, friend.ID, demo.ID)
	if err != nil {
		return err
	}
	if _, err := st.AcceptFriendRequest(ctx, demo.ID, conn.ID); err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded", "user_id", demo.ID, "friend_id", friend.ID)
	return nil
}
