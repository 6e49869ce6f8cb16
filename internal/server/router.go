package server

import (
	"context"
	"net/http"

	"sugarbeat/internal/handlers"
	applog "sugarbeat/internal/log"
)

type route struct {
	pattern   string
	handler   http.HandlerFunc
	protected bool
}

var routes = []route{
	{pattern: "/healthz", handler: handlers.Health},
	{pattern: "/signup", handler: handlers.Signup},
	{pattern: "/login", handler: handlers.Login},
	{pattern: "/logout", handler: handlers.Logout},
	{pattern: "/api/foods/", handler: handlers.FoodResource, protected: true},
	{pattern: "/api/custom-foods", handler: handlers.CustomFoodResource, protected: true},
	{pattern: "/api/custom-foods/", handler: handlers.CustomFoodResource, protected: true},
	{pattern: "/api/recipes", handler: handlers.RecipeResource, protected: true},
	{pattern: "/api/recipes/", handler: handlers.RecipeResource, protected: true},
	{pattern: "/api/entries", handler: handlers.EntryResource, protected: true},
	{pattern: "/api/entries/", handler: handlers.EntryResource, protected: true},
	{pattern: "/api/favorites", handler: handlers.FavoriteResource, protected: true},
	{pattern: "/api/favorites/", handler: handlers.FavoriteResource, protected: true},
	{pattern: "/api/friends", handler: handlers.FriendResource, protected: true},
	{pattern: "/api/friends/", handler: handlers.FriendResource, protected: true},
	{pattern: "/api/goals", handler: handlers.GoalResource, protected: true},
	{pattern: "/api/goals/", handler: handlers.GoalResource, protected: true},
	{pattern: "/api/dashboard", handler: handlers.Dashboard, protected: true},
	{pattern: "/api/editor", handler: handlers.Editor, protected: true},
	{pattern: "/api/editor/", handler: handlers.Editor, protected: true},
}

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	for _, rt := range routes {
		var h http.Handler = rt.handler
		if rt.protected {
			h = handlers.RequireAuthentication(h)
		}
		mux.Handle(rt.pattern, h)
		applog.Debug(context.Background(), "route registered", "path", rt.pattern, "protected", rt.protected)
	}
	return mux
}
