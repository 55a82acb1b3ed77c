package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver/handlers"
)

func init() { Register(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	admin(r, d).Get("/infra", handlers.Infra(d))
}
