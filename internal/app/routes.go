package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"

	"github.com/vancomm/tents-server/internal/handlers"
)

// Repository is everything the handlers need from the database.
type Repository interface {
	handlers.Recorder
	handlers.PlayerRepository
	handlers.RecordRepository
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes(repo Repository) {
	game := handlers.NewGameHandler(
		a.log, a.sessions, repo, a.ws, a.params, createRand(),
	)
	auth := handlers.NewAuth(a.log, repo, a.cookies)
	records := handlers.NewRecords(a.log, repo)

	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/guess", game.Guess)
	a.router.HandleFunc("POST /game/{id}/batch", game.Batch)
	a.router.HandleFunc("POST /game/{id}/forfeit", game.Forfeit)
	a.router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)

	a.router.HandleFunc("GET /records", records.Highscores)
	a.router.HandleFunc("GET /records/{session}", records.Record)
	a.router.HandleFunc("GET /myrecords", records.PlayerHighscores)

	a.router.HandleFunc("POST /register", auth.Register)
	a.router.HandleFunc("POST /login", auth.Login)
	a.router.HandleFunc("POST /logout", auth.Logout)
	a.router.HandleFunc("GET /status", auth.Status)

	a.router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}
