package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/room", func(r chi.Router) {
		r.Post("/create/", c.createRoom)
		r.Post("/join/{code}/", c.joinRoom)
		r.Get("/{room-hash}/room-user/", c.getRoomUser)
	})

	r.Get("/movie/stream-to-client/", c.streamToClient)

	r.Get("/ws/room/{room-hash}/", c.connectRoom)

	return r
}
