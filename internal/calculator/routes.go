package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/evaluate", h.Evaluate)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Post("/token", h.Token)
				r.Post("/function/{name}", h.Function)
				r.Post("/action/{name}", h.Action)
				r.Put("/display", h.Display)
				r.Post("/angle-mode", h.ToggleAngleMode)

				r.Get("/history", h.History)
				r.Delete("/history", h.ClearHistory)
				r.Post("/history/{index}/select", h.SelectHistory)
			})
		})
	})
}
