package contact

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"AmigoCRM/internal/lib/api/response"
)

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := handler.ListContacts()
		if err != nil {
			log.Error("Failed to list contacts", slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list contacts"))
			return
		}

		render.JSON(w, r, response.Ok(contacts))
	}
}
