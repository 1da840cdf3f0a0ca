package contact

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"AmigoCRM/entity"
	"AmigoCRM/internal/lib/api/response"
)

func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var contact entity.Contact
		if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		contact.UUID = id

		if err := handler.UpdateContact(&contact); err != nil {
			log.Error("Failed to update contact", slog.String("id", id), slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to update contact"))
			return
		}

		render.JSON(w, r, response.Ok(contact))
	}
}
