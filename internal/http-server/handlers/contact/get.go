package contact

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"AmigoCRM/internal/lib/api/response"
)

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		contact, err := handler.GetContact(id)
		if err != nil {
			log.Error("Failed to get contact", slog.String("id", id), slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get contact"))
			return
		}
		if contact == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Contact not found"))
			return
		}

		render.JSON(w, r, response.Ok(contact))
	}
}

// FindByPhone looks a contact up by any raw phone shape.
func FindByPhone(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := r.URL.Query().Get("phone")
		if phone == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("phone query parameter is required"))
			return
		}

		contact, err := handler.FindContactByPhone(phone)
		if err != nil {
			log.Error("Failed to find contact", slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to find contact"))
			return
		}
		if contact == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Contact not found"))
			return
		}

		render.JSON(w, r, response.Ok(contact))
	}
}
