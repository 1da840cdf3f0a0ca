package contact

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"AmigoCRM/entity"
	"AmigoCRM/internal/lib/api/response"
)

type CreateRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Category   string `json:"category"`
	LeadSource string `json:"lead_source"`
	Notes      string `json:"notes"`
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		contact := &entity.Contact{
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			Category:   req.Category,
			LeadSource: req.LeadSource,
			Notes:      req.Notes,
		}

		created, err := handler.CreateContact(contact)
		if err != nil {
			log.Error("Failed to create contact", slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to create contact"))
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(created))
	}
}
