package contact

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"AmigoCRM/internal/lib/api/response"
)

type ConsolidateRequest struct {
	SurvivorID string `json:"survivor_id"`
}

// Consolidate merges a duplicate contact into a survivor: the
// duplicate's conversations and opportunities move to the survivor
// before the duplicate is removed.
func Consolidate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req ConsolidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.SurvivorID == "" || req.SurvivorID == id {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("survivor_id must name a different contact"))
			return
		}

		if err := handler.ConsolidateContacts(id, req.SurvivorID); err != nil {
			log.Error("Failed to consolidate contacts",
				slog.String("id", id),
				slog.String("survivor", req.SurvivorID),
				slog.Any("error", err),
			)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to consolidate contacts"))
			return
		}

		render.JSON(w, r, response.Ok("contacts consolidated"))
	}
}
