package contact

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"AmigoCRM/internal/lib/api/response"
)

func Conversations(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		conversations, err := handler.ListConversations(id)
		if err != nil {
			log.Error("Failed to list conversations", slog.String("id", id), slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list conversations"))
			return
		}

		render.JSON(w, r, response.Ok(conversations))
	}
}

// ClearConversations removes a contact's entire history. Responds
// with the number of deleted records.
func ClearConversations(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		deleted, err := handler.ClearConversations(id)
		if err != nil {
			log.Error("Failed to clear conversations", slog.String("id", id), slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to clear conversations"))
			return
		}

		render.JSON(w, r, response.Ok(map[string]int64{"deleted": deleted}))
	}
}

func DeleteConversation(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "conversation_id")

		if err := handler.DeleteConversation(id); err != nil {
			log.Error("Failed to delete conversation", slog.String("id", id), slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to delete conversation"))
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}

func Opportunities(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		opportunities, err := handler.ListOpportunities(id)
		if err != nil {
			log.Error("Failed to list opportunities", slog.String("id", id), slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list opportunities"))
			return
		}

		render.JSON(w, r, response.Ok(opportunities))
	}
}
