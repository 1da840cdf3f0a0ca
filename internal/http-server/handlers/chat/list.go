package chat

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"AmigoCRM/internal/lib/api/cont"
	"AmigoCRM/internal/lib/api/response"
)

// List returns the active chat list: one row per contact with the
// latest message and the caller's unread count.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := cont.GetPrincipal(r.Context())

		chats, err := handler.GetActiveChats(principal)
		if err != nil {
			log.Error("Failed to list chats", slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list chats"))
			return
		}

		render.JSON(w, r, response.Ok(chats))
	}
}
