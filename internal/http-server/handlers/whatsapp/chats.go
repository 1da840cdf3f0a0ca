package whatsapp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	botwa "AmigoCRM/bot/whatsapp"
	"AmigoCRM/internal/lib/api/response"
)

func Chats(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chats, err := handler.GetChats(r.Context())
		if err != nil {
			if errors.Is(err, botwa.ErrNotConnected) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(botwa.ErrNotConnected.Error()))
				return
			}
			log.Error("Failed to list chats", slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list chats"))
			return
		}

		render.JSON(w, r, response.Ok(chats))
	}
}
