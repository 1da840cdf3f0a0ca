package whatsapp

import (
	"AmigoCRM/internal/lib/api/response"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

func Disconnect(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handler.DisconnectWhatsApp()
		render.JSON(w, r, response.Ok("session closed"))
	}
}
