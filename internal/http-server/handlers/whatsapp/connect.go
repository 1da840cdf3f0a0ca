package whatsapp

import (
	"AmigoCRM/internal/lib/api/response"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

func Connect(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handler.ConnectWhatsApp(r.Context()); err != nil {
			log.Error("Failed to initialize WhatsApp session", slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to initialize WhatsApp session"))
			return
		}

		render.JSON(w, r, response.Ok(handler.WhatsAppStatus()))
	}
}
