package whatsapp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	botwa "AmigoCRM/bot/whatsapp"
	"AmigoCRM/internal/lib/api/response"
	"AmigoCRM/internal/phone"
)

type SendRequest struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

func Send(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Phone == "" || req.Text == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("phone and text are required"))
			return
		}

		err := handler.SendWhatsAppMessage(r.Context(), req.Phone, req.Text)
		switch {
		case err == nil:
			render.JSON(w, r, response.Ok("message sent"))
		case errors.Is(err, botwa.ErrNotConnected):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error(botwa.ErrNotConnected.Error()))
		case errors.Is(err, botwa.ErrUnregisteredRecipient):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Recipient is not registered on WhatsApp"))
		case errors.Is(err, phone.ErrUnresolvableIdentity):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Destination is not a valid phone"))
		default:
			log.Error("Failed to send message", slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to send message"))
		}
	}
}
