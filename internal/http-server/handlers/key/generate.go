package key

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"AmigoCRM/internal/lib/api/response"
)

type Core interface {
	GenerateApiKey(username string) (string, error)
}

type GenerateRequest struct {
	Username string `json:"username"`
}

func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Username == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("username is required"))
			return
		}

		apiKey, err := handler.GenerateApiKey(req.Username)
		if err != nil {
			log.Error("Failed to generate api key", slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to generate api key"))
			return
		}

		var resp struct {
			Username string `json:"username"`
			ApiKey   string `json:"api_key"`
		}
		resp.Username = req.Username
		resp.ApiKey = apiKey

		render.JSON(w, r, response.Ok(resp))
	}
}
