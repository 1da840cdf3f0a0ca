package campaign

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	svc "AmigoCRM/internal/service/campaign"
	"AmigoCRM/internal/lib/api/response"
)

type Core interface {
	SendCampaign(phones []string, category, text string) (svc.Report, error)
}

type SendRequest struct {
	Phones   []string `json:"phones,omitempty"`
	Category string   `json:"category,omitempty"`
	Text     string   `json:"text"`
}

// Send runs a bulk message campaign, either over an explicit phone
// list or over every contact in a category.
func Send(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Text == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("text is required"))
			return
		}
		if len(req.Phones) == 0 && req.Category == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("phones or category is required"))
			return
		}

		report, err := handler.SendCampaign(req.Phones, req.Category, req.Text)
		if err != nil {
			log.Error("Failed to run campaign", slog.Any("error", err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to run campaign"))
			return
		}

		render.JSON(w, r, response.Ok(report))
	}
}
