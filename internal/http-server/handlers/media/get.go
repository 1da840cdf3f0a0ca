package media

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"AmigoCRM/internal/http-server/middleware/authenticate"
	"AmigoCRM/internal/lib/fileurl"
	libmedia "AmigoCRM/internal/media"
)

type Core interface {
	OpenMedia(name string) ([]byte, string, error)
}

// Download serves a stored attachment.
// Endpoint: GET /api/v1/media/{name}
// Accepts auth via Authorization header, ?token= query param, or a signed
// expiring link (?expires=&sig=) so media URLs can be embedded without
// exposing the api key.
func Download(log *slog.Logger, handler Core, auth authenticate.Authenticate, signSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if !libmedia.SafeName(name) {
			http.Error(w, "invalid file name", http.StatusBadRequest)
			return
		}

		if !authorized(r, auth, name, signSecret) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		data, mimeType, err := handler.OpenMedia(name)
		if err != nil {
			log.Error("failed to open media file",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", mimeType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
		w.Write(data)
	}
}

func authorized(r *http.Request, auth authenticate.Authenticate, name, signSecret string) bool {
	key := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		key = header[7:]
	}
	if key == "" {
		key = r.URL.Query().Get("token")
	}
	if key != "" {
		_, err := auth.AuthenticateByKey(key)
		return err == nil
	}

	expires := r.URL.Query().Get("expires")
	sig := r.URL.Query().Get("sig")
	if expires == "" || sig == "" {
		return false
	}
	return fileurl.Verify(name, expires, sig, signSecret)
}
