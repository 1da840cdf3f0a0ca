package api

import (
	"AmigoCRM/internal/config"
	"AmigoCRM/internal/http-server/handlers/campaign"
	"AmigoCRM/internal/http-server/handlers/chat"
	"AmigoCRM/internal/http-server/handlers/contact"
	"AmigoCRM/internal/http-server/handlers/errors"
	"AmigoCRM/internal/http-server/handlers/key"
	"AmigoCRM/internal/http-server/handlers/media"
	whatsapphandler "AmigoCRM/internal/http-server/handlers/whatsapp"
	"AmigoCRM/internal/http-server/middleware/authenticate"
	"AmigoCRM/internal/http-server/middleware/timeout"
	"AmigoCRM/internal/lib/sl"
	"AmigoCRM/internal/ws"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net"
	"net/http"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	ws.Authenticator
	contact.Core
	chat.Core
	whatsapphandler.Core
	campaign.Core
	media.Core
	key.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// WebSocket and media carry their key in a query param so the
	// CRM frontend can use plain <img src> and WebSocket URLs.
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, handler, log, w, r)
	})
	router.Get("/api/v1/media/{name}", media.Download(log, handler, handler, conf.Listen.ApiKey))

	router.Group(func(v1 chi.Router) {
		v1.Use(timeout.Timeout(30))
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Use(authenticate.New(log, handler))

		v1.Route("/api/v1", func(v1 chi.Router) {
			v1.Route("/contacts", func(r chi.Router) {
				r.Get("/", contact.List(log, handler))
				r.Post("/", contact.Create(log, handler))
				r.Get("/search", contact.FindByPhone(log, handler))
				r.Get("/{id}", contact.Get(log, handler))
				r.Put("/{id}", contact.Update(log, handler))
				r.Post("/{id}/consolidate", contact.Consolidate(log, handler))
				r.Get("/{id}/conversations", contact.Conversations(log, handler))
				r.Delete("/{id}/conversations", contact.ClearConversations(log, handler))
				r.Get("/{id}/opportunities", contact.Opportunities(log, handler))
			})
			v1.Delete("/conversations/{conversation_id}", contact.DeleteConversation(log, handler))
			v1.Route("/chats", func(r chi.Router) {
				r.Get("/", chat.List(log, handler))
			})
			v1.Route("/whatsapp", func(r chi.Router) {
				r.Post("/connect", whatsapphandler.Connect(log, handler))
				r.Get("/status", whatsapphandler.Status(log, handler))
				r.Post("/send", whatsapphandler.Send(log, handler))
				r.Get("/chats", whatsapphandler.Chats(log, handler))
				r.Post("/disconnect", whatsapphandler.Disconnect(log, handler))
			})
			v1.Route("/campaign", func(r chi.Router) {
				r.Post("/send", campaign.Send(log, handler))
			})
			v1.Route("/key", func(r chi.Router) {
				r.Post("/new", key.Generate(log, handler))
			})
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
