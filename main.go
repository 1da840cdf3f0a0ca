package main

import (
	"AmigoCRM/bot"
	"AmigoCRM/bot/whatsapp"
	"AmigoCRM/bot/whatsapp/meow"
	"AmigoCRM/impl/core"
	"AmigoCRM/internal/config"
	repository "AmigoCRM/internal/database"
	"AmigoCRM/internal/http-server/api"
	"AmigoCRM/internal/lib/logger"
	"AmigoCRM/internal/lib/sl"
	"AmigoCRM/internal/media"
	"AmigoCRM/internal/phone"
	"AmigoCRM/internal/service/campaign"
	"AmigoCRM/internal/service/contact"
	"AmigoCRM/internal/ws"
	"flag"
	"log/slog"
	"time"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Initialize Telegram bot if enabled
	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
		} else {
			// Set up Telegram handler for the logger
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting amigocrm", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg)
	handler.SetAuthKey(conf.Listen.ApiKey)

	phones := phone.NewNormalizer(conf.WhatsApp.CountryCode, conf.WhatsApp.MobilePrefix)
	handler.SetPhones(phones)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db == nil {
		lg.Error("mongo is required, check the mongo section of the config")
		return
	}
	handler.SetRepository(db)
	lg.With(
		slog.String("host", conf.Mongo.Host),
		slog.String("port", conf.Mongo.Port),
		slog.String("user", conf.Mongo.User),
		slog.String("database", conf.Mongo.Database),
	).Info("mongo client initialized")

	mediaStore, err := media.NewStore(conf.WhatsApp.MediaPath)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("media store")
		return
	}
	handler.SetMediaStore(mediaStore)

	resolver := contact.NewResolver(db, phones, lg)
	handler.SetResolver(resolver)

	reconciler := whatsapp.NewReconciler(db, resolver, mediaStore, lg)
	session := whatsapp.NewManager(meow.Factory(conf.WhatsApp.StorePath, lg), reconciler, phones, lg)
	handler.SetSession(session)

	hub := ws.NewHub(lg)
	hub.SetHandler(handler)
	reconciler.SetNotifier(hub)
	session.SetNotifier(hub)
	go hub.Run()

	sendDelay := time.Duration(conf.Campaign.SendDelayMs) * time.Millisecond
	campaignService := campaign.New(session, db, sendDelay, lg)
	handler.SetCampaignService(campaignService)

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
