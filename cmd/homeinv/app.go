package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/vbonduro/homeinv/internal/backup"
	"github.com/vbonduro/homeinv/internal/config"
	"github.com/vbonduro/homeinv/internal/db"
	"github.com/vbonduro/homeinv/internal/logging"
	"github.com/vbonduro/homeinv/internal/photostore/local"
	"github.com/vbonduro/homeinv/internal/service"
	"github.com/vbonduro/homeinv/internal/store"
	"github.com/vbonduro/homeinv/internal/watch"
	"github.com/vbonduro/homeinv/internal/web"
)

// app holds everything a command needs, built from one Config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	database *sql.DB
	hub      *watch.Hub
	photos   *local.LocalPhotoStore

	locations  *service.LocationService
	categories *service.CategoryService
	items      *service.ItemService
	codec      *backup.Codec

	closeLog func()
}

func newApp(cfg *config.Config) (*app, error) {
	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		closeLog()
		return nil, err
	}

	photos, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		_ = database.Close()
		closeLog()
		return nil, fmt.Errorf("failed to initialize photo store: %w", err)
	}

	hub := watch.NewHub()
	rooms := store.NewRoomStore(database, hub)
	containers := store.NewContainerStore(database, hub)
	subs := store.NewSubContainerStore(database, hub)
	thirds := store.NewThirdContainerStore(database, hub)
	categories := store.NewCategoryStore(database, hub)
	items := store.NewItemStore(database, hub)

	return &app{
		cfg:        cfg,
		logger:     logger,
		database:   database,
		hub:        hub,
		photos:     photos,
		locations:  service.NewLocationService(rooms, containers, subs, thirds, items, logger),
		categories: service.NewCategoryService(categories, items, logger),
		items:      service.NewItemService(items, logger),
		codec:      backup.NewCodec(rooms, containers, subs, thirds, categories, items, photos, logger),
		closeLog:   closeLog,
	}, nil
}

func (a *app) server() *web.Server {
	return web.NewServer(a.locations, a.categories, a.items, a.codec, a.photos, a.hub, a.logger)
}

func (a *app) Close() error {
	defer a.closeLog()
	if err := a.database.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
		return err
	}
	return nil
}

func mustBind(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
