package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/imihigo-backend/internal/cache"
	"github.com/GregMSThompson/imihigo-backend/internal/catalog"
	"github.com/GregMSThompson/imihigo-backend/internal/config"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	Cache     *cache.Cache
	Catalog   *catalog.Catalog
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.HandlerFor(cfg.LogFormat))
	if err = cfg.Validate(); err != nil {
		return bs, err
	}
	bs.Catalog, err = catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return bs, err
	}
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Cache, err = InitCache(applicationCtx, cfg, bs.Catalog.Fingerprint())
	if err != nil {
		return bs, err
	}

	sum := bs.Catalog.Summary()
	bs.Log.Info("bootstrap complete",
		"pillars", sum.Pillars,
		"indicators", sum.Indicators,
		"catalog", bs.Catalog.Fingerprint(),
		"cache_enabled", bs.Cache.Enabled(),
		"data_reset_enabled", cfg.AllowDataReset,
		"admin_emails", len(cfg.AdminEmails),
	)
	return bs, nil
}

// Close releases the clients opened by Run.
func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	if bs.Cache != nil {
		errList = append(errList, bs.Cache.Close())
	}
	return errors.Join(errList...)
}
