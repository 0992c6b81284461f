package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/shelfmark/shelfmark-server/internal/config"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/logger"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// logEmitter logs library events after their transaction commits. It keeps
// the store's emit path live without binding it to a delivery mechanism.
type logEmitter struct {
	log *logger.Logger
}

// Emit implements store.EventEmitter.
func (e *logEmitter) Emit(event domain.Event) {
	e.log.Info("library event",
		"type", event.Type,
		"user_id", event.UserID,
		"book_id", event.BookID,
	)
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Store.DataPath, "db")
	db, err := store.New(store.Options{
		Path:                   dbPath,
		DefaultChallengeTarget: cfg.Challenge.DefaultTarget,
	}, log.Logger, &logEmitter{log: log})
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
