// Command stepref resolves the external document references of STEP AP242
// assemblies.
package main

import (
	"errors"
	"os"

	"github.com/google/uuid"

	"github.com/custodia-labs/stepref/internal/adapters/driven/config/file"
	"github.com/custodia-labs/stepref/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stepref/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/stepref/internal/adapters/driving/cli"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/core/services"
	"github.com/custodia-labs/stepref/internal/logger"
)

func main() {
	if err := run(); err != nil {
		// Cobra has already printed command errors.
		var setup *setupError
		if errors.As(err, &setup) {
			logger.Error("%v", setup.err)
		}
		os.Exit(1)
	}
}

// setupError marks failures that happen before a command runs.
type setupError struct{ err error }

func (e *setupError) Error() string { return e.err.Error() }

func run() error {
	configStore, configPath := openConfig(os.Getenv("STEPREF_CONFIG_DIR"))
	settingsService := services.NewSettingsService(configStore)

	var dataDir string
	if settings, err := settingsService.Get(); err != nil {
		// Keep the CLI usable so the bad setting can be fixed with "config set".
		logger.Warn("Invalid settings in %s: %v", configStore.Path(), err)
	} else {
		dataDir = settings.Store.Dir
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return &setupError{err}
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close run store: %v", err)
		}
	}()

	cli.SetServices(cli.Services{
		Settings:   settingsService,
		Runs:       services.NewRunService(store.RunStore(), uuid.NewString),
		ConfigPath: configPath,
	})
	return cli.Execute()
}

// openConfig opens the config file, or falls back to in-memory defaults when
// it cannot be read. The returned path is empty for the fallback.
func openConfig(dir string) (driven.ConfigStore, string) {
	store, err := file.NewConfigStore(dir)
	if err != nil {
		logger.Warn("Using default settings; changes will not be saved: %v", err)
		return memory.NewConfigStore(), ""
	}
	return store, store.Path()
}
