package main

import (
	"fmt"
	"io"

	"gradewatch/pkg/auth"
	"gradewatch/pkg/config"
	"gradewatch/pkg/history"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/session"
	"gradewatch/pkg/storage"
)

// app bundles what the subcommands share once configuration is known
type app struct {
	cfg      *config.Config
	log      logger.Logger
	files    *storage.Manager
	history  *history.Store
	sessions *session.Store
	creds    *auth.Manager
}

// logOutput replaces the colored console log output when set
var logOutput io.Writer

// globalFlags collects the persistent flags set on the command line
func globalFlags(extra map[string]interface{}) map[string]interface{} {
	flags := map[string]interface{}{}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if dataDir != "" {
		flags["data-dir"] = dataDir
	}
	for k, v := range extra {
		flags[k] = v
	}
	return flags
}

// newApp resolves configuration and opens the data directory. Validation
// is only enforced when validate is true, so maintenance commands work
// with a partial configuration.
func newApp(validate bool, extra map[string]interface{}) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if validate {
		cfg, err = config.Load(configFile, globalFlags(extra))
	} else {
		cfg, err = config.Resolve(configFile, globalFlags(extra))
	}
	if err != nil {
		return nil, err
	}

	var log logger.Logger
	if logOutput != nil {
		log, err = logger.NewWithWriter(&cfg.Logging, logOutput)
	} else {
		log, err = logger.New(&cfg.Logging)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	files, err := storage.NewManager(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		files:    files,
		history:  history.NewStore(files, cfg.Storage.HistoryFile, log),
		sessions: session.NewStore(files, cfg.Storage.SessionFile, cfg.Storage.SessionPassphrase, log),
	}
	a.creds = a.credentialManager()
	return a, nil
}

// credentialManager chains configuration, keyring and sealed file stores.
// Unavailable stores are left out.
func (a *app) credentialManager() *auth.Manager {
	stores := []auth.CredentialStore{auth.NewConfigStore(&a.cfg.Portal)}

	if keyring, err := auth.NewKeyringStore(); err == nil {
		stores = append(stores, keyring)
	} else {
		a.log.WithError(err).Debug("System keyring unavailable")
	}

	if a.cfg.Storage.SessionPassphrase != "" {
		sealed, err := auth.NewEncryptedFileStore(a.files, "credentials.enc", a.cfg.Storage.SessionPassphrase)
		if err == nil {
			stores = append(stores, sealed)
		}
	}

	return auth.NewManager(stores...)
}

// seedSession writes the configured session blob when no artifact exists
func (a *app) seedSession() {
	if a.cfg.Storage.SessionSeed == "" {
		if !a.sessions.Exists() {
			a.log.Warn("No stored session and no AUTH_STATE_JSON seed; relying on automatic login")
		}
		return
	}

	seeded, err := a.sessions.Seed(a.cfg.Storage.SessionSeed)
	if err != nil {
		a.log.WithError(err).Error("Ignoring invalid AUTH_STATE_JSON seed")
		return
	}
	if seeded {
		a.log.InfoWithFields("Session seeded from AUTH_STATE_JSON", map[string]interface{}{
			"path": a.sessions.Path(),
		})
	}
}
