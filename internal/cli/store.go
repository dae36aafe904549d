package cli

import (
	"errors"

	"github.com/julianstephens/missionctl/internal/config"
	clierrors "github.com/julianstephens/missionctl/internal/errors"
	"github.com/julianstephens/missionctl/internal/keyring"
	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/storage"
	"github.com/julianstephens/missionctl/internal/storage/postgres"
	"github.com/julianstephens/missionctl/internal/storage/sqlite"
)

// OpenStore builds the provider selected by db. A PostgreSQL db must not
// carry a password; the string actually dialed is resolved from the
// keyring, then envConnStr, then db itself.
func OpenStore(db, envConnStr string) (storage.Provider, error) {
	switch config.BackendFor(db) {
	case config.BackendPostgres:
		if _, err := postgres.ValidateConnString(db); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, clierrors.Usagef("PostgreSQL connection strings with embedded credentials are not allowed; " +
					"use 'missionctl keyring set', MISSIONCTL_DB_CONNECTION or ~/.pgpass instead")
			}
			return nil, clierrors.Usage(err)
		}
		connStr, source, err := keyring.ResolveConnectionString(db, envConnStr)
		if err != nil {
			return nil, err
		}
		logger.Debug("Resolved PostgreSQL connection string", "source", source)
		return postgres.New(connStr), nil

	case config.BackendJSON:
		path, err := config.ExpandPath(db)
		if err != nil {
			return nil, err
		}
		return storage.NewJSONStore(path), nil

	default:
		path, err := config.ExpandPath(db)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}
