package db

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	badgerdb "github.com/crowdescrow/escrowd/internal/infrastructure/db/badger"
	pgdb "github.com/crowdescrow/escrowd/internal/infrastructure/db/postgres"
	sqlitedb "github.com/crowdescrow/escrowd/internal/infrastructure/db/sqlite"
)

var (
	subjectStoreTypes = map[string]func(...interface{}) (domain.SubjectRepository, error){
		"badger":   badgerdb.NewSubjectRepository,
		"sqlite":   sqlitedb.NewSubjectRepository,
		"postgres": pgdb.NewSubjectRepository,
	}
	paramsStoreTypes = map[string]func(...interface{}) (domain.ParamsRepository, error){
		"badger":   badgerdb.NewParamsRepository,
		"sqlite":   sqlitedb.NewParamsRepository,
		"postgres": pgdb.NewParamsRepository,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

// ServiceConfig selects the data store. DataStoreConfig is:
//   - badger: base dir (empty for in-memory) and a badger.Logger, possibly nil;
//   - sqlite: base dir;
//   - postgres: connection url.
type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	subjectStore domain.SubjectRepository
	paramsStore  domain.ParamsRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	subjectStoreFactory, ok := subjectStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	paramsStoreFactory, ok := paramsStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	storeConfig, err := openDataStore(config)
	if err != nil {
		return nil, err
	}

	subjectStore, err := subjectStoreFactory(storeConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create subject store: %w", err)
	}

	paramsStore, err := paramsStoreFactory(storeConfig...)
	if err != nil {
		subjectStore.Close()
		return nil, fmt.Errorf("failed to create params store: %w", err)
	}

	return &service{
		subjectStore: subjectStore,
		paramsStore:  paramsStore,
	}, nil
}

func (s *service) Subjects() domain.SubjectRepository {
	return s.subjectStore
}

func (s *service) Params() domain.ParamsRepository {
	return s.paramsStore
}

func (s *service) Close() {
	s.subjectStore.Close()
	s.paramsStore.Close()
}

// openDataStore turns the sql store configs into a migrated connection
// shared by the repositories.
func openDataStore(config ServiceConfig) ([]interface{}, error) {
	switch config.DataStoreType {
	case "sqlite":
		baseDir, err := stringConfig(config.DataStoreConfig)
		if err != nil {
			return nil, err
		}
		db, err := sqlitedb.OpenDb(filepath.Join(baseDir, sqliteDbFile))
		if err != nil {
			return nil, err
		}
		if err := sqlitedb.MigrateDb(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
		}
		return []interface{}{db}, nil
	case "postgres":
		dsn, err := stringConfig(config.DataStoreConfig)
		if err != nil {
			return nil, err
		}
		pool, err := pgdb.OpenDb(context.Background(), dsn)
		if err != nil {
			return nil, err
		}
		return []interface{}{pool}, nil
	default:
		return config.DataStoreConfig, nil
	}
}

func stringConfig(config []interface{}) (string, error) {
	if len(config) != 1 {
		return "", fmt.Errorf("invalid config")
	}
	str, ok := config[0].(string)
	if !ok {
		return "", fmt.Errorf("invalid config")
	}
	return str, nil
}
