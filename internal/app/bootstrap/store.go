package bootstrap

import (
	"context"
	"errors"
	"fmt"

	appconfig "github.com/nirvista/leadcapture/internal/config"
	"github.com/nirvista/leadcapture/internal/datastore"
	"github.com/nirvista/leadcapture/internal/leads"
	"github.com/nirvista/leadcapture/pkg/logging"
)

// LeadStore bundles the selected lead repository with the probe used to
// track its connection and the hooks that release it.
type LeadStore struct {
	Name   string
	Repo   leads.Repository
	Pinger datastore.Pinger

	closers []func(context.Context) error
}

// Close releases the underlying client or pool.
func (s *LeadStore) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildLeadStore wires the backend named by LEAD_STORE. Only configuration
// problems are returned; an unreachable server is left to the monitor.
func BuildLeadStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*LeadStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	store := &LeadStore{Name: cfg.LeadStore}
	switch cfg.LeadStore {
	case appconfig.StoreMongo:
		client, dbName, err := ConnectMongo(cfg.MongoURI, cfg.DatastoreConnectTimeout)
		if err != nil {
			return nil, err
		}
		store.Repo = leads.NewMongoRepository(client.Database(dbName).Collection(cfg.MongoCollection))
		store.Pinger = mongoPinger{client: client}
		store.closers = append(store.closers, client.Disconnect)
		logger.Info("lead store configured", "store", cfg.LeadStore, "database", dbName, "collection", cfg.MongoCollection)

	case appconfig.StoreDynamo:
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo := leads.NewDynamoRepository(BuildDynamoClient(awsCfg, cfg), cfg.LeadsTable)
		store.Repo = repo
		store.Pinger = repo
		logger.Info("lead store configured", "store", cfg.LeadStore, "table", cfg.LeadsTable, "region", cfg.AWSRegion)

	case appconfig.StoreRedis:
		client, err := BuildRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		repo := leads.NewRedisRepository(client)
		store.Repo = repo
		store.Pinger = repo
		store.closers = append(store.closers, func(context.Context) error { return client.Close() })
		logger.Info("lead store configured", "store", cfg.LeadStore, "addr", cfg.RedisAddr)

	case appconfig.StorePostgres:
		pool, err := BuildPostgresPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo := leads.NewPostgresRepository(pool)
		store.Repo = repo
		store.Pinger = repo
		store.closers = append(store.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		logger.Info("lead store configured", "store", cfg.LeadStore)

	case appconfig.StoreMemory:
		repo := leads.NewInMemoryRepository()
		store.Repo = repo
		store.Pinger = repo
		logger.Warn("using in-memory lead store; leads are lost on restart")

	default:
		return nil, fmt.Errorf("bootstrap: unknown LEAD_STORE %q", cfg.LeadStore)
	}

	return store, nil
}
