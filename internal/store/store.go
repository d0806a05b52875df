package store

import (
	"context"
	"database/sql"
	"fmt"

	"item_catalog/internal/config"
	"item_catalog/internal/db"
	"item_catalog/internal/item"
	"item_catalog/internal/user"

	"github.com/sirupsen/logrus"
)

// Store bundles the repositories of one backend. Close releases whatever
// connection the backend holds.
type Store struct {
	Users user.Repository
	Items item.Repository
	// DB is set only for the postgres driver.
	DB *sql.DB

	close func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the backend named by cfg.StoreDriver. The postgres
// backend is migrated before it is returned.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	logrus.WithField("driver", cfg.StoreDriver).Info("Opening store")

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		conn, err := db.Init(ctx, &cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return &Store{
			Users: user.NewPostgresRepository(conn),
			Items: item.NewPostgresRepository(conn),
			DB:    conn,
			close: conn.Close,
		}, nil

	case config.DriverDynamoDB:
		client, err := db.NewDynamoClient(ctx, &cfg.DynamoDB)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users: user.NewDynamoRepository(client, cfg.DynamoDB.TablePrefix+"users"),
			Items: item.NewDynamoRepository(client, cfg.DynamoDB.TablePrefix+"items"),
		}, nil

	case config.DriverMemory:
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown store driver: %q", cfg.StoreDriver)
}

// NewMemory returns an empty in-process store.
func NewMemory() *Store {
	return &Store{
		Users: user.NewMemoryRepository(),
		Items: item.NewMemoryRepository(),
	}
}
