package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// documentRow is one document of any collection. The body is kept as JSONB; userId is
// copied into its own indexed column because every list query filters on it.
type documentRow struct {
	Collection string         `gorm:"primaryKey;size:64"`
	ID         string         `gorm:"primaryKey;size:64"`
	UserID     string         `gorm:"index;size:128"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string {
	return "documents"
}

// PostgresStore is the relational backend, selected when DATABASE_URL is set
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects and migrates the documents table
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	log.Info().Str("component", "store").Msg("using Postgres store")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Snapshot, error) {
	var row documentRow
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres get %s/%s: %w", collection, id, err)
	}
	return row.snapshot()
}

func (s *PostgresStore) GetMany(ctx context.Context, collection string, ids []string) (map[string]*Snapshot, error) {
	result := make(map[string]*Snapshot, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []documentRow
	if err := s.db.WithContext(ctx).Where("collection = ? AND id IN ?", collection, ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("postgres get many %s: %w", collection, err)
	}
	for _, row := range rows {
		snap, err := row.snapshot()
		if err != nil {
			return nil, err
		}
		result[snap.ID] = snap
	}
	return result, nil
}

func (s *PostgresStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.New().String()
	row, err := newRow(collection, id, doc)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", fmt.Errorf("postgres add %s: %w", collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, doc Document) error {
	row, err := newRow(collection, id, doc)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "data", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("postgres set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND id = ?", collection, id).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("postgres update %s/%s: %w", collection, id, err)
		}

		snap, err := row.snapshot()
		if err != nil {
			return err
		}
		for k, v := range fields {
			if v == nil {
				delete(snap.Data, k)
				continue
			}
			snap.Data[k] = v
		}
		raw, err := json.Marshal(snap.Data)
		if err != nil {
			return err
		}
		return tx.Model(&documentRow{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]interface{}{"data": datatypes.JSON(raw), "updated_at": time.Now()}).Error
	})
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&documentRow{}).Error
	if err != nil {
		return fmt.Errorf("postgres delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, q Query) ([]*Snapshot, error) {
	db := s.db.WithContext(ctx).Where("collection = ?", collection)
	for _, f := range q.Filters {
		if f.Field == "userId" {
			db = db.Where("user_id = ?", f.Value)
			continue
		}
		db = db.Where(datatypes.JSONQuery("data").Equals(f.Value, f.Field))
	}
	if n, ok := q.serverLimit(); ok {
		db = db.Limit(n)
	}

	var rows []documentRow
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("postgres query %s: %w", collection, err)
	}
	snaps := make([]*Snapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := row.snapshot()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return finish(snaps, q), nil
}

// DeleteAtomic removes every ref inside one SQL transaction
func (s *PostgresStore) DeleteAtomic(ctx context.Context, refs []Ref) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ref := range refs {
			if err := tx.Where("collection = ? AND id = ?", ref.Collection, ref.ID).Delete(&documentRow{}).Error; err != nil {
				return fmt.Errorf("postgres atomic delete %s/%s: %w", ref.Collection, ref.ID, err)
			}
		}
		return nil
	})
}

func newRow(collection, id string, doc Document) (*documentRow, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	owner, _ := doc[partitionField].(string)
	now := time.Now()
	return &documentRow{
		Collection: collection,
		ID:         id,
		UserID:     owner,
		Data:       datatypes.JSON(raw),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (r documentRow) snapshot() (*Snapshot, error) {
	doc := Document{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", r.Collection, r.ID, err)
		}
	}
	return &Snapshot{ID: r.ID, Data: doc}, nil
}
