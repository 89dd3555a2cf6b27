package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunRecord is one row of the run index.
type RunRecord struct {
	gorm.Model
	RunID      string    `gorm:"size:127;uniqueIndex"`
	Name       string    `gorm:"size:64;index"`
	RunAt      time.Time `gorm:"index"`
	Seed       int64
	Duration   float64
	Controller string `gorm:"size:32"`
	FinalX     float64
	FinalY     float64
	FinalZ     float64
	FinalMass  float64
	Energy     float64
	Metrics    datatypes.JSONMap
}

// Index is a table of saved runs for quick history queries, kept in a
// local sqlite file or a shared Postgres database.
type Index struct {
	db *gorm.DB
}

func OpenIndex(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return openIndex(sqlite.Open(path), path)
}

// OpenPostgresIndex connects to a Postgres index shared between machines.
func OpenPostgresIndex(dsn string) (*Index, error) {
	return openIndex(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), "postgres")
}

func openIndex(dialector gorm.Dialector, name string) (*Index, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", name, err)
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("migrate index: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Record(meta *RunMetadata) error {
	metrics := datatypes.JSONMap{}
	for k, v := range meta.Metrics {
		metrics[k] = v
	}

	rec := RunRecord{
		RunID:      meta.ID,
		Name:       meta.Name,
		RunAt:      meta.Timestamp,
		Seed:       meta.Seed,
		Duration:   meta.Duration,
		Controller: meta.Controller,
		FinalX:     meta.FinalX,
		FinalY:     meta.FinalY,
		FinalZ:     meta.FinalZ,
		FinalMass:  meta.FinalMass,
		Energy:     meta.Energy,
		Metrics:    metrics,
	}
	return ix.db.Create(&rec).Error
}

// Recent returns up to limit runs, newest first. An empty name matches all.
func (ix *Index) Recent(name string, limit int) ([]RunRecord, error) {
	var recs []RunRecord
	q := ix.db.Order("run_at desc").Limit(limit)
	if name != "" {
		q = q.Where("name = ?", name)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Sync adds every run in the store that the index does not know yet.
func (ix *Index) Sync(s *Store) (int, error) {
	runs, err := s.List()
	if err != nil {
		return 0, err
	}

	added := 0
	for i := range runs {
		var count int64
		if err := ix.db.Model(&RunRecord{}).Where("run_id = ?", runs[i].ID).Count(&count).Error; err != nil {
			return added, err
		}
		if count > 0 {
			continue
		}
		if err := ix.Record(&runs[i]); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func (ix *Index) Close() error {
	sqlDB, err := ix.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
