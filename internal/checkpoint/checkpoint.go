// Package checkpoint is a small operational MySQL side-table, modeled
// on the KAS repository's checkpoint handling in
// datasync/chaindatafetcher/kas (ReadCheckpoint/WriteCheckpoint on the
// Repository interface in common/common.go), but here storing a hint
// per (network, component, partition) instead of a single global
// value. It uses klaytn's exact SQL stack — jinzhu/gorm over
// go-sql-driver/mysql — rather than ClickHouse, because the value it
// stores is a fast-resume hint, not the source of truth: the
// authoritative state for gap detection is always the ClickHouse
// block_stream range scan (spec.md §4.2 get_indexing_status). Losing
// this table only costs one full range scan on the next resume.
package checkpoint

import (
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	"github.com/pkg/errors"
)

// Row is one operational checkpoint: the last height/period a worker
// confirmed it had fully committed downstream.
type Row struct {
	Network   string `gorm:"primary_key;size:32"`
	Component string `gorm:"primary_key;size:64"`
	Partition string `gorm:"primary_key;size:32"`
	Height    uint64
	UpdatedAt uint64
}

func (Row) TableName() string { return "indexer_checkpoints" }

// Store is an owned-resource handle over the checkpoint database.
type Store struct {
	db *gorm.DB
}

// New opens a MySQL connection via the given DSN and migrates the
// checkpoint table.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "checkpoint: opening mysql")
	}
	if err := db.AutoMigrate(&Row{}).Error; err != nil {
		db.Close()
		return nil, errors.Wrap(err, "checkpoint: migrating schema")
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the last recorded checkpoint for (network, component,
// partition), or (0, false) if none.
func (s *Store) Get(network, component, partition string) (uint64, bool, error) {
	var row Row
	err := s.db.Where(&Row{Network: network, Component: component, Partition: partition}).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "checkpoint: reading row")
	}
	return row.Height, true, nil
}

// Set upserts the checkpoint for (network, component, partition).
func (s *Store) Set(network, component, partition string, height, updatedAtMillis uint64) error {
	row := Row{Network: network, Component: component, Partition: partition, Height: height, UpdatedAt: updatedAtMillis}
	return errors.Wrap(
		s.db.Where(&Row{Network: network, Component: component, Partition: partition}).
			Assign(&Row{Height: height, UpdatedAt: updatedAtMillis}).
			FirstOrCreate(&row).Error,
		"checkpoint: upserting row",
	)
}
