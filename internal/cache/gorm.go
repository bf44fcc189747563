package cache

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CachedResponse is the table backing the persistent cache store.
type CachedResponse struct {
	Key       string         `json:"key" gorm:"primaryKey"`
	Timestamp time.Time      `json:"timestamp"`
	Value     datatypes.JSON `json:"value"`
}

// GormStore persists cache entries through a GORM connection (SQLite or
// Postgres, selected by the factory).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the cache table and returns a store over db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&CachedResponse{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Put upserts the entry under key.
func (s *GormStore) Put(key string, e Entry) error {
	row := CachedResponse{
		Key:       key,
		Timestamp: e.Timestamp,
		Value:     datatypes.JSON(e.Value),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp", "value"}),
	}).Create(&row).Error
}

// Get retrieves the entry stored under key. Database errors resolve to
// absence; the caller handles missing data the same way either way.
func (s *GormStore) Get(key string) (Entry, bool) {
	var row CachedResponse
	err := s.db.First(&row, "key = ?", key).Error
	if err != nil {
		// Not-found and real DB errors both resolve to absence; the caller
		// falls through to its "no data" handling either way.
		return Entry{}, false
	}
	return Entry{Timestamp: row.Timestamp, Value: []byte(row.Value)}, true
}

// Purge deletes entries written before olderThan.
func (s *GormStore) Purge(olderThan time.Time) error {
	return s.db.Where("timestamp < ?", olderThan).Delete(&CachedResponse{}).Error
}

// Close closes the underlying SQL connection.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
