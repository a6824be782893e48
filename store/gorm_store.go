package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of the kv_entries table.
type Entry struct {
	Key       string    `gorm:"primaryKey;type:varchar(191)"`
	Value     string    `gorm:"type:longtext;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

// GormStore keeps documents in a single table on sqlite or mysql.
type GormStore struct {
	DB            *gorm.DB
	MaxValueBytes int
}

func NewGormStore(db *gorm.DB, maxValueBytes int) *GormStore {
	return &GormStore{DB: db, MaxValueBytes: maxValueBytes}
}

// Migrate creates the kv_entries table.
func (s *GormStore) Migrate() error {
	return s.DB.AutoMigrate(&Entry{})
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.DB.WithContext(ctx).Where("`key` = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, backendErr("get", key, err)
	}
	return []byte(entry.Value), nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkQuota(key, value, s.MaxValueBytes); err != nil {
		return err
	}
	entry := Entry{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return backendErr("set", key, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.DB.WithContext(ctx).Where("`key` IN ?", keys).Delete(&Entry{}).Error; err != nil {
		return backendErr("delete", keys[0], err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
