package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oskarkuder/lesson-notes-ai/internal/model"
)

// SchemaVersion is the version the store is opened at. Bumping it appends a
// step to the ladder below; steps only add missing tables/indexes or drop
// exactly one obsolete index, never rewrite rows.
const SchemaVersion = 5

// schemaMigration records one applied ladder step.
type schemaMigration struct {
	Version   uint `gorm:"primaryKey"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string { return "schema_migrations" }

// obsoleteAppleIDIndex was a short-lived alternate-identity index (version 4)
// dropped again in version 5. Fresh databases never create it.
const obsoleteAppleIDIndex = "idx_users_apple_id"

// Migrate opens the store at SchemaVersion. Safe to call repeatedly: each
// step is guarded so re-opening at the same or a higher version is a no-op
// for rows that already exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("migrations table: %w", err)
	}

	var current uint
	row := db.Model(&schemaMigration{}).Select("COALESCE(MAX(version), 0)").Row()
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for v := current + 1; v <= SchemaVersion; v++ {
		apply := step(v)
		err := db.Transaction(func(tx *gorm.DB) error {
			if apply != nil {
				if err := apply(tx); err != nil {
					return err
				}
			}
			return tx.Create(&schemaMigration{Version: v, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migrate to version %d: %w", v, err)
		}
	}
	return nil
}

func step(version uint) func(*gorm.DB) error {
	switch version {
	case 1:
		// Notes collection with its owner index.
		return func(tx *gorm.DB) error {
			m := tx.Migrator()
			if !m.HasTable(&model.Note{}) {
				if err := m.CreateTable(&model.Note{}); err != nil {
					return err
				}
			}
			if !m.HasIndex(&model.Note{}, "idx_notes_user_id") {
				if err := m.CreateIndex(&model.Note{}, "idx_notes_user_id"); err != nil {
					return err
				}
			}
			return nil
		}
	case 2:
		// Users collection with the unique username index.
		return func(tx *gorm.DB) error {
			m := tx.Migrator()
			if !m.HasTable(&model.User{}) {
				if err := m.CreateTable(&model.User{}); err != nil {
					return err
				}
			}
			if !m.HasIndex(&model.User{}, "idx_users_username") {
				if err := m.CreateIndex(&model.User{}, "idx_users_username"); err != nil {
					return err
				}
			}
			return nil
		}
	case 3:
		// Unique Google identity index. CreateTable at version 2 already
		// declares it on fresh databases; the guard keeps this additive.
		return func(tx *gorm.DB) error {
			m := tx.Migrator()
			if !m.HasIndex(&model.User{}, "idx_users_google_id") {
				return m.CreateIndex(&model.User{}, "idx_users_google_id")
			}
			return nil
		}
	case 4:
		// Historical: introduced the Apple identity index, retired in
		// version 5. Kept as a numbered no-op so recorded versions stay
		// monotonic for stores that lived through it.
		return nil
	case 5:
		// Drop the obsolete Apple identity index and add the payments table.
		return func(tx *gorm.DB) error {
			m := tx.Migrator()
			if m.HasIndex(&model.User{}, obsoleteAppleIDIndex) {
				if err := m.DropIndex(&model.User{}, obsoleteAppleIDIndex); err != nil {
					return err
				}
			}
			if !m.HasTable(&model.Payment{}) {
				return m.CreateTable(&model.Payment{})
			}
			return nil
		}
	default:
		return nil
	}
}
