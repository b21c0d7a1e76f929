package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 3

var keySchemaVersion = []byte("schema_version")

// GetSchemaVersion returns the stored schema version, 0 for a new database.
func (s *BoltStore) GetSchemaVersion() (int, error) {
	var version int
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &version); err != nil {
			version = 1
		}
		return nil
	})
	return version, err
}

func (s *BoltStore) setSchemaVersion(version int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(version)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	NeedsRebuild   bool
	OldVersion     int
	NewVersion     int
	Reason         string
}

// CheckMigration checks if migration or rebuild is needed.
func (s *BoltStore) CheckMigration() (*MigrationResult, error) {
	version, err := s.GetSchemaVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	result := &MigrationResult{
		OldVersion: version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case version == 0:
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	case version < CurrentSchemaVersion:
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", version, CurrentSchemaVersion)
	case version > CurrentSchemaVersion:
		result.NeedsRebuild = true
		result.Reason = fmt.Sprintf("database created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
	}

	return result, nil
}

// Migrate performs any necessary schema migrations.
func (s *BoltStore) Migrate() error {
	version, err := s.GetSchemaVersion()
	if err != nil {
		return err
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	return s.setSchemaVersion(CurrentSchemaVersion)
}

// runMigration runs a specific version migration.
func (s *BoltStore) runMigration(from, to int) error {
	switch {
	case from == 1 && to == 2:
		// v1 kept text inline in the docs bucket.
		return s.db.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(bucketContents)
			return err
		})
	case from == 2 && to == 3:
		return s.db.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(bucketSessions)
			return err
		})
	default:
		return nil
	}
}

// Clear removes every document and session, keeping the schema version.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketDocs, bucketContents, bucketSessions} {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}
