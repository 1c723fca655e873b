package store

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const (
	schemaVersion = 1

	rootBucketName  = "updatewatch"
	metaBucketName  = "meta"
	stateBucketName = "state"
	versionKey      = "version"
)

// Key-value contract shared with the hosting application. The key names are
// part of the external interface and must not change.
const (
	KeyAudioIDs           = "audio-ids"
	KeyAutoUpdateDisabled = "auto-update-disabled"
	KeyDismissed          = "dismissed-announcements"
)

func ensureSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists([]byte(rootBucketName))
		if err != nil {
			return fmt.Errorf("create root bucket: %w", err)
		}
		meta, err := root.CreateBucketIfNotExists([]byte(metaBucketName))
		if err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		if _, err := root.CreateBucketIfNotExists([]byte(stateBucketName)); err != nil {
			return fmt.Errorf("create state bucket: %w", err)
		}

		currentVersion := readSchemaVersion(meta)
		switch {
		case currentVersion == 0:
			return writeSchemaVersion(meta, schemaVersion)
		case currentVersion > schemaVersion:
			return fmt.Errorf("unsupported state schema version %d", currentVersion)
		default:
			return nil
		}
	})
}

func readSchemaVersion(meta *bolt.Bucket) int {
	if meta == nil {
		return 0
	}
	raw := meta.Get([]byte(versionKey))
	if len(raw) != 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(raw))
}

func writeSchemaVersion(meta *bolt.Bucket, version int) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(version))
	return meta.Put([]byte(versionKey), buf)
}

func stateBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	root := tx.Bucket([]byte(rootBucketName))
	if root == nil {
		return nil, fmt.Errorf("missing root bucket")
	}
	bucket := root.Bucket([]byte(stateBucketName))
	if bucket == nil {
		return nil, fmt.Errorf("missing state bucket")
	}
	return bucket, nil
}
