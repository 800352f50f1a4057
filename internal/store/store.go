package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/wbell/sonora/internal/domain"
)

// schemaVersion is bumped when the bucket layout changes. Upgrades
// rebuild the index buckets from the track records; records are never
// dropped.
const schemaVersion = 2

// Bucket names
var (
	bucketMeta     = []byte("meta")
	bucketTracks   = []byte("tracks")
	bucketFiles    = []byte("files")
	bucketPictures = []byte("pictures")
	bucketByArtist = []byte("idx_artist")
	bucketByAlbum  = []byte("idx_album")
)

var keySchemaVersion = []byte("schema_version")

// TrackStore implements domain.Store using BoltDB. Track metadata,
// cover art and audio payloads live in separate buckets keyed by the
// same auto-incremented id; the artist/album index buckets are
// maintained inside the same write transaction as the records.
type TrackStore struct {
	db     *bolt.DB
	logger *slog.Logger
}

// Open opens (creating or upgrading the schema if needed) the track
// store at path. Failure wraps domain.ErrStorageUnavailable.
func Open(path string, logger *slog.Logger) (*TrackStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s := &TrackStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	return s, nil
}

// migrate creates missing buckets and rebuilds the secondary indexes
// when the stored schema version is behind.
func (s *TrackStore) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMeta, bucketTracks, bucketFiles, bucketPictures, bucketByArtist, bucketByAlbum} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		stored := int64(0)
		if v := meta.Get(keySchemaVersion); v != nil {
			stored, _ = binary.Varint(v)
		}
		if stored == schemaVersion {
			return nil
		}

		if stored > 0 {
			s.logger.Info("upgrading store schema", "from", stored, "to", schemaVersion)
			if err := rebuildIndexes(tx); err != nil {
				return err
			}
		}

		buf := make([]byte, binary.MaxVarintLen64)
		n := binary.PutVarint(buf, schemaVersion)
		return meta.Put(keySchemaVersion, buf[:n])
	})
}

// rebuildIndexes drops and repopulates the artist/album index buckets
// from the track records.
func rebuildIndexes(tx *bolt.Tx) error {
	for _, name := range [][]byte{bucketByArtist, bucketByAlbum} {
		if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		if _, err := tx.CreateBucket(name); err != nil {
			return err
		}
	}

	byArtist := tx.Bucket(bucketByArtist)
	byAlbum := tx.Bucket(bucketByAlbum)

	return tx.Bucket(bucketTracks).ForEach(func(k, v []byte) error {
		var t domain.Track
		if err := json.Unmarshal(v, &t); err != nil {
			return nil // skip undecodable record, keep the rest
		}
		if err := byArtist.Put(indexKey(t.Artist, k), k); err != nil {
			return err
		}
		return byAlbum.Put(indexKey(t.Album, k), k)
	})
}

func (s *TrackStore) Close() error {
	return s.db.Close()
}

// InsertTracks appends records in one transaction, assigning each a
// fresh id from the bucket sequence. The whole batch commits or
// aborts together; a failure wraps domain.ErrWriteFailed and leaves
// the input untouched.
func (s *TrackStore) InsertTracks(tracks []domain.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	assigned := make([]int64, len(tracks))

	err := s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketTracks)
		files := tx.Bucket(bucketFiles)
		pictures := tx.Bucket(bucketPictures)
		byArtist := tx.Bucket(bucketByArtist)
		byAlbum := tx.Bucket(bucketByAlbum)

		for i := range tracks {
			seq, err := meta.NextSequence()
			if err != nil {
				return err
			}
			id := int64(seq)
			assigned[i] = id
			key := itob(id)

			rec := tracks[i]
			rec.ID = id

			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := meta.Put(key, data); err != nil {
				return err
			}
			if len(rec.File) > 0 {
				if err := files.Put(key, rec.File); err != nil {
					return err
				}
			}
			if len(rec.Picture) > 0 {
				if err := pictures.Put(key, rec.Picture); err != nil {
					return err
				}
			}
			if err := byArtist.Put(indexKey(rec.Artist, key), key); err != nil {
				return err
			}
			if err := byAlbum.Put(indexKey(rec.Album, key), key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("batch insert aborted", "count", len(tracks), "error", err)
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	// Ids become visible on the caller's records only after commit.
	for i := range tracks {
		tracks[i].ID = assigned[i]
	}

	s.logger.Debug("inserted tracks", "count", len(tracks))
	return nil
}

// QueryAll returns all records in reverse-insertion order, or only
// the records matching the single-field query. The index scan is a
// pre-filter; field equality on the decoded record is authoritative.
// Read errors degrade to an empty result.
func (s *TrackStore) QueryAll(q *domain.Query) []domain.Track {
	var out []domain.Track

	err := s.db.View(func(tx *bolt.Tx) error {
		if q == nil {
			return scanAll(tx, &out)
		}
		switch {
		case q.Artist != "":
			return scanIndex(tx, bucketByArtist, q.Artist, &out, func(t domain.Track) bool {
				return t.Artist == q.Artist
			})
		case q.Album != "":
			return scanIndex(tx, bucketByAlbum, q.Album, &out, func(t domain.Track) bool {
				return t.Album == q.Album
			})
		default:
			return scanAll(tx, &out)
		}
	})
	if err != nil {
		s.logger.Warn("query degraded to empty result", "error", err)
		return nil
	}

	return out
}

// scanAll walks the track bucket newest-first.
func scanAll(tx *bolt.Tx, out *[]domain.Track) error {
	pictures := tx.Bucket(bucketPictures)
	c := tx.Bucket(bucketTracks).Cursor()
	for k, v := c.Last(); k != nil; k, v = c.Prev() {
		var t domain.Track
		if err := json.Unmarshal(v, &t); err != nil {
			continue
		}
		t.Picture = copyBytes(pictures.Get(k))
		*out = append(*out, t)
	}
	return nil
}

// scanIndex walks one secondary index for an exact value and loads
// the referenced records, double-checking the field match.
func scanIndex(tx *bolt.Tx, index []byte, value string, out *[]domain.Track, match func(domain.Track) bool) error {
	tracks := tx.Bucket(bucketTracks)
	pictures := tx.Bucket(bucketPictures)

	prefix := indexPrefix(value)
	c := tx.Bucket(index).Cursor()
	for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
		v := tracks.Get(id)
		if v == nil {
			continue // dangling index entry
		}
		var t domain.Track
		if err := json.Unmarshal(v, &t); err != nil {
			continue
		}
		if !match(t) {
			continue
		}
		t.Picture = copyBytes(pictures.Get(id))
		*out = append(*out, t)
	}
	return nil
}

// GetFile fetches one record's audio payload by id.
func (s *TrackStore) GetFile(id int64) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		data = copyBytes(tx.Bucket(bucketFiles).Get(itob(id)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTrackNotFound, err)
	}
	if data == nil {
		return nil, domain.ErrTrackNotFound
	}
	return data, nil
}

// itob returns an 8-byte big-endian representation of id, so bucket
// key order matches insertion order.
func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// indexKey is value + NUL + id, keeping entries for one value
// contiguous and distinct from values it is a prefix of.
func indexKey(value string, id []byte) []byte {
	k := make([]byte, 0, len(value)+1+len(id))
	k = append(k, value...)
	k = append(k, 0)
	return append(k, id...)
}

func indexPrefix(value string) []byte {
	k := make([]byte, 0, len(value)+1)
	k = append(k, value...)
	return append(k, 0)
}

// copyBytes copies a bbolt-owned value out of the transaction.
func copyBytes(v []byte) []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
