package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/cuemby/burrow/pkg/engine"
	"github.com/cuemby/burrow/pkg/types"
	bolt "go.etcd.io/bbolt"
)

// DBFile is the database file name inside the data directory
const DBFile = "burrow.db"

const openTimeout = time.Second

var (
	// Bucket names
	bucketNodes   = []byte("nodes")
	bucketImages  = []byte("images")
	bucketPending = []byte("pending")
	bucketMeta    = []byte("meta")

	// Meta keys
	keySeq          = []byte("seq")
	keyAppliedIndex = []byte("applied_index")

	tables = [][]byte{bucketNodes, bucketImages, bucketPending}
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, DBFile)

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range append(tables, bucketMeta) {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// OpenReadOnly opens an existing store without write access. It fails
// after a short timeout when a running server holds the file lock.
func OpenReadOnly(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, DBFile)

	db, err := bolt.Open(dbPath, 0400, &bolt.Options{ReadOnly: true, Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// SaveState rewrites the tables in a single transaction
func (s *BoltStore) SaveState(state *engine.State, appliedIndex uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range tables {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return fmt.Errorf("failed to clear bucket %s: %w", name, err)
				}
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		nodes := tx.Bucket(bucketNodes)
		for _, n := range state.Nodes {
			data, err := json.Marshal(n)
			if err != nil {
				return err
			}
			if err := nodes.Put([]byte(n.ID), data); err != nil {
				return err
			}
		}

		images := tx.Bucket(bucketImages)
		for _, img := range state.Images {
			data, err := json.Marshal(img)
			if err != nil {
				return err
			}
			if err := images.Put([]byte(img.Name), data); err != nil {
				return err
			}
		}

		pending := tx.Bucket(bucketPending)
		for name, count := range state.Pending {
			if count == 0 {
				continue
			}
			if err := pending.Put([]byte(name), encodeUint32(count)); err != nil {
				return err
			}
		}

		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put(keySeq, encodeUint64(state.Seq)); err != nil {
			return err
		}
		return meta.Put(keyAppliedIndex, encodeUint64(appliedIndex))
	})
}

// LoadState reads the tables back. Records come back in registration order.
func (s *BoltStore) LoadState() (*engine.State, error) {
	state := &engine.State{Pending: make(map[string]uint32)}

	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		if state.Nodes, err = listNodes(tx); err != nil {
			return err
		}
		if state.Images, err = listImages(tx); err != nil {
			return err
		}
		if state.Pending, err = listPending(tx); err != nil {
			return err
		}
		state.Seq = readUint64(tx, keySeq)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// AppliedIndex returns the raft index recorded by the last SaveState
func (s *BoltStore) AppliedIndex() (uint64, error) {
	var index uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		index = readUint64(tx, keyAppliedIndex)
		return nil
	})
	return index, err
}

// Node operations
func (s *BoltStore) GetNode(id string) (*types.Node, error) {
	var node types.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		if b == nil {
			return fmt.Errorf("node %s: %w", id, ErrNotFound)
		}
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("node %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &node)
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (s *BoltStore) ListNodes() ([]*types.Node, error) {
	var nodes []*types.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		nodes, err = listNodes(tx)
		return err
	})
	return nodes, err
}

// Image operations
func (s *BoltStore) GetImage(name string) (*types.Image, error) {
	var img types.Image
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketImages)
		if b == nil {
			return fmt.Errorf("image %s: %w", name, ErrNotFound)
		}
		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("image %s: %w", name, ErrNotFound)
		}
		return json.Unmarshal(data, &img)
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *BoltStore) ListImages() ([]*types.Image, error) {
	var images []*types.Image
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		images, err = listImages(tx)
		return err
	})
	return images, err
}

// Queue operations
func (s *BoltStore) GetPending(name string) (uint32, error) {
	var count uint32
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPending)
		if b == nil {
			return nil
		}
		if data := b.Get([]byte(name)); len(data) == 4 {
			count = binary.BigEndian.Uint32(data)
		}
		return nil
	})
	return count, err
}

func (s *BoltStore) ListPending() (map[string]uint32, error) {
	var pending map[string]uint32
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		pending, err = listPending(tx)
		return err
	})
	return pending, err
}

func listNodes(tx *bolt.Tx) ([]*types.Node, error) {
	nodes := []*types.Node{}
	b := tx.Bucket(bucketNodes)
	if b == nil {
		return nodes, nil
	}
	err := b.ForEach(func(k, v []byte) error {
		var node types.Node
		if err := json.Unmarshal(v, &node); err != nil {
			return fmt.Errorf("failed to decode node %s: %w", k, err)
		}
		nodes = append(nodes, &node)
		return nil
	})
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Seq < nodes[j].Seq })
	return nodes, err
}

func listImages(tx *bolt.Tx) ([]*types.Image, error) {
	images := []*types.Image{}
	b := tx.Bucket(bucketImages)
	if b == nil {
		return images, nil
	}
	err := b.ForEach(func(k, v []byte) error {
		var img types.Image
		if err := json.Unmarshal(v, &img); err != nil {
			return fmt.Errorf("failed to decode image %s: %w", k, err)
		}
		images = append(images, &img)
		return nil
	})
	sort.Slice(images, func(i, j int) bool { return images[i].Seq < images[j].Seq })
	return images, err
}

func listPending(tx *bolt.Tx) (map[string]uint32, error) {
	pending := make(map[string]uint32)
	b := tx.Bucket(bucketPending)
	if b == nil {
		return pending, nil
	}
	err := b.ForEach(func(k, v []byte) error {
		if len(v) != 4 {
			return fmt.Errorf("malformed pending count for %s", k)
		}
		pending[string(k)] = binary.BigEndian.Uint32(v)
		return nil
	})
	return pending, err
}

func readUint64(tx *bolt.Tx, key []byte) uint64 {
	b := tx.Bucket(bucketMeta)
	if b == nil {
		return 0
	}
	data := b.Get(key)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

func encodeUint32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
