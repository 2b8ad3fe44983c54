package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

// SaveToFile writes every collection to a single snapshot file. The file is
// written to a temporary sibling and renamed into place.
func (s *Store) SaveToFile(filename string) error {
	snapshot := NewSnapshotData()
	snapshot.SavedAt = s.now().UTC()

	s.mu.RLock()
	colls := make([]*collection, 0, len(s.collections))
	for _, c := range s.collections {
		colls = append(colls, c)
	}
	s.mu.RUnlock()

	// Clear before reading so writes racing the save mark the store dirty again
	s.dirty.Store(false)

	for _, c := range colls {
		c.mu.RLock()
		records := make([]map[string]interface{}, 0, len(c.order))
		for _, rec := range c.snapshot() {
			records = append(records, map[string]interface{}(rec))
		}
		snapshot.Collections[c.name] = records
		c.mu.RUnlock()
	}

	payload, err := encodeSnapshot(snapshot)
	if err != nil {
		s.markDirty()
		return err
	}

	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		s.markDirty()
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		s.markDirty()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.markDirty()
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		s.markDirty()
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	s.logger.Info("snapshot saved",
		zap.String("file", filename),
		zap.Int("collections", len(snapshot.Collections)),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

// LoadFromFile replaces the store contents with a snapshot. A missing file is
// not an error: the store stays empty and the caller can seed it.
func (s *Store) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	snapshot, err := decodeSnapshot(file)
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", filename, err)
	}

	loaded := make(map[string]*collection, len(snapshot.Collections))
	total := 0
	for name, records := range snapshot.Collections {
		c := newCollection(name)
		for _, raw := range records {
			rec := domain.Record(raw)
			id := rec.ID()
			if id == "" {
				return fmt.Errorf("snapshot collection %s contains a record without id", name)
			}
			if _, dup := c.records[id]; dup {
				return fmt.Errorf("snapshot collection %s contains duplicate id %s", name, id)
			}
			c.records[id] = rec
			c.order = append(c.order, id)
		}
		loaded[name] = c
		total += len(records)
	}

	s.mu.Lock()
	s.collections = loaded
	s.mu.Unlock()
	s.dirty.Store(false)

	s.logger.Info("snapshot loaded",
		zap.String("file", filename),
		zap.Int("collections", len(loaded)),
		zap.Int("records", total),
		zap.Time("saved_at", snapshot.SavedAt),
	)
	return nil
}

// Save writes the configured snapshot file, if any
func (s *Store) Save() error {
	if s.snapshotFile == "" {
		return nil
	}
	return s.SaveToFile(s.snapshotFile)
}

// Load reads the configured snapshot file, if any
func (s *Store) Load() error {
	if s.snapshotFile == "" {
		return nil
	}
	return s.LoadFromFile(s.snapshotFile)
}

func encodeSnapshot(snapshot *SnapshotData) ([]byte, error) {
	msgpackData, err := msgpack.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	var buf bytes.Buffer
	// lz4 reports incompressible input with n == 0
	if n == 0 || n >= len(msgpackData) {
		if err := WriteHeader(&buf, 0, len(msgpackData)); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		buf.Write(msgpackData)
		return buf.Bytes(), nil
	}

	if err := WriteHeader(&buf, FlagCompressed, len(msgpackData)); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	buf.Write(compressedData[:n])
	return buf.Bytes(), nil
}

func decodeSnapshot(r io.Reader) (*SnapshotData, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid file header: %w", err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}

	payload := body
	if header.Flags&FlagCompressed != 0 {
		payload = make([]byte, header.RawSize)
		n, err := lz4.UncompressBlock(body, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress data: %w", err)
		}
		payload = payload[:n]
	}
	if len(payload) != int(header.RawSize) {
		return nil, fmt.Errorf("snapshot size mismatch: header says %d bytes, got %d", header.RawSize, len(payload))
	}

	var snapshot SnapshotData
	if err := msgpack.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	if snapshot.Collections == nil {
		snapshot.Collections = make(map[string][]map[string]interface{})
	}
	return &snapshot, nil
}
