package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const (
	// Magic bytes to identify our file format
	MagicBytes = "GODB"
	// Current version
	FormatVersion = 1
	// File extension for snapshot files
	FileExtension = ".godb"
)

const (
	// FlagCompressed marks an lz4 block payload; unset means raw msgpack
	FlagCompressed uint8 = 1 << iota
)

// FileHeader represents the header of a snapshot file
type FileHeader struct {
	Magic    [4]byte // "GODB"
	Version  uint8   // Format version
	Flags    uint8   // FlagCompressed
	Reserved [2]byte // Reserved for future use
	RawSize  uint32  // Uncompressed payload size
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer, flags uint8, rawSize int) error {
	header := FileHeader{
		Magic:    [4]byte{'G', 'O', 'D', 'B'},
		Version:  FormatVersion,
		Flags:    flags,
		Reserved: [2]byte{0, 0},
		RawSize:  uint32(rawSize),
	}

	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Validate magic bytes
	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}

	// Validate version
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	return &header, nil
}

// SnapshotData represents the data structure we store. Collections are kept
// as ordered slices so a reload preserves list order.
type SnapshotData struct {
	Collections map[string][]map[string]interface{} `msgpack:"collections"`
	SavedAt     time.Time                           `msgpack:"saved_at"`
	Metadata    map[string]interface{}              `msgpack:"metadata,omitempty"`
}

// NewSnapshotData creates a new empty snapshot
func NewSnapshotData() *SnapshotData {
	return &SnapshotData{
		Collections: make(map[string][]map[string]interface{}),
		Metadata:    make(map[string]interface{}),
	}
}
