package snapshot

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
)

// CompressedExt marks zstd-compressed snapshot files.
const CompressedExt = ".zst"

// WriteFile writes v as indented JSON, zstd-compressed when path ends in
// CompressedExt.
func WriteFile(path string, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if strings.HasSuffix(path, CompressedExt) {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("create compressor: %w", err)
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return fmt.Errorf("compress snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("compress snapshot: %w", err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadFile reads a snapshot file written by WriteFile and returns the raw
// JSON document.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if !strings.HasSuffix(path, CompressedExt) {
		return data, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create decompressor: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return out, nil
}

// ExportFile writes a complete snapshot to path.
func (s *Service) ExportFile(path string) (*Snapshot, error) {
	snap, err := s.ExportComplete()
	if err != nil {
		return nil, err
	}
	if err := WriteFile(path, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// ImportFile imports the snapshot stored at path.
func (s *Service) ImportFile(path string) (ImportResult, error) {
	raw, err := ReadFile(path)
	if err != nil {
		return ImportResult{}, err
	}
	return s.ImportCompleteJSON(raw), nil
}
