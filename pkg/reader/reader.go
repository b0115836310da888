package reader

import (
	"fmt"
	"io"
	"os"
)

// MaxFileSize caps how much ReadFile will load. MRDF files are a few KiB.
const MaxFileSize = 16 << 20

// ReadFile loads a whole MRDF file into memory
func ReadFile(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filename)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s is %d bytes, larger than the %d byte limit", filename, info.Size(), MaxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return data, nil
}

// WriteFile replaces filename with data, going through a temporary file in
// the same directory so a failed write never leaves a truncated file behind.
func WriteFile(filename string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(filename); err == nil {
		mode = info.Mode().Perm()
	}

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	return nil
}
