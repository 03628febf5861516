package dictionary

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the dictionary file formats this package understands.
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatBlob                // Compiled trie blob
	FormatChunk               // Chunked binary wordlist
	FormatChunkDir            // Directory of chunked binary wordlists
	FormatText                // Plain text wordlist
)

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatBlob: {
		Format:      FormatBlob,
		Description: "Compiled Trie Dictionary",
		Extensions:  []string{".dict"},
		MinSize:     headerSize + 1,
	},
	FormatChunk: {
		Format:      FormatChunk,
		Description: "Chunked Binary Wordlist",
		Extensions:  []string{".bin"},
		MinSize:     4, // At least word count header
	},
	FormatChunkDir: {
		Format:      FormatChunkDir,
		Description: "Chunked Binary Wordlist Directory",
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Wordlist",
		Extensions:  []string{".txt", ".lst"},
		MinSize:     1,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// DetectFileFormat detects the format of a file or directory.
// Blobs are recognised by their magic regardless of extension.
func DetectFileFormat(path string) (FileFormat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		chunks, err := GetAvailableChunks(path)
		if err != nil {
			return FormatUnknown, err
		}
		if len(chunks) == 0 {
			return FormatUnknown, fmt.Errorf("no chunk files found in %s", path)
		}
		return FormatChunkDir, nil
	}

	if hasMagic(path) {
		return FormatBlob, checkSize(path, info.Size(), FormatBlob)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range []FileFormat{FormatChunk, FormatText} {
		for _, valid := range supportedFormats[format].Extensions {
			if ext == valid {
				return format, checkSize(path, info.Size(), format)
			}
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", path)
}

// hasMagic reports whether the file starts with the blob magic.
func hasMagic(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	head := make([]byte, len(magic))
	if _, err := io.ReadFull(file, head); err != nil {
		return false
	}
	return bytes.Equal(head, magic[:])
}

// checkSize rejects files smaller than the format minimum.
func checkSize(path string, size int64, format FileFormat) error {
	info := supportedFormats[format]
	if size < info.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			path, size, info.Description, info.MinSize)
	}
	log.Debugf("File %s detected as %s", path, info.Description)
	return nil
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
