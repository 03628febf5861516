package dictionary

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultFrequency is assigned to text wordlist lines without a frequency.
const DefaultFrequency = 128

// ChunkInfo describes a chunk file of a chunked wordlist directory.
type ChunkInfo struct {
	ID        int
	Filename  string
	WordCount int
}

// ReadText reads a text wordlist: one word per line, optionally followed by
// whitespace and a frequency. Blank lines and lines starting with # are ignored.
func ReadText(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		entry := Entry{Word: fields[0], Frequency: DefaultFrequency}
		if len(fields) > 1 {
			freq, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid frequency %q: %w", line, fields[1], err)
			}
			entry.Frequency = freq
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wordlist: %w", err)
	}
	return entries, nil
}

// ReadChunk reads one chunk of the binary wordlist format: a little endian
// int32 word count followed by records of uint16 length, word bytes and
// uint16 rank. Ranks are mapped onto frequencies, rank 1 being the highest.
func ReadChunk(r io.Reader) ([]Entry, error) {
	reader := bufio.NewReader(r)

	var total int32
	if err := binary.Read(reader, binary.LittleEndian, &total); err != nil {
		return nil, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if total < 0 {
		return nil, fmt.Errorf("invalid word count %d (negative)", total)
	}

	entries := make([]Entry, 0, total)
	for len(entries) < int(total) {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				log.Warnf("Chunk ended after %d of %d words", len(entries), total)
				break
			}
			return nil, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return nil, fmt.Errorf("failed to read word: %w", err)
		}

		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return nil, fmt.Errorf("failed to read rank: %w", err)
		}

		entries = append(entries, Entry{Word: string(wordBytes), Frequency: RankFrequency(int(rank))})
	}
	return entries, nil
}

// RankFrequency maps a 1-based frequency rank onto the blob frequency range.
func RankFrequency(rank int) int {
	if rank < 1 {
		rank = 1
	}
	freq := MaxFrequency - int(15*math.Log2(float64(rank)))
	return max(1, min(freq, MaxFrequency))
}

// GetAvailableChunks scans dir for chunk files named dict_NNNN.bin.
func GetAvailableChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		count, err := chunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
		}
		chunks = append(chunks, ChunkInfo{ID: id, Filename: file, WordCount: count})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// chunkWordCount reads the word count from a chunk file's header
func chunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var count int32
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return 0, err
	}
	return int(count), nil
}

// ReadChunkDir reads every chunk in dir, in chunk order, up to maxWords words.
// A maxWords of 0 reads all of them.
func ReadChunkDir(dir string, maxWords int) ([]Entry, error) {
	chunks, err := GetAvailableChunks(dir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunk files found in %s", dir)
	}

	var entries []Entry
	for _, chunk := range chunks {
		if maxWords > 0 && len(entries) >= maxWords {
			break
		}
		file, err := os.Open(chunk.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open chunk file %s: %w", chunk.Filename, err)
		}
		words, err := ReadChunk(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.ID, err)
		}
		log.Debugf("Read chunk %d: %d words", chunk.ID, len(words))
		entries = append(entries, words...)
	}
	if maxWords > 0 && len(entries) > maxWords {
		entries = entries[:maxWords]
	}
	return entries, nil
}

// ReadWordlist reads a wordlist file or chunk directory in any supported
// source format.
func ReadWordlist(path string) ([]Entry, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatChunkDir:
		return ReadChunkDir(path, 0)
	case FormatChunk, FormatText:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer file.Close()
		if format == FormatChunk {
			return ReadChunk(file)
		}
		return ReadText(file)
	default:
		info, _ := GetFormatInfo(format)
		return nil, fmt.Errorf("%s is a %s, not a wordlist", path, info.Description)
	}
}
