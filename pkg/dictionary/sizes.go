package dictionary

import "fmt"

// SizeOption is a dictionary size a chunk directory can be compiled to,
// taking its first Chunks chunks.
type SizeOption struct {
	Chunks int    `json:"chunks"`
	Words  int    `json:"words"`
	Label  string `json:"label"`
}

// SizeOptions lists the cumulative sizes available from the chunks in dir.
func SizeOptions(dir string) ([]SizeOption, error) {
	chunks, err := GetAvailableChunks(dir)
	if err != nil {
		return nil, err
	}

	options := make([]SizeOption, 0, len(chunks))
	total := 0
	for i, chunk := range chunks {
		total += chunk.WordCount
		options = append(options, SizeOption{
			Chunks: i + 1,
			Words:  total,
			Label:  sizeLabel(total),
		})
	}
	return options, nil
}

func sizeLabel(words int) string {
	if words < 1000 {
		return fmt.Sprintf("%d words", words)
	}
	return fmt.Sprintf("%dK words", words/1000)
}
