package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// WordEntry is a secret word with its category
type WordEntry struct {
	Word     string `json:"word"`
	Category string `json:"category"`
}

// WordPicker supplies the secret word for a round. Word content and
// localization are external data behind this single call.
type WordPicker interface {
	PickWord(language string) (word, category string)
}

// FileWordSource loads per-language word lists from JSON files
// (<dir>/<language>.json, an array of {word, category}).
type FileWordSource struct {
	mu     sync.Mutex
	byLang map[string][]WordEntry
	rng    *rand.Rand
}

// LoadWordSource reads every *.json file in dir as a language word list
func LoadWordSource(dir string, rng *rand.Rand) (*FileWordSource, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scanning word dir: %w", err)
	}
	src := &FileWordSource{byLang: make(map[string][]WordEntry), rng: rng}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var entries []WordEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("empty word list %s", path)
		}
		lang := strings.TrimSuffix(filepath.Base(path), ".json")
		src.byLang[lang] = entries
	}
	if len(src.byLang) == 0 {
		return nil, fmt.Errorf("no word lists found in %s", dir)
	}
	return src, nil
}

// PickWord returns a random entry for the language, falling back to "en"
func (s *FileWordSource) PickWord(language string) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.byLang[language]
	if !ok || len(entries) == 0 {
		entries = s.byLang["en"]
	}
	if len(entries) == 0 {
		for _, fallback := range s.byLang {
			entries = fallback
			break
		}
	}
	e := entries[s.rng.Intn(len(entries))]
	return e.Word, e.Category
}
