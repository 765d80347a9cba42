package moderation

import (
	"bufio"
	"embed"
	"strings"

	"github.com/samber/lo"
)

//go:embed censored/*.txt
var censoredFolder embed.FS

// EmbeddedWords returns the deduplicated union of the shipped word
// lists, one language per file.
func EmbeddedWords() ([]string, error) {
	files, err := censoredFolder.ReadDir("censored")
	if err != nil {
		return nil, err
	}

	var words []string
	for _, file := range files {
		data, err := censoredFolder.Open("censored/" + file.Name())
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(data)
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word != "" && !strings.HasPrefix(word, "#") {
				words = append(words, word)
			}
		}
		_ = data.Close()
		if err = scanner.Err(); err != nil {
			return nil, err
		}
	}
	return lo.Uniq(words), nil
}
