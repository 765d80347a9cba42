package moderation

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedWords(t *testing.T) {
	req := require.New(t)

	words, err := EmbeddedWords()
	req.NoError(err)
	req.NotEmpty(words)
	req.Contains(words, "troll")
	req.Contains(words, "abruti")
	req.Equal(len(words), len(lo.Uniq(words)))
}
