package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"radchat/domain"
)

func newIndexFixture(t *testing.T) *SearchIndex {
	t.Helper()
	index, err := NewSearchIndex(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestSearchFindsIndexedEntries(t *testing.T) {
	req := require.New(t)
	index := newIndexFixture(t)

	entries := []domain.ChatEntry{
		{Seq: 1, Author: "Margaux", Text: "I made a fantastic ratatouille yesterday", CreatedAt: time.Now()},
		{Seq: 2, Author: "Basile", Text: "storms off the coast of Brittany", CreatedAt: time.Now()},
		{Seq: 3, Author: "Margaux", Text: "ratatouille is best with fresh thyme", CreatedAt: time.Now()},
	}
	for _, entry := range entries {
		req.NoError(index.Index(entry))
	}

	hits, total, err := index.Search(context.Background(), "ratatouille", 10, 0)
	req.NoError(err)
	req.Equal(uint64(2), total)
	req.Len(hits, 2)
	for _, hit := range hits {
		req.Equal("Margaux", hit.Author)
		req.Contains(hit.Text, "ratatouille")
	}
}

func TestSearchNoMatches(t *testing.T) {
	req := require.New(t)
	index := newIndexFixture(t)

	req.NoError(index.Index(domain.ChatEntry{Seq: 1, Author: "Basile", Text: "quiet day at sea"}))

	hits, total, err := index.Search(context.Background(), "volcano", 10, 0)
	req.NoError(err)
	req.Zero(total)
	req.Empty(hits)
}

func TestIndexReplacesSameSequence(t *testing.T) {
	req := require.New(t)
	index := newIndexFixture(t)

	req.NoError(index.Index(domain.ChatEntry{Seq: 1, Author: "Basile", Text: "first draft"}))
	req.NoError(index.Index(domain.ChatEntry{Seq: 1, Author: "Basile", Text: "final version"}))

	_, total, err := index.Search(context.Background(), "version", 10, 0)
	req.NoError(err)
	req.Equal(uint64(1), total)
}
