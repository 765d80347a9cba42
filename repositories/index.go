package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blugelabs/bluge"

	"radchat/domain"
)

// SearchHit is one match from the full text index.
type SearchHit struct {
	Seq    uint64 `json:"seq"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

// SearchIndex maintains a bluge index over the room history so old
// conversations can be searched by keyword.
type SearchIndex struct {
	writer *bluge.Writer
}

func NewSearchIndex(path string) (*SearchIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &SearchIndex{writer: writer}, nil
}

func (s *SearchIndex) Close() error {
	return s.writer.Close()
}

// Index adds or replaces one entry in the index, keyed by sequence number.
func (s *SearchIndex) Index(entry domain.ChatEntry) error {
	doc := bluge.NewDocument(strconv.FormatUint(entry.Seq, 10)).
		AddField(bluge.NewTextField("text", entry.Text).StoreValue()).
		AddField(bluge.NewTextField("author", entry.Author).StoreValue())
	return s.writer.Update(doc.ID(), doc)
}

// Search runs a match query over the entry text and returns up to limit
// hits along with the total match count.
func (s *SearchIndex) Search(ctx context.Context, query string, limit, offset int) ([]SearchHit, uint64, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	matchQuery := bluge.NewMatchQuery(query).SetField("text")
	request := bluge.NewTopNSearch(limit, matchQuery).
		SetFrom(offset).
		WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit SearchHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.Seq, _ = strconv.ParseUint(string(value), 10, 64)
			case "text":
				hit.Text = string(value)
			case "author":
				hit.Author = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}
	return hits, iterator.Aggregations().Count(), nil
}
