//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/dgraph-io/badger/v4"

	"radchat/domain"
)

const entryPrefix = "entry:"

// IHistoryIndexer receives every appended entry so it can be found later
// through full text search. A nil indexer disables indexing.
type IHistoryIndexer interface {
	Index(entry domain.ChatEntry) error
}

type HistoryRepository struct {
	db      *badger.DB
	log     *slog.Logger
	indexer IHistoryIndexer

	mu      sync.Mutex
	nextSeq uint64
}

// NewHistoryRepository scans the highest existing key once at startup so
// sequence numbers keep growing across restarts.
func NewHistoryRepository(db *badger.DB, log *slog.Logger, indexer IHistoryIndexer) (*HistoryRepository, error) {
	repo := &HistoryRepository{db: db, log: log, indexer: indexer, nextSeq: 1}
	err := db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the last possible entry key, the first valid
		// item going backwards is the newest entry.
		it.Seek([]byte(entryPrefix + "9999999999999999999"))
		if !it.ValidForPrefix([]byte(entryPrefix)) {
			return nil
		}
		var last uint64
		if _, err := fmt.Sscanf(string(it.Item().Key()), entryPrefix+"%d", &last); err != nil {
			return err
		}
		repo.nextSeq = last + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Append persists a line of conversation and returns the stored entry.
// The key is formatted as "entry:{seq_padded}" with 19-digit zero padding
// so a plain prefix scan yields entries in chronological order.
func (h *HistoryRepository) Append(text, author string) (domain.ChatEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := domain.ChatEntry{
		Seq:       h.nextSeq,
		Author:    author,
		Text:      text,
		Lang:      detectLang(text),
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return domain.ChatEntry{}, err
	}
	err = h.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(entryKey(entry.Seq)), data)
	})
	if err != nil {
		return domain.ChatEntry{}, err
	}
	h.nextSeq++

	if h.indexer != nil {
		if err = h.indexer.Index(entry); err != nil {
			// The entry is already durable, a failed index update
			// only degrades search.
			h.log.Warn("failed to index entry", slog.Uint64("seq", entry.Seq), slog.Any("error", err))
		}
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first.
func (h *HistoryRepository) Recent(limit int) ([]domain.ChatEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	var entries []domain.ChatEntry
	err := h.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		it.Seek([]byte(entryPrefix + "9999999999999999999"))
		for ; it.ValidForPrefix([]byte(entryPrefix)); it.Next() {
			if len(entries) == limit {
				break
			}
			var entry domain.ChatEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of stored entries.
func (h *HistoryRepository) Count() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.countEntries()
}

func (h *HistoryRepository) countEntries() (int, error) {
	count := 0
	err := h.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek([]byte(entryPrefix)); it.ValidForPrefix([]byte(entryPrefix)); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Trim deletes the oldest entries so that at most keep remain. The newest
// entries always survive, sequence numbers are never reused. It holds the
// same lock as Append, so the count, the doomed key scan and the delete
// see a store no concurrent writer is touching.
func (h *HistoryRepository) Trim(keep int) error {
	if keep < 0 {
		keep = 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	count, err := h.countEntries()
	if err != nil {
		return err
	}
	excess := count - keep
	if excess <= 0 {
		return nil
	}

	var doomed [][]byte
	err = h.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek([]byte(entryPrefix)); it.ValidForPrefix([]byte(entryPrefix)); it.Next() {
			if len(doomed) == excess {
				break
			}
			doomed = append(doomed, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = h.db.Update(func(txn *badger.Txn) error {
		for _, key := range doomed {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	h.log.Debug("trimmed history", slog.Int("deleted", len(doomed)), slog.Int("kept", keep))
	return nil
}

func entryKey(seq uint64) string {
	return fmt.Sprintf(entryPrefix+"%019d", seq)
}

func detectLang(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
