package badger

import (
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/attestor/core"
	"github.com/poiesic/attestor/storage"
)

// CorpusRepository implements storage.CorpusRepository for BadgerDB.
//
// Documents live under poldoc:<id>. A category index under
// polcat:<category>\x00<policy number>\x00<id> provides ordered listing
// without decoding documents outside the requested categories.
type CorpusRepository struct {
	backend *Backend
}

var _ storage.CorpusRepository = (*CorpusRepository)(nil)

// NewCorpusRepository creates a new CorpusRepository.
func NewCorpusRepository(backend *Backend) (*CorpusRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &CorpusRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CorpusRepository has no resources to release.
func (r *CorpusRepository) Close() error {
	return nil
}

// AddDocuments stores documents, replacing existing ones with the same ID.
func (r *CorpusRepository) AddDocuments(ctx context.Context, docs ...*core.PolicyDocument) ([]*core.PolicyDocument, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc == nil || doc.ID == "" {
				return storage.ErrMissingID
			}
			key := makeDocumentKey(doc.ID)

			// Drop the stale index entry if number or category changed
			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if old != nil && (old.Category != doc.Category || old.PolicyNumber != doc.PolicyNumber) {
				if err := tx.Delete(makeCategoryKey(old)); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalPolicyDocument(doc)); err != nil {
				return err
			}
			if err := tx.Set(makeCategoryKey(doc), []byte(doc.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocuments removes documents by their IDs.
func (r *CorpusRepository) DeleteDocuments(ctx context.Context, ids ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)
			doc, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}
			if err := tx.Delete(makeCategoryKey(doc)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *CorpusRepository) GetDocument(ctx context.Context, id string) (*core.PolicyDocument, error) {
	var result *core.PolicyDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListByCategories returns documents in the given categories ordered by
// category, then policy number. Unknown categories simply match nothing.
func (r *CorpusRepository) ListByCategories(ctx context.Context, categories ...core.Category) ([]*core.PolicyDocument, error) {
	if len(categories) == 0 {
		return []*core.PolicyDocument{}, nil
	}

	sorted := slices.Clone(categories)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	result := make([]*core.PolicyDocument, 0)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, category := range sorted {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs, err := scanIndex(tx, makeCategoryPrefix(category))
			if err != nil {
				return err
			}
			result = append(result, docs...)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListDocuments returns the whole corpus ordered by category, then policy number.
func (r *CorpusRepository) ListDocuments(ctx context.Context) ([]*core.PolicyDocument, error) {
	var result []*core.PolicyDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = scanIndex(tx, makeCategoryIndexPrefix())
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scanIndex walks category index keys under prefix and loads the referenced documents.
func scanIndex(tx *badger.Txn, prefix []byte) ([]*core.PolicyDocument, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []string
	for iter.Rewind(); iter.Valid(); iter.Next() {
		err := iter.Item().Value(func(val []byte) error {
			ids = append(ids, string(val))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	docs := make([]*core.PolicyDocument, 0, len(ids))
	for _, id := range ids {
		doc, err := readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// readDocument loads a document by key. Returns nil, nil when the key is absent.
func readDocument(tx *badger.Txn, key []byte) (*core.PolicyDocument, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.PolicyDocument
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalPolicyDocument(val)
		return unmarshalErr
	})
	return doc, err
}
