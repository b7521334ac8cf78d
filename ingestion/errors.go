package ingestion

import "errors"

var (
	// ErrCorpusRequired is returned when a corpus repository is not provided.
	ErrCorpusRequired = errors.New("corpus repository required")

	// ErrNotDirectory is returned when IngestDirectory is given a path that is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrUnterminatedFrontMatter indicates a file opened a front matter block but never closed it.
	ErrUnterminatedFrontMatter = errors.New("unterminated front matter")
)
