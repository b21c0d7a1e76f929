package cli

import (
	"fmt"

	"kbrag/config"
	"kbrag/internal/adapter/chunker"
	"kbrag/internal/adapter/retriever"
	"kbrag/internal/adapter/store"
	"kbrag/internal/logger"
	"kbrag/internal/usecase"
)

// openStore opens the document database under the knowledge base
// directory and brings its schema up to date.
func openStore() (*store.BoltStore, error) {
	dir := GetRootDir()
	if err := config.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.NewBoltStore(config.StorePath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	migration, err := st.CheckMigration()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to check migration: %w", err)
	}

	switch {
	case migration.NeedsRebuild:
		st.Close()
		return nil, fmt.Errorf("cannot open document store: %s", migration.Reason)
	case migration.NeedsMigration:
		logger.Info("running schema migration: %s", migration.Reason)
		if err := st.Migrate(); err != nil {
			st.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	return st, nil
}

func newRetriever(cfg *config.Config) (*retriever.KnowledgeRetriever, error) {
	chk, err := chunker.NewParagraphChunker(cfg.Knowledge.ChunkSize)
	if err != nil {
		return nil, err
	}
	scorer := retriever.NewLexicalScorer(retriever.DefaultWeights())
	return retriever.NewKnowledgeRetriever(chk, scorer, cfg.Knowledge.PassageChars)
}

func newRetrieveUseCase(cfg *config.Config, st *store.BoltStore) (*usecase.RetrieveUseCase, error) {
	r, err := newRetriever(cfg)
	if err != nil {
		return nil, err
	}
	return usecase.NewRetrieveUseCase(st, r, cfg.Knowledge.TopK), nil
}
