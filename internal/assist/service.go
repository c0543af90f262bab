// Package assist answers questions about the vault: it classifies the
// question, ranks the corpus for context, and streams a generated answer.
// There is exactly one implementation of this flow, parameterized by the
// llm.Provider it talks to.
package assist

import (
	"context"
	"log/slog"

	"github.com/halvard/muninn/internal/llm"
	"github.com/halvard/muninn/internal/retrieval"
	"github.com/halvard/muninn/internal/vault"
)

// Chunk is one increment of a streamed answer. Exactly one field is set.
type Chunk struct {
	Token   string   `json:"token,omitempty"`
	Sources []Source `json:"sources,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// Source identifies a note used as context for the answer.
type Source struct {
	Path    string `json:"path"`
	Score   int    `json:"score"`
	Created string `json:"created,omitempty"`
}

// EmitFunc receives answer chunks in order. Returning an error aborts the
// stream.
type EmitFunc func(Chunk) error

// Service is the chat orchestrator.
type Service struct {
	engine     *retrieval.Engine
	provider   llm.Provider
	snapshot   *vault.Snapshot
	maxResults int
	logger     *slog.Logger
}

// NewService creates a chat service. maxResults caps the number of context
// notes per answer; 0 uses the retrieval default.
func NewService(engine *retrieval.Engine, provider llm.Provider, snapshot *vault.Snapshot, maxResults int, logger *slog.Logger) *Service {
	if maxResults <= 0 {
		maxResults = retrieval.DefaultMaxResults
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:     engine,
		provider:   provider,
		snapshot:   snapshot,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Answer processes one question end to end: classify, rank, generate. Tokens
// stream through emit as they arrive; a final Sources chunk follows a
// successful generation. Provider failures surface as an Err chunk rather
// than a returned error so the stream can close cleanly.
func (s *Service) Answer(ctx context.Context, question string, emit EmitFunc) error {
	corpus := s.snapshot.Notes()

	intent := s.engine.Classify(question)
	var contextNotes []retrieval.ContextNote
	if intent.Type == retrieval.IntentSearch {
		contextNotes = s.engine.Rank(question, corpus, intent.DateFilter, s.maxResults)
	}
	profile := retrieval.BuildProfile(corpus)

	s.logger.Info("assist: answering",
		slog.String("intent", string(intent.Type)),
		slog.Bool("temporal", intent.Temporal),
		slog.String("date_filter", string(intent.DateFilter)),
		slog.Int("context_notes", len(contextNotes)))

	req := llm.Request{
		System:      buildSystemPrompt(profile),
		Prompt:      buildUserPrompt(question, intent, contextNotes),
		Temperature: 0.7,
	}

	streamErr := s.provider.Stream(ctx, req, func(token string) error {
		return emit(Chunk{Token: token})
	})
	if streamErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Error("assist: generation failed", slog.String("error", streamErr.Error()))
		return emit(Chunk{Err: "Sorry, I encountered an error processing your request."})
	}

	if len(contextNotes) > 0 {
		sources := make([]Source, 0, len(contextNotes))
		for _, cn := range contextNotes {
			sources = append(sources, Source{
				Path:    cn.Path,
				Score:   cn.Score,
				Created: cn.CreatedTimeReadable,
			})
		}
		return emit(Chunk{Sources: sources})
	}
	return nil
}
