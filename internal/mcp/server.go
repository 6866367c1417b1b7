// Package mcp exposes the FAQ search core as MCP tools over stdio, so
// external chat agents can query it.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"faqsearch/internal/config"
	"faqsearch/internal/embedder"
	"faqsearch/internal/ingest"
	"faqsearch/internal/ranker"
	"faqsearch/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "faqsearch"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies.
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	store    store.Store
	embedder embedder.Embedder
	ranker   *ranker.Ranker
	ingestor *ingest.Ingestor
}

// NewServer wires the store, embedder, ranker and ingestor behind an MCP
// server. The first snapshot build is kicked off in the background;
// searches block until it completes.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	rk, err := ranker.New(st, emb, ranker.Weights{
		TFIDF:     cfg.TFIDFWeight,
		Embedding: cfg.EmbeddingWeight,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		cfg:      cfg,
		store:    st,
		embedder: emb,
		ranker:   rk,
		ingestor: ingest.New(st, emb),
	}
	s.registerTools()

	go func() {
		if err := rk.Rebuild(context.Background()); err != nil {
			log.Printf("initial index build failed: %v", err)
		} else {
			log.Printf("index ready: %d FAQs loaded", rk.CorpusSize())
		}
	}()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.embedder.Close()
		_ = s.store.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchFAQTool(), s.handleSearchFAQ)
	s.mcp.AddTool(addFAQTool(), s.handleAddFAQ)
	s.mcp.AddTool(refreshFAQsTool(), s.handleRefreshFAQs)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
