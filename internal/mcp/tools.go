package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"faqsearch/pkg/faq"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32001 // Query parameter is empty
	ErrorCodeInvalidTopK   = -32002 // top_k is not a positive integer
	ErrorCodeNotReady      = -32003 // Index has not been built yet
)

// handleSearchFAQ handles the search_faq tool invocation
func (s *Server) handleSearchFAQ(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, _ := args["query"].(string)
	topK := getIntDefault(args, "top_k", s.cfg.DefaultTopK)

	resp, err := s.ranker.Search(ctx, query, topK)
	if err != nil {
		return nil, searchError(err, topK)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results":       resp.Results,
		"total_results": resp.TotalResults,
		"search_method": resp.SearchMethod,
	})), nil
}

// handleAddFAQ handles the add_faq tool invocation
func (s *Server) handleAddFAQ(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	entry := &faq.Entry{
		ID:       getStringDefault(args, "id", ""),
		Question: getStringDefault(args, "question", ""),
		Answer:   getStringDefault(args, "answer", ""),
		Category: getStringDefault(args, "category", ""),
	}

	if err := s.ingestor.AddEntry(ctx, entry); err != nil {
		switch {
		case errors.Is(err, faq.ErrEmptyQuestion), errors.Is(err, faq.ErrEmptyAnswer):
			return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
		case errors.Is(err, faq.ErrAlreadyExists):
			return nil, newMCPError(ErrorCodeInvalidParams, "faq id already exists", map[string]interface{}{
				"id": entry.ID,
			})
		default:
			return nil, newMCPError(ErrorCodeInternalError, "failed to add faq", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// New entries must show up in searches, so rebuild right away.
	if err := s.ranker.Rebuild(ctx); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "faq stored but index rebuild failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"added":       true,
		"faq_id":      entry.ID,
		"category":    entry.Category,
		"corpus_size": s.ranker.CorpusSize(),
	})), nil
}

// handleRefreshFAQs handles the refresh_faqs tool invocation
func (s *Server) handleRefreshFAQs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.ranker.Rebuild(ctx); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index rebuild failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	embedded, err := s.store.CountEmbedded(ctx)
	if err != nil {
		embedded = -1
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"refreshed":      true,
		"corpus_size":    s.ranker.CorpusSize(),
		"embedded_count": embedded,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read corpus size", map[string]interface{}{
			"error": err.Error(),
		})
	}
	embedded, err := s.store.CountEmbedded(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read embedding count", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"ready":       s.ranker.Ready(),
		"corpus_size": count,
		"embeddings": map[string]interface{}{
			"count":     embedded,
			"provider":  s.embedder.Provider(),
			"model":     s.embedder.Model(),
			"dimension": s.embedder.Dimension(),
		},
		"weights": map[string]interface{}{
			"tfidf":     s.cfg.TFIDFWeight,
			"embedding": s.cfg.EmbeddingWeight,
		},
	})), nil
}

// searchError maps ranker errors onto MCP error codes.
func searchError(err error, topK int) error {
	switch {
	case errors.Is(err, faq.ErrEmptyQuery):
		return newMCPError(ErrorCodeEmptyQuery, "query cannot be empty", map[string]interface{}{
			"param": "query",
		})
	case errors.Is(err, faq.ErrInvalidTopK):
		return newMCPError(ErrorCodeInvalidTopK, "top_k must be a positive integer", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	case errors.Is(err, faq.ErrIndexNotReady):
		return newMCPError(ErrorCodeNotReady, "index is still being built, retry shortly", nil)
	default:
		return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
