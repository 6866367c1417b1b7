package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchFAQTool returns the tool definition for search_faq
func searchFAQTool() mcp.Tool {
	return mcp.Tool{
		Name: "search_faq",
		Description: "Search the FAQ database for answers to user questions. " +
			"Uses hybrid search combining keyword matching (TF-IDF) and " +
			"semantic similarity (embeddings). The query should be a clear, " +
			"concise question; avoid meta-instructions like 'use this tool'.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The user's question, in natural language",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results to return (default: 3)",
					"default":     3,
					"minimum":     1,
				},
			},
			Required: []string{"query"},
		},
	}
}

// addFAQTool returns the tool definition for add_faq
func addFAQTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_faq",
		Description: "Add a new FAQ entry to the database and make it searchable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The FAQ question text",
				},
				"answer": map[string]interface{}{
					"type":        "string",
					"description": "The FAQ answer text",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Category label; unknown labels become 'general'",
				},
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Stable id for the entry; generated when omitted",
				},
			},
			Required: []string{"question", "answer"},
		},
	}
}

// refreshFAQsTool returns the tool definition for refresh_faqs
func refreshFAQsTool() mcp.Tool {
	return mcp.Tool{
		Name: "refresh_faqs",
		Description: "Reload the FAQ corpus from the database and rebuild " +
			"the search index. Use after external corpus or embedding changes.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report corpus size, embedding coverage and index readiness",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
