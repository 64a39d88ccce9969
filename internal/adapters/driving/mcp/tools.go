package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/services"
)

// SearchInput is the input schema for the search_images tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"keywords to search the image catalog for"`
	Page  int    `json:"page,omitempty" jsonschema:"result page to fetch, starting at 1 (default 1)"`
}

// SearchOutput is the output schema for the search_images tool.
type SearchOutput struct {
	Images []ImageOutput `json:"images"`
	Count  int           `json:"count"`
	Page   int           `json:"page"`
}

// ImageOutput represents a single search hit.
type ImageOutput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
	Link     string `json:"link,omitempty"`
	IsAlbum  bool   `json:"is_album"`
}

// AddCommentInput is the input schema for the add_comment tool.
type AddCommentInput struct {
	ImageID string `json:"image_id" jsonschema:"id of the image to comment on"`
	Text    string `json:"text" jsonschema:"comment text; replaces any existing comment"`
}

// AddCommentOutput is the output schema for the add_comment tool.
type AddCommentOutput struct {
	ImageID string `json:"image_id"`
	Rows    int64  `json:"rows"`
}

// GetCommentInput is the input schema for the get_comment tool.
type GetCommentInput struct {
	ImageID string `json:"image_id" jsonschema:"id of the image whose comment to read"`
}

// GetCommentOutput is the output schema for the get_comment tool.
type GetCommentOutput struct {
	ImageID string `json:"image_id"`
	Found   bool   `json:"found"`
	Text    string `json:"text,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_images",
		Description: "Search the image catalog by keyword, one page at a time",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_comment",
		Description: "Attach a comment to an image, replacing any previous comment",
	}, s.handleAddComment)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_comment",
		Description: "Read the comment attached to an image",
	}, s.handleGetComment)
}

// handleSearch handles the search_images tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}

	records, err := services.AwaitSearch(ctx, s.ports.Repository, page, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Images: make([]ImageOutput, len(records)),
		Count:  len(records),
		Page:   page,
	}
	for i, rec := range records {
		output.Images[i] = ImageOutput{
			ID:       rec.ID,
			Title:    rec.Title,
			ImageURL: rec.CoverURL(s.ports.ImageBaseURL),
			Link:     rec.Link,
			IsAlbum:  rec.IsAlbum,
		}
	}

	return nil, output, nil
}

// handleAddComment handles the add_comment tool invocation.
func (s *Server) handleAddComment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddCommentInput,
) (*mcp.CallToolResult, AddCommentOutput, error) {
	rows, err := services.AwaitUpsert(ctx, s.ports.Repository, input.ImageID, input.Text)
	if err != nil {
		return nil, AddCommentOutput{}, err
	}
	return nil, AddCommentOutput{ImageID: input.ImageID, Rows: rows}, nil
}

// handleGetComment handles the get_comment tool invocation.
func (s *Server) handleGetComment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetCommentInput,
) (*mcp.CallToolResult, GetCommentOutput, error) {
	text, err := services.AwaitComment(ctx, s.ports.Repository, input.ImageID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, GetCommentOutput{ImageID: input.ImageID}, nil
	}
	if err != nil {
		return nil, GetCommentOutput{}, err
	}
	return nil, GetCommentOutput{ImageID: input.ImageID, Found: true, Text: text}, nil
}
