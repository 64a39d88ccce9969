package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/services"
)

const (
	// uriScheme is the custom URI scheme for imgscout resources.
	uriScheme = "imgscout://"
)

// secretKeys are never exposed through the settings resource.
var secretKeys = map[string]bool{
	"imgur.access_token": true,
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "settings",
		Name:        "settings",
		Description: "Current imgscout configuration, without secrets",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "comments/{imageId}",
		Name:        "image-comment",
		Description: "The comment attached to an image",
		MIMEType:    "text/plain",
	}, s.handleCommentResource)
}

// handleSettingsResource returns the stored configuration values.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	values := map[string]string{}
	if s.ports.Settings != nil {
		for _, key := range s.ports.Settings.Keys() {
			if secretKeys[key] {
				continue
			}
			if val, ok := s.ports.Settings.Lookup(key); ok {
				values[key] = val
			}
		}
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling settings: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleCommentResource returns the comment text for an image.
func (s *Server) handleCommentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	imageID := extractImageID(req.Params.URI)
	if imageID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	text, err := services.AwaitComment(ctx, s.ports.Repository, imageID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading comment: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

// extractImageID extracts the image id from imgscout://comments/{imageId}.
func extractImageID(uri string) string {
	id, ok := strings.CutPrefix(uri, uriScheme+"comments/")
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
