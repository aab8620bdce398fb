package handler

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/deppfellow/flavors/internal/server"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves the API reference UI. The page loads its renderer
// from a CDN and reads /static/openapi.json.
type OpenAPIHandler struct {
	Handler
	files fs.FS
}

func NewOpenAPIHandler(s *server.Server, files fs.FS) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		files:   files,
	}
}

// ServeOpenAPIUI serves openapi.html uncached.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	page, err := fs.ReadFile(h.files, "openapi.html")
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTMLBlob(http.StatusOK, page); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}
	return nil
}

// Files is the filesystem mounted at /static.
func (h *OpenAPIHandler) Files() fs.FS {
	return h.files
}
