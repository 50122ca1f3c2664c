package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

var swagger struct {
	mu   sync.RWMutex
	spec []byte
	etag string
}

// SetSwaggerSpec installs the OpenAPI document served at /swagger/spec.
// A nil spec unloads it.
func SetSwaggerSpec(spec []byte) {
	swagger.mu.Lock()
	defer swagger.mu.Unlock()
	swagger.spec = spec
	swagger.etag = ""
	if spec != nil {
		sum := sha256.Sum256(spec)
		swagger.etag = `"` + hex.EncodeToString(sum[:8]) + `"`
	}
}

// SwaggerSpec serves the raw OpenAPI YAML, answering 304 when the caller
// already holds the current version.
func SwaggerSpec(c *gin.Context) {
	swagger.mu.RLock()
	spec, etag := swagger.spec, swagger.etag
	swagger.mu.RUnlock()

	if spec == nil {
		c.String(http.StatusNotFound, "OpenAPI document not loaded")
		return
	}
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/yaml", spec)
}

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>walletstore API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/swagger/spec',
      dom_id: '#swagger-ui',
      persistAuthorization: true
    });
  </script>
</body>
</html>`

// SwaggerUI serves the Swagger UI page. Bearer tokens entered through
// Authorize survive reloads.
func SwaggerUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerPage))
}
