package service

import (
	"net/http"
	"strings"

	"github.com/onexay/gitobs/docs"
)

// The console keeps the commit author in localStorage and sends it as
// X-Author-Name, since POST /api/v1/commits rejects requests without it.
const consoleHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>gitobs console</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
  <style>
    #author { padding: 8px 16px; font-family: sans-serif; border-bottom: 1px solid #ddd; }
  </style>
</head>
<body>
  <form id="author">
    <label>Commit author <input name="author" placeholder="X-Author-Name"></label>
  </form>
  <div id="console"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    const field = document.querySelector('#author input');
    field.value = localStorage.getItem('gitobs.author') || '';
    field.addEventListener('change', () => localStorage.setItem('gitobs.author', field.value));
    SwaggerUIBundle({
      url: 'openapi.yaml',
      dom_id: '#console',
      tagsSorter: 'alpha',
      operationsSorter: 'method',
      requestInterceptor: (req) => {
        if (field.value) req.headers['X-Author-Name'] = field.value;
        return req;
      },
    });
  </script>
</body>
</html>`

func (s *Service) handleSwagger(w http.ResponseWriter, r *http.Request, tail string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	switch strings.TrimPrefix(tail, "/") {
	case "", "index.html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(consoleHTML))
	case "openapi.yaml":
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(docs.OpenAPI)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown document"})
	}
}
