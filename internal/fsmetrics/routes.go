package fsmetrics

import (
	"os"
	"path/filepath"
	"regexp"
)

// RouteFile describes one configured API route file: whether it exists
// and how many endpoint declarations it contains.
type RouteFile struct {
	File      string `json:"file"`
	Exists    bool   `json:"exists"`
	Endpoints int    `json:"endpoints"`
}

// endpointPattern matches common HTTP endpoint declarations across the
// frameworks we observe in practice: Express-style router.get(...),
// FastAPI/Flask decorators @app.post(...), and bare app.delete(...).
var endpointPattern = regexp.MustCompile(`(?m)@?(?:app|router|api)\.(?:get|post|put|delete|patch)\s*\(`)

// InspectRoutes checks each route file (relative to root) for existence
// and counts its endpoint declarations. An unreadable file is reported
// as existing with zero endpoints.
func InspectRoutes(root string, files []string) []RouteFile {
	routes := make([]RouteFile, 0, len(files))
	for _, f := range files {
		r := RouteFile{File: f}
		full := filepath.Join(root, f)
		if _, err := os.Stat(full); err == nil {
			r.Exists = true
			if data, err := os.ReadFile(full); err == nil {
				r.Endpoints = len(endpointPattern.FindAll(data, -1))
			}
		}
		routes = append(routes, r)
	}
	return routes
}
