package server

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/kbukum/chunkscribe/logger"
)

var systemPaths = map[string]bool{"/live": true, "/health": true, "/ready": true, "/info": true}

var methodRank = map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4}

// Route is one registered route.
type Route struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Handler string `json:"handler"`
	System  bool   `json:"system"`
}

// Routes lists the API routes by path, then the probe endpoints.
func (s *Server) Routes() []Route {
	routes := make([]Route, 0, len(s.engine.Routes()))
	for _, r := range s.engine.Routes() {
		routes = append(routes, Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler),
			System:  systemPaths[r.Path],
		})
	}
	slices.SortFunc(routes, func(a, b Route) int {
		if a.System != b.System {
			if a.System {
				return 1
			}
			return -1
		}
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(rank(a.Method), rank(b.Method)))
	})
	return routes
}

func rank(method string) int {
	if r, ok := methodRank[method]; ok {
		return r
	}
	return len(methodRank)
}

// LogRoutes logs the route table once registration is done.
func (s *Server) LogRoutes() {
	for _, r := range s.Routes() {
		s.log.Info("route registered", logger.Fields(
			"method", r.Method,
			"path", r.Path,
			"handler", r.Handler,
			"system", r.System,
		))
	}
}

// formatHandlerName shortens Gin's handler names:
// "…/api.(*Handler).Transcribe-fm" becomes "Handler.Transcribe" and a
// closure such as "…/endpoint.Health.func1" becomes "health".
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	closure := false
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
		closure = true
	}
	if closure {
		return strings.ToLower(parts[len(parts)-1])
	}
	if len(parts) > 1 && !strings.ContainsFunc(parts[0], unicode.IsUpper) {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
