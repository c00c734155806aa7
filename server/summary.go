package server

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kbukum/whisperd/logger"
)

// Route is one registered endpoint, as listed at startup.
type Route struct {
	Method  string
	Path    string
	Handler string
	// System marks /health and /info.
	System bool
}

var methodRank = map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4}

func rank(method string) int {
	if r, ok := methodRank[method]; ok {
		return r
	}
	return len(methodRank)
}

func isSystem(path string) bool { return path == "/health" || path == "/info" }

// Routes returns the API routes sorted by path and method, followed by the
// system routes.
func (s *Server) Routes() []Route {
	var routes []Route
	for _, r := range s.engine.Routes() {
		routes = append(routes, Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: handlerName(r.Handler),
			System:  isSystem(r.Path),
		})
	}
	slices.SortFunc(routes, func(a, b Route) int {
		if a.System != b.System {
			if a.System {
				return 1
			}
			return -1
		}
		return cmp.Or(strings.Compare(a.Path, b.Path), cmp.Compare(rank(a.Method), rank(b.Method)))
	})
	return routes
}

func (s *Server) logRoutes() {
	for _, r := range s.Routes() {
		s.log.Debug("route", logger.Fields("method", r.Method, "path", r.Path, "handler", r.Handler, "system", r.System))
	}
}

// handlerName shortens Gin's handler symbol, so
// "github.com/kbukum/whisperd/api.(*TranscribeHandler).Transcribe-fm"
// reads "TranscribeHandler.Transcribe". Closures take the lowercased name of
// the function that built them.
func handlerName(symbol string) string {
	name := strings.TrimSuffix(symbol, "-fm")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	if strings.Contains(name, ".func") {
		for _, p := range slices.Backward(parts) {
			if !strings.HasPrefix(p, "func") {
				return strings.ToLower(p)
			}
		}
	}
	if len(parts) > 1 && parts[0] == strings.ToLower(parts[0]) {
		return strings.Join(parts[1:], ".")
	}
	return name
}
