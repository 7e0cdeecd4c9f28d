package httpx

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Routes maps route names to chi patterns so that URLs can be built by name.
type Routes struct {
	mu       sync.RWMutex
	patterns map[string]string
}

// NewRoutes returns an empty registry.
func NewRoutes() *Routes {
	return &Routes{patterns: make(map[string]string)}
}

// Name registers pattern under name. The pattern may use chi placeholders
// such as {page_id}.
func (r *Routes) Name(name, pattern string) {
	r.mu.Lock()
	r.patterns[name] = pattern
	r.mu.Unlock()
}

// Reverse builds the path for name, filling placeholders in order.
func (r *Routes) Reverse(name string, params ...any) (string, error) {
	r.mu.RLock()
	pattern, ok := r.patterns[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoReverse, name)
	}

	var b strings.Builder
	rest := pattern
	used := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("%w: malformed pattern %q", ErrNoReverse, pattern)
		}
		if used >= len(params) {
			return "", fmt.Errorf("%w: %q needs more than %d params", ErrNoReverse, name, len(params))
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(fmt.Sprint(params[used])))
		used++
		rest = rest[open+end+1:]
	}
	if used != len(params) {
		return "", fmt.Errorf("%w: %q takes %d params, got %d", ErrNoReverse, name, used, len(params))
	}
	return b.String(), nil
}

// URL is Reverse for templates and breadcrumbs. Unknown names yield "".
func (r *Routes) URL(name string, params ...any) string {
	path, err := r.Reverse(name, params...)
	if err != nil {
		return ""
	}
	return path
}
