package pages

import (
	"strings"
	"sync"
)

// BaseTypeKey identifies the generic page type.
const BaseTypeKey = "pages.page"

// Type describes a specific page type.
type Type struct {
	Key         string
	VerboseName string
	Icon        string
}

var (
	typesMu sync.RWMutex
	types   = map[string]Type{
		BaseTypeKey: {Key: BaseTypeKey, VerboseName: "Page", Icon: "doc-empty-inverse"},
	}
)

// RegisterType makes a page type resolvable by Specific. Registering a key
// twice replaces the earlier entry.
func RegisterType(t Type) {
	key := strings.ToLower(strings.TrimSpace(t.Key))
	if key == "" {
		return
	}
	t.Key = key
	if t.Icon == "" {
		t.Icon = "doc-empty-inverse"
	}
	typesMu.Lock()
	types[key] = t
	typesMu.Unlock()
}

// LookupType returns the registered type for key, or the base type.
func LookupType(key string) Type {
	typesMu.RLock()
	defer typesMu.RUnlock()
	if t, ok := types[strings.ToLower(key)]; ok {
		return t
	}
	return types[BaseTypeKey]
}

// Specific returns the page resolved to its most specific registered type.
func (p Page) Specific() Page {
	p.Type = LookupType(p.ContentType)
	return p
}
