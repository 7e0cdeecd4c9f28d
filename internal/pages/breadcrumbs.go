package pages

import (
	"context"
	"strings"

	"github.com/arbor-cms/arbor/internal/shared"
)

// Explorable reports the deepest page path a user may browse from. An empty
// path with ok set means the whole tree.
type Explorable interface {
	ExplorableRootPath() (path string, ok bool)
}

// AncestorLoader loads pages by materialised path.
type AncestorLoader interface {
	ByPaths(ctx context.Context, paths []string) ([]Page, error)
}

// BreadcrumbsForPage returns one item per ancestor of page, page included,
// starting at the root the user may explore. urlFor builds the explorer link
// of each item.
func BreadcrumbsForPage(ctx context.Context, loader AncestorLoader, page Page, user Explorable, urlFor func(Page) string) ([]shared.Breadcrumb, error) {
	rootPath, ok := user.ExplorableRootPath()
	if !ok {
		return nil, nil
	}
	// The common ancestor of the explorable root and the page.
	if !strings.HasPrefix(page.Path, rootPath) {
		rootPath = commonAncestor(rootPath, page.Path)
	}

	var paths []string
	for _, p := range page.AncestorPaths() {
		if len(p) >= len(rootPath) {
			paths = append(paths, p)
		}
	}
	chain, err := loader.ByPaths(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(page.Path) >= len(rootPath) {
		chain = append(chain, page)
	}

	items := make([]shared.Breadcrumb, 0, len(chain))
	for _, p := range chain {
		p = p.Specific()
		items = append(items, shared.Breadcrumb{URL: urlFor(p), Label: p.AdminDisplayTitle()})
	}
	return items, nil
}

func commonAncestor(a, b string) string {
	n := 0
	for n+StepLength <= len(a) && n+StepLength <= len(b) && a[n:n+StepLength] == b[n:n+StepLength] {
		n += StepLength
	}
	return a[:n]
}
