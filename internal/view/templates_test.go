package view

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-cms/arbor/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "05 Mar 2024 14:30", formatDate(ts))
	assert.Equal(t, "05 Mar 2024 14:30", formatDate(&ts))
	var missing *time.Time
	assert.Empty(t, formatDate(missing))
	assert.Empty(t, formatDate(time.Time{}))
}

func TestRenderBreadcrumbs(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/home.html", TemplateData{
		Title:       "Dashboard",
		Breadcrumbs: []shared.Breadcrumb{{URL: "/admin/pages/1/", Label: "Root"}, {Label: "Dashboard"}},
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/admin/pages/1/"`)
	assert.Contains(t, body, "Dashboard")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}
