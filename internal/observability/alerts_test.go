package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type ruleFile struct {
	Groups []struct {
		Name  string      `yaml:"name"`
		Rules []alertRule `yaml:"rules"`
	} `yaml:"groups"`
}

func loadRules(t *testing.T) map[string]alertRule {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "deploy", "prometheus", "alerts", "arbor.yml"))
	require.NoError(t, err)

	var file ruleFile
	require.NoError(t, yaml.Unmarshal(data, &file))

	rules := make(map[string]alertRule)
	for _, group := range file.Groups {
		if group.Name != "arbor" {
			continue
		}
		for _, rule := range group.Rules {
			rules[rule.Alert] = rule
		}
	}
	return rules
}

func TestAdminAlertRules(t *testing.T) {
	rules := loadRules(t)

	want := map[string]struct {
		severity string
		anchor   string
		metric   string
	}{
		"AdminHighErrorRate":         {"critical", "high-error-rate", "arbor_http_requests_total"},
		"HistoryHighLatency":         {"warning", "history-latency", "arbor_http_request_duration_seconds_bucket"},
		"ScheduledPublishingFailing": {"warning", "scheduled-publishing", "arbor_jobs_failures_total"},
	}
	require.Len(t, rules, len(want))

	runbook, err := os.ReadFile(filepath.Join("..", "..", "docs", "runbook-ops.md"))
	require.NoError(t, err)

	for name, w := range want {
		t.Run(name, func(t *testing.T) {
			rule, ok := rules[name]
			require.True(t, ok, "rule missing")
			assert.Equal(t, w.severity, rule.Labels["severity"])
			assert.Equal(t, "docs/runbook-ops.md#"+w.anchor, rule.Annotations["runbook"])
			assert.NotEmpty(t, rule.Annotations["summary"])
			assert.NotEmpty(t, rule.Annotations["description"])
			assert.NotEmpty(t, rule.For)
			assert.Contains(t, rule.Expr, w.metric)

			heading := "## " + strings.ReplaceAll(w.anchor, "-", " ")
			assert.Contains(t, strings.ToLower(string(runbook)), heading)
		})
	}
}
