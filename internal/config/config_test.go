package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/issue"
)

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"ignored_issue_kinds": ["NullableReturnStatement"],
		"ignore_paths": ["vendor/**"],
		"incremental_diff": true
	}`)
	cfg, err := Parse(data, "hakana.json")
	require.NoError(t, err)
	assert.True(t, cfg.IncrementalDiff)
	assert.False(t, cfg.Enabled(issue.NullableReturnStatement))
}

func TestParseYAML(t *testing.T) {
	data := []byte("ignore_paths:\n  - vendor/**\ntest_paths:\n  - \"*_test.php\"\n")
	cfg, err := Parse(data, "hakana.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.IsIgnoredPath("vendor/**"))
	assert.True(t, cfg.IsTestPath("foo_test.php"))
}

func TestParseRejectsUnknownIssueKind(t *testing.T) {
	data := []byte(`{"ignored_issue_kinds": ["NotARealKind"]}`)
	_, err := Parse(data, "hakana.json")
	assert.Error(t, err)
}

func TestFilterDropsIgnoredKinds(t *testing.T) {
	cfg, err := Parse([]byte(`{"ignored_issue_kinds": ["NullableReturnStatement"]}`), "hakana.json")
	require.NoError(t, err)

	issues := []issue.Issue{
		issue.New(issue.NullableReturnStatement, "m1", ast.Position{}),
		issue.New(issue.InvalidReturnStatement, "m2", ast.Position{}),
	}
	filtered := cfg.Filter(issues)
	require.Len(t, filtered, 1)
	assert.Equal(t, issue.InvalidReturnStatement, filtered[0].Kind)
}

func TestDefaultConfigEnabledEverything(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Enabled(issue.NullableReturnStatement))
	assert.Empty(t, cfg.Filter(nil))
}
