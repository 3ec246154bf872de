package preview_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdapp "github.com/agentstation/cgvn/cmd/application"
	"github.com/agentstation/cgvn/cmd/cgvn/cmd/preview"
	"github.com/agentstation/cgvn/internal/cmd/application"
	"github.com/agentstation/cgvn/pkg/pipeline"
	"github.com/agentstation/cgvn/pkg/table"
)

func mockWithRows(t *testing.T, n int, format string) *application.Mock {
	t.Helper()
	out := table.MustNew("identifier", "year", "ticker", "equity")
	for i := 0; i < n; i++ {
		require.NoError(t, out.Append("1234567", 2000+i, "ABC", nil))
	}
	return &application.Mock{
		OutputFormatFunc: func() string { return format },
		PipelineFunc: func(_ context.Context, write bool) (cmdapp.Runner, error) {
			assert.False(t, write)
			return application.RunnerFunc(func(context.Context) (*pipeline.Report, error) {
				return &pipeline.Report{Output: out}, nil
			}), nil
		},
	}
}

func execute(t *testing.T, mock *application.Mock, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := preview.NewCommand(mock)
	cmd.SetOut(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestPreviewLimitsRows(t *testing.T) {
	out, err := execute(t, mockWithRows(t, 30, "table"))
	require.NoError(t, err)
	assert.Contains(t, out, "2019")
	assert.NotContains(t, out, "2020")
	assert.Contains(t, out, "showing 20 of 30 rows")
}

func TestPreviewAllRowsAsJSON(t *testing.T) {
	out, err := execute(t, mockWithRows(t, 30, "json"), "--limit", "0")
	require.NoError(t, err)
	assert.Equal(t, 30, strings.Count(out, `"identifier"`))
	assert.NotContains(t, out, "showing")
}

func TestPreviewRejectsNegativeLimit(t *testing.T) {
	_, err := execute(t, mockWithRows(t, 1, "table"), "--limit", "-1")
	assert.Error(t, err)
}
