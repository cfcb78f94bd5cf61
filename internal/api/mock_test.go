package api

import (
	"context"

	"github.com/sells-group/vendor-geo/internal/discovery"
	"github.com/sells-group/vendor-geo/internal/insights"
)

type mockSearcher struct {
	result *discovery.Result
	err    error
	got    discovery.Query
	calls  int
}

func (m *mockSearcher) Search(_ context.Context, q discovery.Query) (*discovery.Result, error) {
	m.calls++
	m.got = q
	return m.result, m.err
}

type mockRunner struct {
	report *insights.Report
	err    error
	got    insights.Request
}

func (m *mockRunner) Run(_ context.Context, req insights.Request) (*insights.Report, error) {
	m.got = req
	return m.report, m.err
}
