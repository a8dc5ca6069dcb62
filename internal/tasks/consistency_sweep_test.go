package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readtrack/internal/consistency"
)

type fakeSweepRunner struct {
	report *consistency.Report
	err    error
}

func (f *fakeSweepRunner) Run() (*consistency.Report, error) {
	return f.report, f.err
}

type fakeSweepRecorder struct {
	status  string
	summary string
}

func (f *fakeSweepRecorder) SetSweepStatus(status, summary string) error {
	f.status = status
	f.summary = summary
	return nil
}

func TestConsistencySweepRecordsCleanOutcome(t *testing.T) {
	runner := &fakeSweepRunner{report: &consistency.Report{CheckedSessions: 3, CheckedEntries: 12}}
	recorder := &fakeSweepRecorder{}

	processor := ConsistencySweepProcessor(runner, recorder)
	err := processor(context.Background(), ConsistencySweepTask{Trigger: "cron"})
	require.NoError(t, err)

	assert.Equal(t, "clean", recorder.status)
	assert.Contains(t, recorder.summary, "0 issues")
}

func TestConsistencySweepRecordsIssues(t *testing.T) {
	runner := &fakeSweepRunner{report: &consistency.Report{
		CheckedSessions: 1,
		CheckedEntries:  2,
		Issues: []consistency.Issue{
			{Kind: consistency.IssueNonMonotonic, SessionID: 1, Detail: "page drops from 150 on 2026-03-05 to 100 on 2026-03-10"},
		},
	}}
	recorder := &fakeSweepRecorder{}

	processor := ConsistencySweepProcessor(runner, recorder)
	err := processor(context.Background(), ConsistencySweepTask{Trigger: "manual"})
	require.NoError(t, err)

	assert.Equal(t, "issues", recorder.status)
	assert.Contains(t, recorder.summary, "1 issues found")
}

func TestConsistencySweepRecordsFailure(t *testing.T) {
	runner := &fakeSweepRunner{err: errors.New("db locked")}
	recorder := &fakeSweepRecorder{}

	processor := ConsistencySweepProcessor(runner, recorder)
	err := processor(context.Background(), ConsistencySweepTask{Trigger: "cron"})
	require.Error(t, err)

	assert.Equal(t, "failed", recorder.status)
}
