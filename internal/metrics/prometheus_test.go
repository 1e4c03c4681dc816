package metrics_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ghmcp/internal/execshell"
	"github.com/temirov/ghmcp/internal/githubcli"
	"github.com/temirov/ghmcp/internal/metrics"
)

func TestPrometheusRecorderDispatchOutcomes(testInstance *testing.T) {
	recorder := metrics.NewPrometheusRecorder()

	recorder.ObserveDispatch(githubcli.OperationListIssues, "success", 20*time.Millisecond)
	recorder.ObserveDispatch(githubcli.OperationListIssues, "CommandError", 30*time.Millisecond)
	recorder.ObserveDispatch(githubcli.OperationName("drop_database"), "UnknownOperationError", time.Millisecond)

	expected := `
# HELP ghmcp_dispatch_total Total number of dispatched operations by outcome
# TYPE ghmcp_dispatch_total counter
ghmcp_dispatch_total{operation="list_issues",outcome="CommandError"} 1
ghmcp_dispatch_total{operation="list_issues",outcome="success"} 1
ghmcp_dispatch_total{operation="unknown",outcome="UnknownOperationError"} 1
`
	require.NoError(testInstance, testutil.GatherAndCompare(recorder.Gatherer(), strings.NewReader(expected), "ghmcp_dispatch_total"))

	histogramCount, countError := testutil.GatherAndCount(recorder.Gatherer(), "ghmcp_dispatch_duration_seconds")
	require.NoError(testInstance, countError)
	require.Equal(testInstance, 2, histogramCount)
}

func TestPrometheusRecorderTracksInflightCommands(testInstance *testing.T) {
	recorder := metrics.NewPrometheusRecorder()
	command := execshell.ShellCommand{Name: execshell.CommandGitHub}

	recorder.CommandStarted(command)
	recorder.CommandStarted(command)
	recorder.CommandStarted(command)
	recorder.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
	recorder.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 1})

	expected := `
# HELP ghmcp_inflight_commands Number of GitHub CLI processes currently running
# TYPE ghmcp_inflight_commands gauge
ghmcp_inflight_commands 1
`
	require.NoError(testInstance, testutil.GatherAndCompare(recorder.Gatherer(), strings.NewReader(expected), "ghmcp_inflight_commands"))

	recorder.CommandExecutionFailed(command, errors.New("exec format error"))

	expected = `
# HELP ghmcp_commands_total Total number of GitHub CLI processes by exit status
# TYPE ghmcp_commands_total counter
ghmcp_commands_total{status="failure"} 1
ghmcp_commands_total{status="not_launched"} 1
ghmcp_commands_total{status="success"} 1
# HELP ghmcp_inflight_commands Number of GitHub CLI processes currently running
# TYPE ghmcp_inflight_commands gauge
ghmcp_inflight_commands 0
`
	require.NoError(testInstance, testutil.GatherAndCompare(recorder.Gatherer(), strings.NewReader(expected), "ghmcp_commands_total", "ghmcp_inflight_commands"))
}

func TestPrometheusRecordersAreIsolated(testInstance *testing.T) {
	firstRecorder := metrics.NewPrometheusRecorder()
	secondRecorder := metrics.NewPrometheusRecorder()

	firstRecorder.ObserveDispatch(githubcli.OperationAuthStatus, "success", time.Millisecond)

	metricCount, countError := testutil.GatherAndCount(secondRecorder.Gatherer(), "ghmcp_dispatch_total")
	require.NoError(testInstance, countError)
	require.Zero(testInstance, metricCount)
}
