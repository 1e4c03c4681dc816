package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/ghmcp/internal/dispatch"
	"github.com/temirov/ghmcp/internal/execshell"
	"github.com/temirov/ghmcp/internal/githubcli"
	"github.com/temirov/ghmcp/internal/metrics"
)

const (
	integrationTimeoutConstant     = 10 * time.Second
	repositoryPayloadConstant      = `{"name":"rust-sdk"}`
	missingRepositoryOwnerConstant = "nobody"
	resolutionFailureConstant      = "could not resolve to a Repository"
)

// failingExecutor always reports a non-zero exit with the configured stderr.
type failingExecutor struct {
	standardError string
}

func (executor *failingExecutor) ExecuteGitHubCLI(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{StandardError: executor.standardError, ExitCode: 1}, nil
}

// scriptedExecutor answers repository views and fails for the missing owner.
type scriptedExecutor struct{}

func (scriptedExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if strings.HasPrefix(details.Arguments[len(details.Arguments)-1], missingRepositoryOwnerConstant+"/") {
		return execshell.ExecutionResult{StandardError: resolutionFailureConstant + "\n", ExitCode: 1}, nil
	}
	return execshell.ExecutionResult{StandardOutput: repositoryPayloadConstant + "\n"}, nil
}

func newTestLogger() *zap.Logger {
	return zap.NewNop()
}

func newIntegrationDispatcher(testInstance *testing.T, recorder dispatch.OutcomeRecorder) OperationDispatcher {
	testInstance.Helper()
	dispatcher, creationError := dispatch.NewDispatcher(newTestLogger(), scriptedExecutor{}, dispatch.WithOutcomeRecorder(recorder))
	require.NoError(testInstance, creationError)
	return dispatcher
}

func newTestClient() *sdkmcp.Client {
	return sdkmcp.NewClient(&sdkmcp.Implementation{Name: "ghmcp-test-client", Version: "1.0.0"}, nil)
}

func callRepositoryView(testInstance *testing.T, callContext context.Context, session *sdkmcp.ClientSession, owner string) *sdkmcp.CallToolResult {
	testInstance.Helper()
	result, callError := session.CallTool(callContext, &sdkmcp.CallToolParams{
		Name:      string(githubcli.OperationViewRepository),
		Arguments: map[string]any{"owner": owner, "repo": "rust-sdk"},
	})
	require.NoError(testInstance, callError)
	require.NotEmpty(testInstance, result.Content)
	return result
}

func resultText(testInstance *testing.T, result *sdkmcp.CallToolResult) string {
	testInstance.Helper()
	textContent, isText := result.Content[0].(*sdkmcp.TextContent)
	require.True(testInstance, isText)
	return textContent.Text
}

func TestStdioTransportServesCatalog(testInstance *testing.T) {
	testContext, cancel := context.WithTimeout(context.Background(), integrationTimeoutConstant)
	defer cancel()

	mcpServer := NewServer(newIntegrationDispatcher(testInstance, nil), ServerIdentity{Name: "ghmcp", Version: "test"})

	serverReader, clientWriter := io.Pipe()
	clientReader, serverWriter := io.Pipe()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- ServeStdio(testContext, mcpServer, newTestLogger(), serverReader, serverWriter)
	}()

	session, connectError := newTestClient().Connect(testContext, &sdkmcp.IOTransport{Reader: clientReader, Writer: clientWriter}, nil)
	require.NoError(testInstance, connectError)
	defer session.Close()

	listResult, listError := session.ListTools(testContext, nil)
	require.NoError(testInstance, listError)
	toolNames := make([]string, 0, len(listResult.Tools))
	for _, tool := range listResult.Tools {
		toolNames = append(toolNames, tool.Name)
	}
	for _, definition := range githubcli.Operations() {
		require.Contains(testInstance, toolNames, string(definition.Name))
	}
	require.Len(testInstance, toolNames, len(githubcli.Operations()))

	successResult := callRepositoryView(testInstance, testContext, session, "modelcontextprotocol")
	require.False(testInstance, successResult.IsError)
	require.Equal(testInstance, repositoryPayloadConstant, resultText(testInstance, successResult))

	failureResult := callRepositoryView(testInstance, testContext, session, missingRepositoryOwnerConstant)
	require.True(testInstance, failureResult.IsError)
	var decodedError map[string]string
	require.NoError(testInstance, json.Unmarshal([]byte(resultText(testInstance, failureResult)), &decodedError))
	require.Equal(testInstance, "CommandError", decodedError["kind"])
	require.Equal(testInstance, resolutionFailureConstant, decodedError["message"])

	validationResult, callError := session.CallTool(testContext, &sdkmcp.CallToolParams{
		Name:      string(githubcli.OperationCreateIssue),
		Arguments: map[string]any{"body": "details", "repo": "octocat/hello-world"},
	})
	require.NoError(testInstance, callError)
	require.True(testInstance, validationResult.IsError)
	require.Contains(testInstance, resultText(testInstance, validationResult), "ValidationError")
	require.Contains(testInstance, resultText(testInstance, validationResult), "title")

	unknownResult, callError := session.CallTool(testContext, &sdkmcp.CallToolParams{
		Name:      "delete_everything",
		Arguments: map[string]any{"owner": "octocat"},
	})
	require.NoError(testInstance, callError)
	require.True(testInstance, unknownResult.IsError)
	var decodedUnknown map[string]string
	require.NoError(testInstance, json.Unmarshal([]byte(resultText(testInstance, unknownResult)), &decodedUnknown))
	require.Equal(testInstance, "UnknownOperationError", decodedUnknown["kind"])
	require.Equal(testInstance, "unknown operation: delete_everything", decodedUnknown["message"])

	cancel()
	_ = clientWriter.Close()
	_ = serverWriter.Close()
	<-serveDone
}

func TestHTTPHandlerServesMCPHealthAndMetrics(testInstance *testing.T) {
	testContext, cancel := context.WithTimeout(context.Background(), integrationTimeoutConstant)
	defer cancel()

	recorder := metrics.NewPrometheusRecorder()
	mcpServer := NewServer(newIntegrationDispatcher(testInstance, recorder), ServerIdentity{})
	httpServer := httptest.NewServer(NewHTTPHandler(mcpServer, HTTPHandlerOptions{Gatherer: recorder.Gatherer()}))
	defer httpServer.Close()

	healthResponse, healthError := http.Get(httpServer.URL + "/healthz")
	require.NoError(testInstance, healthError)
	healthBody, readError := io.ReadAll(healthResponse.Body)
	require.NoError(testInstance, readError)
	_ = healthResponse.Body.Close()
	require.Equal(testInstance, http.StatusOK, healthResponse.StatusCode)
	require.Equal(testInstance, "ok", string(healthBody))

	session, connectError := newTestClient().Connect(testContext, &sdkmcp.StreamableClientTransport{Endpoint: httpServer.URL + "/mcp"}, nil)
	require.NoError(testInstance, connectError)
	defer session.Close()

	result := callRepositoryView(testInstance, testContext, session, "modelcontextprotocol")
	require.False(testInstance, result.IsError)
	require.Equal(testInstance, repositoryPayloadConstant, resultText(testInstance, result))

	metricsResponse, metricsError := http.Get(httpServer.URL + "/metrics")
	require.NoError(testInstance, metricsError)
	metricsBody, readError := io.ReadAll(metricsResponse.Body)
	require.NoError(testInstance, readError)
	_ = metricsResponse.Body.Close()
	require.Contains(testInstance, string(metricsBody), `ghmcp_dispatch_total{operation="repo_view",outcome="success"} 1`)
}

func TestHTTPHandlerAppliesAllowedOrigins(testInstance *testing.T) {
	mcpServer := NewServer(&recordingDispatcher{}, ServerIdentity{})
	handler := NewHTTPHandler(mcpServer, HTTPHandlerOptions{AllowedOrigins: []string{"https://console.example.com"}})

	request := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	request.Header.Set("Origin", "https://console.example.com")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	require.Equal(testInstance, "https://console.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeHTTPStopsWhenContextIsCancelled(testInstance *testing.T) {
	serveContext, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- ServeHTTP(serveContext, "127.0.0.1:0", http.NotFoundHandler(), newTestLogger())
	}()

	cancel()

	select {
	case serveError := <-serveDone:
		require.NoError(testInstance, serveError)
	case <-time.After(integrationTimeoutConstant):
		testInstance.Fatal("server did not stop")
	}
}
