package mcpserver

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ghmcp/internal/dispatch"
	"github.com/temirov/ghmcp/internal/githubcli"
)

type recordingDispatcher struct {
	mutex  sync.Mutex
	calls  []dispatch.Call
	result dispatch.Result
}

func (dispatcher *recordingDispatcher) Dispatch(_ context.Context, call dispatch.Call) dispatch.Result {
	dispatcher.mutex.Lock()
	defer dispatcher.mutex.Unlock()
	dispatcher.calls = append(dispatcher.calls, call)
	return dispatcher.result
}

func TestNewServerRegistersEveryOperation(testInstance *testing.T) {
	mcpServer := NewServer(&recordingDispatcher{}, ServerIdentity{})

	for _, definition := range githubcli.Operations() {
		serverTool := mcpServer.GetTool(string(definition.Name))
		require.NotNil(testInstance, serverTool, string(definition.Name))
		require.Equal(testInstance, definition.Description, serverTool.Tool.Description)

		expectedRequired := []string{}
		for _, parameter := range definition.Parameters {
			require.Contains(testInstance, serverTool.Tool.InputSchema.Properties, parameter.Name)
			if parameter.Required {
				expectedRequired = append(expectedRequired, parameter.Name)
			}
		}
		require.ElementsMatch(testInstance, expectedRequired, serverTool.Tool.InputSchema.Required)
	}
}

func TestToolHandlerDecodesArguments(testInstance *testing.T) {
	dispatcher := &recordingDispatcher{result: dispatch.Result{Payload: "[]"}}
	mcpServer := NewServer(dispatcher, ServerIdentity{Name: "github", Version: "1.2.3"})

	serverTool := mcpServer.GetTool(string(githubcli.OperationListIssues))
	require.NotNil(testInstance, serverTool)

	request := mcp.CallToolRequest{}
	request.Params.Name = string(githubcli.OperationListIssues)
	request.Params.Arguments = map[string]any{
		"owner": "octocat",
		"repo":  "hello-world",
		"limit": float64(30),
		"state": nil,
	}

	result, handlerError := serverTool.Handler(context.Background(), request)
	require.NoError(testInstance, handlerError)
	require.False(testInstance, result.IsError)
	require.Len(testInstance, result.Content, 1)
	textContent, isText := result.Content[0].(mcp.TextContent)
	require.True(testInstance, isText)
	require.Equal(testInstance, "[]", textContent.Text)

	require.Len(testInstance, dispatcher.calls, 1)
	require.Equal(testInstance, githubcli.OperationListIssues, dispatcher.calls[0].Operation)
	require.Equal(testInstance, githubcli.ArgumentBundle{"owner": "octocat", "repo": "hello-world", "limit": "30"}, dispatcher.calls[0].Arguments)
}

func TestStringifyArgument(testInstance *testing.T) {
	testCases := []struct {
		name     string
		rawValue any
		expected string
	}{
		{name: "string", rawValue: "octocat", expected: "octocat"},
		{name: "integral_number", rawValue: float64(25), expected: "25"},
		{name: "fractional_number", rawValue: 2.5, expected: "2.5"},
		{name: "boolean", rawValue: true, expected: "true"},
		{name: "list", rawValue: []any{"name", "url"}, expected: "name,url"},
		{name: "integer", rawValue: 7, expected: "7"},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, stringifyArgument(testCase.rawValue))
		})
	}
}

func TestEncodeResultReportsKindAndMessage(testInstance *testing.T) {
	dispatcher := &recordingDispatcher{}
	mcpServer := NewServer(dispatcher, ServerIdentity{})

	executor := &failingExecutor{standardError: "could not resolve to a Repository"}
	realDispatcher, creationError := dispatch.NewDispatcher(newTestLogger(), executor)
	require.NoError(testInstance, creationError)
	dispatcher.result = realDispatcher.Dispatch(context.Background(), dispatch.Call{
		Operation: githubcli.OperationViewRepository,
		Arguments: githubcli.ArgumentBundle{"owner": "modelcontextprotocol", "repo": "rust-sdk"},
	})

	serverTool := mcpServer.GetTool(string(githubcli.OperationViewRepository))
	require.NotNil(testInstance, serverTool)

	result, handlerError := serverTool.Handler(context.Background(), mcp.CallToolRequest{})
	require.NoError(testInstance, handlerError)
	require.True(testInstance, result.IsError)

	textContent, isText := result.Content[0].(mcp.TextContent)
	require.True(testInstance, isText)

	var decoded map[string]string
	require.NoError(testInstance, json.Unmarshal([]byte(textContent.Text), &decoded))
	require.Equal(testInstance, map[string]string{
		"kind":    "CommandError",
		"message": "could not resolve to a Repository",
	}, decoded)
}

func TestBuildInstructionsListsEveryTool(testInstance *testing.T) {
	instructions := buildInstructions(githubcli.Operations())
	for _, definition := range githubcli.Operations() {
		require.Contains(testInstance, instructions, string(definition.Name))
		require.Contains(testInstance, instructions, definition.Synopsis())
	}
}

func TestUnknownToolCallsReturnClassifiedError(testInstance *testing.T) {
	realDispatcher, creationError := dispatch.NewDispatcher(newTestLogger(), &failingExecutor{})
	require.NoError(testInstance, creationError)
	mcpServer := NewServer(realDispatcher, ServerIdentity{})

	testCases := []struct {
		name     string
		toolName string
	}{
		{name: "outside_catalog", toolName: "delete_everything"},
		{name: "routing_tool_called_directly", toolName: unknownToolNameConstant},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			requestMessage, encodingError := json.Marshal(map[string]any{
				"jsonrpc": "2.0",
				"id":      2,
				"method":  "tools/call",
				"params":  map[string]any{"name": testCase.toolName, "arguments": map[string]any{"owner": "octocat"}},
			})
			require.NoError(testInstance, encodingError)

			responseMessage := mcpServer.HandleMessage(context.Background(), requestMessage)
			encodedResponse, encodingError := json.Marshal(responseMessage)
			require.NoError(testInstance, encodingError)

			var decodedResponse struct {
				Error  json.RawMessage `json:"error"`
				Result struct {
					IsError bool `json:"isError"`
					Content []struct {
						Text string `json:"text"`
					} `json:"content"`
				} `json:"result"`
			}
			require.NoError(testInstance, json.Unmarshal(encodedResponse, &decodedResponse))
			require.Empty(testInstance, decodedResponse.Error)
			require.True(testInstance, decodedResponse.Result.IsError)
			require.Len(testInstance, decodedResponse.Result.Content, 1)

			var decodedError map[string]string
			require.NoError(testInstance, json.Unmarshal([]byte(decodedResponse.Result.Content[0].Text), &decodedError))
			require.Equal(testInstance, "UnknownOperationError", decodedError["kind"])
			require.Contains(testInstance, decodedError["message"], testCase.toolName)
		})
	}
}

func TestHideUnknownToolKeepsCatalogTools(testInstance *testing.T) {
	visibleTools := hideUnknownTool(context.Background(), []mcp.Tool{
		mcp.NewTool(string(githubcli.OperationAuthStatus)),
		mcp.NewTool(unknownToolNameConstant),
		mcp.NewTool(string(githubcli.OperationListIssues)),
	})

	require.Len(testInstance, visibleTools, 2)
	require.Equal(testInstance, string(githubcli.OperationAuthStatus), visibleTools[0].Name)
	require.Equal(testInstance, string(githubcli.OperationListIssues), visibleTools[1].Name)
}
