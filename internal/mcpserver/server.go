// Package mcpserver exposes the GitHub CLI operation catalog as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/temirov/ghmcp/internal/dispatch"
	"github.com/temirov/ghmcp/internal/githubcli"
)

const (
	defaultServerNameConstant            = "ghmcp"
	defaultServerVersionConstant         = "dev"
	instructionsHeaderConstant           = "This server runs the GitHub CLI on behalf of the caller. Available tools:"
	instructionsLineTemplateConstant     = "\n- %s: %s (%s)"
	listValueSeparatorConstant           = ","
	errorEncodingFailureTemplateConstant = "%s: %s"
	unknownToolNameConstant              = "unknown_operation"
	requestedToolArgumentConstant        = "requested_tool"
)

// OperationDispatcher performs one decoded call.
type OperationDispatcher interface {
	Dispatch(executionContext context.Context, call dispatch.Call) dispatch.Result
}

// ServerIdentity names the server in the MCP initialize handshake.
type ServerIdentity struct {
	Name    string
	Version string
}

// NewServer registers one tool per catalog operation.
func NewServer(dispatcher OperationDispatcher, identity ServerIdentity) *server.MCPServer {
	serverName := identity.Name
	if len(strings.TrimSpace(serverName)) == 0 {
		serverName = defaultServerNameConstant
	}
	serverVersion := identity.Version
	if len(strings.TrimSpace(serverVersion)) == 0 {
		serverVersion = defaultServerVersionConstant
	}

	definitions := githubcli.Operations()
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(buildInstructions(definitions)),
		server.WithHooks(buildHooks()),
		server.WithToolFilter(hideUnknownTool),
	)

	for _, definition := range definitions {
		mcpServer.AddTool(buildTool(definition), toolHandler(dispatcher, definition.Name))
	}
	mcpServer.AddTool(mcp.NewTool(unknownToolNameConstant), unknownToolHandler(dispatcher))

	return mcpServer
}

// buildHooks redirects calls naming a tool outside the catalog to the unknown
// tool, so they are classified by the dispatcher instead of failing as JSON-RPC errors.
func buildHooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(func(_ context.Context, _ any, request *mcp.CallToolRequest) {
		if _, lookupError := githubcli.LookupOperation(githubcli.OperationName(request.Params.Name)); lookupError == nil {
			return
		}
		request.Params.Arguments = map[string]any{requestedToolArgumentConstant: request.Params.Name}
		request.Params.Name = unknownToolNameConstant
	})
	return hooks
}

func hideUnknownTool(_ context.Context, tools []mcp.Tool) []mcp.Tool {
	visibleTools := make([]mcp.Tool, 0, len(tools))
	for _, tool := range tools {
		if tool.Name != unknownToolNameConstant {
			visibleTools = append(visibleTools, tool)
		}
	}
	return visibleTools
}

func unknownToolHandler(dispatcher OperationDispatcher) server.ToolHandlerFunc {
	return func(requestContext context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requestedTool := request.GetString(requestedToolArgumentConstant, unknownToolNameConstant)
		result := dispatcher.Dispatch(requestContext, dispatch.Call{
			Operation: githubcli.OperationName(requestedTool),
			Arguments: githubcli.ArgumentBundle{},
		})
		return encodeResult(result), nil
	}
}

func buildTool(definition githubcli.OperationDefinition) mcp.Tool {
	toolOptions := []mcp.ToolOption{mcp.WithDescription(definition.Description)}
	for _, parameter := range definition.Parameters {
		propertyOptions := []mcp.PropertyOption{mcp.Description(parameter.Description)}
		if parameter.Required {
			propertyOptions = append(propertyOptions, mcp.Required())
		}
		toolOptions = append(toolOptions, mcp.WithString(parameter.Name, propertyOptions...))
	}
	return mcp.NewTool(string(definition.Name), toolOptions...)
}

func buildInstructions(definitions []githubcli.OperationDefinition) string {
	var builder strings.Builder
	builder.WriteString(instructionsHeaderConstant)
	for _, definition := range definitions {
		builder.WriteString(fmt.Sprintf(instructionsLineTemplateConstant, definition.Name, definition.Description, definition.Synopsis()))
	}
	return builder.String()
}

func toolHandler(dispatcher OperationDispatcher, operation githubcli.OperationName) server.ToolHandlerFunc {
	return func(requestContext context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := dispatcher.Dispatch(requestContext, dispatch.Call{
			Operation: operation,
			Arguments: decodeArguments(request.GetArguments()),
		})
		return encodeResult(result), nil
	}
}

// decodeArguments flattens JSON argument values into strings. Null values are
// treated as absent.
func decodeArguments(rawArguments map[string]any) githubcli.ArgumentBundle {
	arguments := make(githubcli.ArgumentBundle, len(rawArguments))
	for name, rawValue := range rawArguments {
		if rawValue == nil {
			continue
		}
		arguments[name] = stringifyArgument(rawValue)
	}
	return arguments
}

func stringifyArgument(rawValue any) string {
	switch typedValue := rawValue.(type) {
	case string:
		return typedValue
	case float64:
		return strconv.FormatFloat(typedValue, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typedValue)
	case []any:
		elements := make([]string, 0, len(typedValue))
		for _, element := range typedValue {
			elements = append(elements, stringifyArgument(element))
		}
		return strings.Join(elements, listValueSeparatorConstant)
	default:
		return fmt.Sprint(typedValue)
	}
}

// encodeResult renders failures as a JSON object carrying the error kind and message.
func encodeResult(result dispatch.Result) *mcp.CallToolResult {
	if result.Succeeded() {
		return mcp.NewToolResultText(result.Payload)
	}

	encodedError, encodingError := json.Marshal(result.Error)
	if encodingError != nil {
		return mcp.NewToolResultError(fmt.Sprintf(errorEncodingFailureTemplateConstant, result.Error.Kind, result.Error.Message))
	}
	return mcp.NewToolResultError(string(encodedError))
}
