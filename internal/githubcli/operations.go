package githubcli

import (
	"sort"
	"strings"
)

const (
	repoSubcommandConstant           = "repo"
	issueSubcommandConstant          = "issue"
	pullRequestSubcommandConstant    = "pr"
	authSubcommandConstant           = "auth"
	statusSubcommandConstant         = "status"
	viewSubcommandConstant           = "view"
	listSubcommandConstant           = "list"
	createSubcommandConstant         = "create"
	cloneSubcommandConstant          = "clone"
	jsonFlagConstant                 = "--json"
	repoFlagConstant                 = "--repo"
	stateFlagConstant                = "--state"
	limitFlagConstant                = "--limit"
	titleFlagConstant                = "--title"
	bodyFlagConstant                 = "--body"
	baseFlagConstant                 = "--base"
	headFlagConstant                 = "--head"
	hostnameFlagConstant             = "--hostname"
	repositoryListJSONFieldsConstant = "name,description,url"
	itemListJSONFieldsConstant       = "number,title,state,url"
)

// Parameter names accepted in argument bundles.
const (
	ParameterOwner      = "owner"
	ParameterRepository = "repo"
	ParameterTitle      = "title"
	ParameterBody       = "body"
	ParameterBase       = "base"
	ParameterHead       = "head"
	ParameterDirectory  = "directory"
	ParameterState      = "state"
	ParameterLimit      = "limit"
	ParameterJSONFields = "json_fields"
	ParameterHostname   = "hostname"
	ParameterCommand    = "command"
)

// OperationName identifies one capability exposed to protocol callers.
type OperationName string

// Supported operations.
const (
	OperationAuthStatus        OperationName = OperationName("auth_status")
	OperationListRepositories  OperationName = OperationName("list_repos")
	OperationViewRepository    OperationName = OperationName("repo_view")
	OperationListIssues        OperationName = OperationName("list_issues")
	OperationCreateIssue       OperationName = OperationName("create_issue")
	OperationListPullRequests  OperationName = OperationName("list_prs")
	OperationCreatePullRequest OperationName = OperationName("create_pr")
	OperationCloneRepository   OperationName = OperationName("clone_repo")
	OperationRunCommand        OperationName = OperationName("run_command")
)

// ArgumentBundle maps parameter names to caller-supplied values.
type ArgumentBundle map[string]string

// CommandLine is the argument vector passed to the GitHub CLI, excluding the program name.
type CommandLine []string

// ParameterSpecification describes one parameter accepted by an operation.
type ParameterSpecification struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Required    bool          `yaml:"required"`
	Kind        ParameterKind `yaml:"kind"`
}

// OperationDefinition couples an operation with its parameters and command line template.
type OperationDefinition struct {
	Name        OperationName            `yaml:"name"`
	Description string                   `yaml:"description"`
	Parameters  []ParameterSpecification `yaml:"parameters,omitempty"`
	EmitsJSON   bool                     `yaml:"emits_json"`
	template    []tokenTemplate
}

// Parameter returns the named parameter specification.
func (definition OperationDefinition) Parameter(name string) (ParameterSpecification, bool) {
	for _, parameter := range definition.Parameters {
		if parameter.Name == name {
			return parameter, true
		}
	}
	return ParameterSpecification{}, false
}

// Synopsis renders the gh invocation produced by the operation, with
// placeholders for parameters and brackets around optional parts.
func (definition OperationDefinition) Synopsis() string {
	renderedTokens := []string{CommandGitHubProgramName}
	for _, template := range definition.template {
		renderedTokens = append(renderedTokens, template.describe(definition))
	}
	return strings.Join(renderedTokens, " ")
}

// CommandGitHubProgramName is the program name the catalog documents.
const CommandGitHubProgramName = "gh"

var operationCatalog = map[OperationName]OperationDefinition{
	OperationAuthStatus: {
		Name:        OperationAuthStatus,
		Description: "Check GitHub CLI authentication status",
		Parameters: []ParameterSpecification{
			{Name: ParameterHostname, Description: "GitHub host to check", Kind: ParameterKindIdentifier},
		},
		template: []tokenTemplate{
			literalTokens(authSubcommandConstant, statusSubcommandConstant),
			flagToken(hostnameFlagConstant, ParameterHostname),
		},
	},
	OperationListRepositories: {
		Name:        OperationListRepositories,
		Description: "List repositories of the current user or of an owner",
		Parameters: []ParameterSpecification{
			{Name: ParameterOwner, Description: "User or organization whose repositories are listed", Kind: ParameterKindSegment},
			{Name: ParameterLimit, Description: "Maximum number of repositories to list", Kind: ParameterKindLimit},
		},
		EmitsJSON: true,
		template: []tokenTemplate{
			literalTokens(repoSubcommandConstant, listSubcommandConstant),
			positionalToken(ParameterOwner),
			literalTokens(jsonFlagConstant, repositoryListJSONFieldsConstant),
			flagToken(limitFlagConstant, ParameterLimit),
		},
	},
	OperationViewRepository: {
		Name:        OperationViewRepository,
		Description: "Get information of the specified repository",
		Parameters: []ParameterSpecification{
			{Name: ParameterOwner, Description: "Repository owner", Required: true, Kind: ParameterKindSegment},
			{Name: ParameterRepository, Description: "Repository name", Required: true, Kind: ParameterKindSegment},
			{Name: ParameterJSONFields, Description: "Comma-separated JSON fields to request instead of the text view", Kind: ParameterKindFieldList},
		},
		template: []tokenTemplate{
			literalTokens(repoSubcommandConstant, viewSubcommandConstant),
			repositoryToken(ParameterOwner, ParameterRepository),
			flagToken(jsonFlagConstant, ParameterJSONFields),
		},
	},
	OperationListIssues: {
		Name:        OperationListIssues,
		Description: "List issues of the specified repository",
		Parameters: []ParameterSpecification{
			{Name: ParameterOwner, Description: "Repository owner", Required: true, Kind: ParameterKindSegment},
			{Name: ParameterRepository, Description: "Repository name", Required: true, Kind: ParameterKindSegment},
			{Name: ParameterState, Description: "Issue state: open, closed, or all", Kind: ParameterKindIssueState},
			{Name: ParameterLimit, Description: "Maximum number of issues to list", Kind: ParameterKindLimit},
		},
		EmitsJSON: true,
		template: []tokenTemplate{
			literalTokens(issueSubcommandConstant, listSubcommandConstant, repoFlagConstant),
			repositoryToken(ParameterOwner, ParameterRepository),
			literalTokens(jsonFlagConstant, itemListJSONFieldsConstant),
			flagToken(stateFlagConstant, ParameterState),
			flagToken(limitFlagConstant, ParameterLimit),
		},
	},
	OperationCreateIssue: {
		Name:        OperationCreateIssue,
		Description: "Create an issue in the specified repository",
		Parameters: []ParameterSpecification{
			{Name: ParameterTitle, Description: "Issue title", Required: true, Kind: ParameterKindText},
			{Name: ParameterBody, Description: "Issue body", Required: true, Kind: ParameterKindText},
			{Name: ParameterRepository, Description: "Repository in OWNER/REPO form", Required: true, Kind: ParameterKindIdentifier},
		},
		template: []tokenTemplate{
			literalTokens(issueSubcommandConstant, createSubcommandConstant),
			flagToken(repoFlagConstant, ParameterRepository),
			flagToken(titleFlagConstant, ParameterTitle),
			flagToken(bodyFlagConstant, ParameterBody),
		},
	},
	OperationListPullRequests: {
		Name:        OperationListPullRequests,
		Description: "List pull requests of the specified repository",
		Parameters: []ParameterSpecification{
			{Name: ParameterOwner, Description: "Repository owner", Required: true, Kind: ParameterKindSegment},
			{Name: ParameterRepository, Description: "Repository name", Required: true, Kind: ParameterKindSegment},
			{Name: ParameterState, Description: "Pull request state: open, closed, merged, or all", Kind: ParameterKindPullRequestState},
			{Name: ParameterLimit, Description: "Maximum number of pull requests to list", Kind: ParameterKindLimit},
		},
		EmitsJSON: true,
		template: []tokenTemplate{
			literalTokens(pullRequestSubcommandConstant, listSubcommandConstant, repoFlagConstant),
			repositoryToken(ParameterOwner, ParameterRepository),
			literalTokens(jsonFlagConstant, itemListJSONFieldsConstant),
			flagToken(stateFlagConstant, ParameterState),
			flagToken(limitFlagConstant, ParameterLimit),
		},
	},
	OperationCreatePullRequest: {
		Name:        OperationCreatePullRequest,
		Description: "Create a pull request",
		Parameters: []ParameterSpecification{
			{Name: ParameterTitle, Description: "Pull request title", Required: true, Kind: ParameterKindText},
			{Name: ParameterBody, Description: "Pull request body", Kind: ParameterKindText},
			{Name: ParameterBase, Description: "Branch the changes are merged into", Required: true, Kind: ParameterKindIdentifier},
			{Name: ParameterHead, Description: "Branch that contains the changes", Required: true, Kind: ParameterKindIdentifier},
			{Name: ParameterRepository, Description: "Repository in OWNER/REPO form", Kind: ParameterKindIdentifier},
		},
		template: []tokenTemplate{
			literalTokens(pullRequestSubcommandConstant, createSubcommandConstant),
			flagToken(repoFlagConstant, ParameterRepository),
			flagToken(titleFlagConstant, ParameterTitle),
			flagToken(bodyFlagConstant, ParameterBody),
			flagToken(baseFlagConstant, ParameterBase),
			flagToken(headFlagConstant, ParameterHead),
		},
	},
	OperationCloneRepository: {
		Name:        OperationCloneRepository,
		Description: "Clone a GitHub repository",
		Parameters: []ParameterSpecification{
			{Name: ParameterRepository, Description: "Repository in OWNER/REPO form or a URL", Required: true, Kind: ParameterKindIdentifier},
			{Name: ParameterDirectory, Description: "Target directory; gh picks one when omitted", Kind: ParameterKindPath},
		},
		template: []tokenTemplate{
			literalTokens(repoSubcommandConstant, cloneSubcommandConstant),
			positionalToken(ParameterRepository),
			positionalToken(ParameterDirectory),
		},
	},
	OperationRunCommand: {
		Name:        OperationRunCommand,
		Description: "Run any GitHub CLI command",
		Parameters: []ParameterSpecification{
			{Name: ParameterCommand, Description: "GitHub CLI command without the gh prefix", Required: true, Kind: ParameterKindCommand},
		},
		template: []tokenTemplate{
			rawCommandTokens(ParameterCommand),
		},
	},
}

// LookupOperation returns the catalog entry for operation.
func LookupOperation(operation OperationName) (OperationDefinition, error) {
	definition, definitionExists := operationCatalog[operation]
	if !definitionExists {
		return OperationDefinition{}, UnknownOperationError{Operation: operation}
	}
	return definition, nil
}

// Operations lists the catalog ordered by operation name.
func Operations() []OperationDefinition {
	definitions := make([]OperationDefinition, 0, len(operationCatalog))
	for _, definition := range operationCatalog {
		definitions = append(definitions, definition)
	}
	sort.Slice(definitions, func(leftIndex int, rightIndex int) bool {
		return definitions[leftIndex].Name < definitions[rightIndex].Name
	})
	return definitions
}
