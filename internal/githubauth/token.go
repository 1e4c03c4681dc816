// Package githubauth inspects the environment the GitHub CLI inherits for credentials.
package githubauth

import (
	"os"
	"strings"
)

// Environment variable names consulted by the GitHub CLI, in precedence order.
const (
	EnvGitHubCLIToken        = "GH_TOKEN"
	EnvGitHubToken           = "GITHUB_TOKEN"
	EnvGitHubEnterpriseToken = "GH_ENTERPRISE_TOKEN"
)

// TokenSourceStoredCredentials means no token variable is set and gh falls back to its own credential store.
const TokenSourceStoredCredentials = "stored_credentials"

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubEnterpriseToken,
}

// EnvironmentLookup resolves a single environment variable.
type EnvironmentLookup func(key string) (string, bool)

// ResolveTokenSource names the variable the GitHub CLI will authenticate with.
// The token value itself is never returned.
func ResolveTokenSource(lookup EnvironmentLookup) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range tokenPreference {
		value, exists := lookup(key)
		if exists && len(strings.TrimSpace(value)) > 0 {
			return key
		}
	}
	return TokenSourceStoredCredentials
}
