// Package githubcli turns named operations into GitHub CLI argument vectors.
//
// It holds the closed operation catalog, validates argument bundles against
// each operation's parameter list, and builds the token sequence handed to
// execshell. Caller input is always placed into discrete tokens; the only
// composite token is the owner/repo pair.
package githubcli
