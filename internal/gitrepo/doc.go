// Package gitrepo wraps git worktree operations behind a RepositoryManager
// that delegates every invocation to an injected git executor.
package gitrepo
