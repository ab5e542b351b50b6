package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gitfleet/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant = "git executor not configured"
	cloneSubcommandConstant              = "clone"
	statusSubcommandConstant             = "status"
	checkoutSubcommandConstant           = "checkout"
	pullSubcommandConstant               = "pull"
	revParseSubcommandConstant           = "rev-parse"
	porcelainFlagConstant                = "--porcelain"
	abbreviatedReferenceFlagConstant     = "--abbrev-ref"
	headReferenceConstant                = "HEAD"
	cloneFailureTemplateConstant         = "unable to clone %s: %w"
	statusFailureTemplateConstant        = "unable to inspect worktree status in %s: %w"
	branchFailureTemplateConstant        = "unable to determine current branch in %s: %w"
	checkoutFailureTemplateConstant      = "unable to checkout branch %s in %s: %w"
	pullFailureTemplateConstant          = "unable to pull current branch in %s: %w"
)

// ErrExecutorNotConfigured indicates the repository manager was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor abstracts git command execution for the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs git operations against local repositories by
// delegating to an injected git executor.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager with the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CloneRepository clones the remote repository into the destination path.
func (manager *RepositoryManager) CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{cloneSubcommandConstant, remoteURL, destinationPath},
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return fmt.Errorf(cloneFailureTemplateConstant, remoteURL, executionError)
	}
	return nil
}

// WorktreeStatus returns the trimmed porcelain status output for the repository.
// A clean worktree yields an empty string.
func (manager *RepositoryManager) WorktreeStatus(executionContext context.Context, repositoryPath string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{statusSubcommandConstant, porcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", fmt.Errorf(statusFailureTemplateConstant, repositoryPath, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// CheckCleanWorktree reports whether the repository worktree carries no
// uncommitted changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	statusSummary, statusError := manager.WorktreeStatus(executionContext, repositoryPath)
	if statusError != nil {
		return false, statusError
	}
	return len(statusSummary) == 0, nil
}

// GetCurrentBranch resolves the abbreviated name of the checked out branch.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, abbreviatedReferenceFlagConstant, headReferenceConstant},
		WorkingDirectory: repositoryPath,
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", fmt.Errorf(branchFailureTemplateConstant, repositoryPath, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// CheckoutBranch switches the repository to the named branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{checkoutSubcommandConstant, branchName},
		WorkingDirectory: repositoryPath,
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, branchName, repositoryPath, executionError)
	}
	return nil
}

// PullCurrentBranch fast-forwards the checked out branch from its upstream.
func (manager *RepositoryManager) PullCurrentBranch(executionContext context.Context, repositoryPath string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{pullSubcommandConstant},
		WorkingDirectory: repositoryPath,
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return fmt.Errorf(pullFailureTemplateConstant, repositoryPath, executionError)
	}
	return nil
}
