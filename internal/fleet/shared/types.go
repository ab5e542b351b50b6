package shared

import (
	"context"
	"io/fs"

	"gitfleet/internal/execshell"
)

const (
	// GitMetadataDirectoryNameConstant names the directory marking an initialized clone.
	GitMetadataDirectoryNameConstant = ".git"
	// PrimaryBranchNameConstant is the branch fleet updates prefer.
	PrimaryBranchNameConstant = "main"
	// FallbackBranchNameConstant is tried when the primary branch is absent.
	FallbackBranchNameConstant = "master"
)

// FileSystem exposes the filesystem operations required by fleet services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
}

// GitExecutor exposes the subset of shell execution used by fleet services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRepositoryManager exposes repository-level git operations.
type GitRepositoryManager interface {
	CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	PullCurrentBranch(executionContext context.Context, repositoryPath string) error
}
