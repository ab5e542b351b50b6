package status

import (
	"context"
	"errors"
	"path/filepath"

	"gitfleet/internal/fleet"
	"gitfleet/internal/fleet/shared"
)

const (
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	fileSystemMissingMessageConstant        = "file system not configured"
	reporterMissingMessageConstant          = "reporter not configured"
	baseURLHeaderTemplateConstant           = "Base URL: %s\n"
	checkoutHeaderTemplateConstant          = "Checkout directory: %s\n"
	existingLineTemplateConstant            = "%-30s EXISTS (branch: %s, status: %s)\n"
	missingLineTemplateConstant             = "%-30s NOT FOUND\n"
	unknownBranchNameConstant               = "unknown"
	cleanStateNameConstant                  = "clean"
	dirtyStateNameConstant                  = "dirty"
)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the file system dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrReporterNotConfigured indicates the reporter dependency was missing.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// Dependencies enumerates external collaborators required for status reporting.
type Dependencies struct {
	RepositoryManager shared.GitRepositoryManager
	FileSystem        shared.FileSystem
	Reporter          shared.Reporter
}

// RepositoryState captures the reported condition of one repository.
type RepositoryState struct {
	Name       string
	Exists     bool
	BranchName string
	Dirty      bool
}

// Service reports the local state of every configured repository without
// mutating any checkout.
type Service struct {
	repositoryManager shared.GitRepositoryManager
	fileSystem        shared.FileSystem
	reporter          shared.Reporter
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	return &Service{
		repositoryManager: dependencies.RepositoryManager,
		fileSystem:        dependencies.FileSystem,
		reporter:          dependencies.Reporter,
	}, nil
}

// Execute prints a header describing the fleet followed by one line per
// configured repository. Branch and worktree queries run only for checkouts
// that exist; a failed branch query reports the branch as unknown and a
// failed worktree query reports the checkout as clean.
func (service *Service) Execute(executionContext context.Context, configuration fleet.Configuration) ([]RepositoryState, error) {
	service.reporter.Printf(baseURLHeaderTemplateConstant, configuration.BaseURL)
	service.reporter.Printf(checkoutHeaderTemplateConstant, configuration.CheckoutDirectory)

	states := make([]RepositoryState, 0, len(configuration.Repositories))
	for _, repositoryName := range configuration.Repositories {
		state := service.inspectRepository(executionContext, configuration, repositoryName)
		states = append(states, state)

		if !state.Exists {
			service.reporter.Printf(missingLineTemplateConstant, state.Name)
			continue
		}
		worktreeState := cleanStateNameConstant
		if state.Dirty {
			worktreeState = dirtyStateNameConstant
		}
		service.reporter.Printf(existingLineTemplateConstant, state.Name, state.BranchName, worktreeState)
	}
	return states, nil
}

func (service *Service) inspectRepository(executionContext context.Context, configuration fleet.Configuration, repositoryName string) RepositoryState {
	repositoryPath := configuration.RepositoryPath(repositoryName)
	metadataPath := filepath.Join(repositoryPath, shared.GitMetadataDirectoryNameConstant)
	if _, statError := service.fileSystem.Stat(metadataPath); statError != nil {
		return RepositoryState{Name: repositoryName}
	}

	state := RepositoryState{Name: repositoryName, Exists: true, BranchName: unknownBranchNameConstant}
	branchName, branchError := service.repositoryManager.GetCurrentBranch(executionContext, repositoryPath)
	if branchError == nil && len(branchName) > 0 {
		state.BranchName = branchName
	}

	isClean, cleanError := service.repositoryManager.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanError == nil {
		state.Dirty = !isClean
	}
	return state
}
