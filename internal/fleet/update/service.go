package update

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
	absentMessageTemplateConstant           = "%s not found, skipping (run clone first)\n"
	dirtyMessageTemplateConstant            = "%s has uncommitted changes, skipping\n"
	checkoutFailureMessageTemplateConstant  = "Failed to switch %s to %s or %s: %v\n"
	pullFailureMessageTemplateConstant      = "Failed to update %s: %v\n"
	summaryMessageTemplateConstant          = "Update completed: %d updated, %d errors\n"
)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the file system dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrReporterNotConfigured indicates the reporter dependency was missing.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// Dependencies enumerates external collaborators required for update operations.
type Dependencies struct {
	RepositoryManager shared.GitRepositoryManager
	FileSystem        shared.FileSystem
	Reporter          shared.Reporter
}

// Summary aggregates per-repository update outcomes.
type Summary struct {
	UpdatedCount int
	SkippedCount int
	ErrorCount   int
}

// Service pulls the primary branch in every configured repository that is
// present and carries no uncommitted changes.
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

// Execute updates the configured repositories. Absent checkouts are skipped
// with a notice, dirty worktrees are skipped and counted as errors, and
// checkout or pull failures are counted without aborting the remaining fleet.
func (service *Service) Execute(executionContext context.Context, configuration fleet.Configuration) (Summary, error) {
	summary := Summary{}
	for _, repositoryName := range configuration.Repositories {
		repositoryPath := configuration.RepositoryPath(repositoryName)
		if !service.repositoryExists(repositoryPath) {
			summary.SkippedCount++
			service.reporter.Printf(absentMessageTemplateConstant, repositoryName)
			continue
		}

		if service.worktreeDirty(executionContext, repositoryPath) {
			summary.ErrorCount++
			service.reporter.Printf(dirtyMessageTemplateConstant, repositoryName)
			continue
		}

		if checkoutError := service.checkoutPrimaryBranch(executionContext, repositoryPath); checkoutError != nil {
			summary.ErrorCount++
			service.reporter.Printf(checkoutFailureMessageTemplateConstant, repositoryName, shared.PrimaryBranchNameConstant, shared.FallbackBranchNameConstant, checkoutError)
			continue
		}

		if pullError := service.repositoryManager.PullCurrentBranch(executionContext, repositoryPath); pullError != nil {
			summary.ErrorCount++
			service.reporter.Printf(pullFailureMessageTemplateConstant, repositoryName, pullError)
			continue
		}
		summary.UpdatedCount++
	}

	service.reporter.Printf(summaryMessageTemplateConstant, summary.UpdatedCount, summary.ErrorCount)
	return summary, nil
}

func (service *Service) repositoryExists(repositoryPath string) bool {
	metadataPath := filepath.Join(repositoryPath, shared.GitMetadataDirectoryNameConstant)
	_, statError := service.fileSystem.Stat(metadataPath)
	return statError == nil
}

// worktreeDirty reports true only when the status query succeeds and shows
// uncommitted changes; a failed query does not block the update.
func (service *Service) worktreeDirty(executionContext context.Context, repositoryPath string) bool {
	isClean, cleanError := service.repositoryManager.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanError != nil {
		return false
	}
	return !isClean
}

// checkoutPrimaryBranch tries the primary branch first and falls back to the
// legacy name; when both fail the error from the final attempt is surfaced.
func (service *Service) checkoutPrimaryBranch(executionContext context.Context, repositoryPath string) error {
	primaryError := service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, shared.PrimaryBranchNameConstant)
	if primaryError == nil {
		return nil
	}
	return service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, shared.FallbackBranchNameConstant)
}
