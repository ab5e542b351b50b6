package clone

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"gitfleet/internal/fleet"
	"gitfleet/internal/fleet/shared"
)

const (
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	fileSystemMissingMessageConstant        = "file system not configured"
	reporterMissingMessageConstant          = "reporter not configured"
	checkoutDirectoryFailureTemplate        = "unable to create checkout directory %s: %w"
	checkoutDirectoryPermissionsConstant    = fs.FileMode(0o755)
	skipMessageTemplateConstant             = "%s already cloned, skipping\n"
	cloneFailureMessageTemplateConstant     = "Failed to clone %s: %v\n"
	summaryMessageTemplateConstant          = "Clone completed: %d cloned, %d skipped, %d errors\n"
)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the file system dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrReporterNotConfigured indicates the reporter dependency was missing.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// Dependencies enumerates external collaborators required for clone operations.
type Dependencies struct {
	RepositoryManager shared.GitRepositoryManager
	FileSystem        shared.FileSystem
	Reporter          shared.Reporter
}

// Summary aggregates per-repository clone outcomes.
type Summary struct {
	ClonedCount  int
	SkippedCount int
	ErrorCount   int
}

// Service clones every configured repository that is not yet present in the
// checkout directory.
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

// Execute clones the configured repositories. Repositories whose checkout
// already contains git metadata are skipped, and per-repository failures are
// counted without aborting the remaining fleet. Failure to create the
// checkout directory aborts the whole run.
func (service *Service) Execute(executionContext context.Context, configuration fleet.Configuration) (Summary, error) {
	directoryError := service.fileSystem.MkdirAll(configuration.CheckoutDirectory, checkoutDirectoryPermissionsConstant)
	if directoryError != nil {
		return Summary{}, fmt.Errorf(checkoutDirectoryFailureTemplate, configuration.CheckoutDirectory, directoryError)
	}

	summary := Summary{}
	for _, repositoryName := range configuration.Repositories {
		repositoryPath := configuration.RepositoryPath(repositoryName)
		if service.repositoryExists(repositoryPath) {
			summary.SkippedCount++
			service.reporter.Printf(skipMessageTemplateConstant, repositoryName)
			continue
		}

		remoteURL := configuration.RepositoryURL(repositoryName)
		cloneError := service.repositoryManager.CloneRepository(executionContext, remoteURL, repositoryPath)
		if cloneError != nil {
			summary.ErrorCount++
			service.reporter.Printf(cloneFailureMessageTemplateConstant, repositoryName, cloneError)
			continue
		}
		summary.ClonedCount++
	}

	service.reporter.Printf(summaryMessageTemplateConstant, summary.ClonedCount, summary.SkippedCount, summary.ErrorCount)
	return summary, nil
}

func (service *Service) repositoryExists(repositoryPath string) bool {
	metadataPath := filepath.Join(repositoryPath, shared.GitMetadataDirectoryNameConstant)
	_, statError := service.fileSystem.Stat(metadataPath)
	return statError == nil
}
