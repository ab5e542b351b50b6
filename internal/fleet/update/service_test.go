package update_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gitfleet/internal/fleet"
	"gitfleet/internal/fleet/update"
)

const (
	absentSkipCaseNameConstant      = "absent_checkout_is_skipped"
	dirtySkipCaseNameConstant       = "dirty_worktree_counts_error"
	statusFailureCaseNameConstant   = "status_failure_does_not_block_update"
	fallbackBranchCaseNameConstant  = "fallback_branch_is_tried"
	checkoutFailureCaseNameConstant = "checkout_failure_counts_error"
	pullFailureCaseNameConstant     = "pull_failure_counts_error"
	successfulUpdateCaseName        = "clean_checkout_is_updated"
	testBaseURLConstant             = "https://git.example.com/mirrors"
	testCheckoutDirectoryConstant   = "/srv/checkouts"
	firstRepositoryNameConstant     = "tooling"
	secondRepositoryNameConstant    = "dashboards"
	statusFailureMessageConstant    = "status query failed"
	checkoutFailureMessageConstant  = "branch not found"
	fallbackFailureMessageConstant  = "pathspec master did not match"
	pullFailureMessageConstant      = "pull rejected"
	expectedSummaryTemplateConstant = "Update completed: %d updated, %d errors\n"
)

type stubRepositoryManager struct {
	cleanByPath          map[string]bool
	cleanErrorsByPath    map[string]error
	checkoutErrors       map[string]error
	pullErrorsByPath     map[string]error
	checkedOutBranches   []string
	pulledPaths          []string
	checkoutRequestPaths []string
}

func (manager *stubRepositoryManager) CloneRepository(context.Context, string, string) error {
	return nil
}

func (manager *stubRepositoryManager) CheckCleanWorktree(_ context.Context, repositoryPath string) (bool, error) {
	if cleanError, exists := manager.cleanErrorsByPath[repositoryPath]; exists {
		return false, cleanError
	}
	if isClean, exists := manager.cleanByPath[repositoryPath]; exists {
		return isClean, nil
	}
	return true, nil
}

func (manager *stubRepositoryManager) GetCurrentBranch(context.Context, string) (string, error) {
	return "", nil
}

func (manager *stubRepositoryManager) CheckoutBranch(_ context.Context, repositoryPath string, branchName string) error {
	manager.checkoutRequestPaths = append(manager.checkoutRequestPaths, repositoryPath)
	if checkoutError, exists := manager.checkoutErrors[branchName]; exists {
		return checkoutError
	}
	manager.checkedOutBranches = append(manager.checkedOutBranches, branchName)
	return nil
}

func (manager *stubRepositoryManager) PullCurrentBranch(_ context.Context, repositoryPath string) error {
	if pullError, exists := manager.pullErrorsByPath[repositoryPath]; exists {
		return pullError
	}
	manager.pulledPaths = append(manager.pulledPaths, repositoryPath)
	return nil
}

type stubFileSystem struct {
	existingPaths map[string]struct{}
}

func (fileSystem *stubFileSystem) Stat(path string) (fs.FileInfo, error) {
	if _, exists := fileSystem.existingPaths[path]; exists {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

func (fileSystem *stubFileSystem) MkdirAll(string, fs.FileMode) error {
	return nil
}

type recordingReporter struct {
	lines []string
}

func (reporter *recordingReporter) Printf(format string, args ...any) {
	reporter.lines = append(reporter.lines, fmt.Sprintf(format, args...))
}

func fileSystemWithCheckouts(repositoryNames ...string) *stubFileSystem {
	existingPaths := make(map[string]struct{}, len(repositoryNames))
	for _, repositoryName := range repositoryNames {
		metadataPath := filepath.Join(testCheckoutDirectoryConstant, repositoryName, ".git")
		existingPaths[metadataPath] = struct{}{}
	}
	return &stubFileSystem{existingPaths: existingPaths}
}

func testConfiguration(repositories ...string) fleet.Configuration {
	return fleet.Configuration{
		BaseURL:           testBaseURLConstant,
		CheckoutDirectory: testCheckoutDirectoryConstant,
		Repositories:      repositories,
	}
}

func repositoryPath(repositoryName string) string {
	return filepath.Join(testCheckoutDirectoryConstant, repositoryName)
}

func newTestService(subtest *testing.T, manager *stubRepositoryManager, fileSystem *stubFileSystem, reporter *recordingReporter) *update.Service {
	service, constructionError := update.NewService(update.Dependencies{
		RepositoryManager: manager,
		FileSystem:        fileSystem,
		Reporter:          reporter,
	})
	require.NoError(subtest, constructionError)
	return service
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	_, missingManagerError := update.NewService(update.Dependencies{FileSystem: &stubFileSystem{}, Reporter: &recordingReporter{}})
	require.ErrorIs(testInstance, missingManagerError, update.ErrRepositoryManagerNotConfigured)

	_, missingFileSystemError := update.NewService(update.Dependencies{RepositoryManager: &stubRepositoryManager{}, Reporter: &recordingReporter{}})
	require.ErrorIs(testInstance, missingFileSystemError, update.ErrFileSystemNotConfigured)

	_, missingReporterError := update.NewService(update.Dependencies{RepositoryManager: &stubRepositoryManager{}, FileSystem: &stubFileSystem{}})
	require.ErrorIs(testInstance, missingReporterError, update.ErrReporterNotConfigured)
}

func TestServiceExecute(testInstance *testing.T) {
	testInstance.Run(successfulUpdateCaseName, func(subtest *testing.T) {
		manager := &stubRepositoryManager{}
		reporter := &recordingReporter{}
		service := newTestService(subtest, manager, fileSystemWithCheckouts(firstRepositoryNameConstant), reporter)

		summary, executionError := service.Execute(context.Background(), testConfiguration(firstRepositoryNameConstant))
		require.NoError(subtest, executionError)
		require.Equal(subtest, update.Summary{UpdatedCount: 1}, summary)
		require.Equal(subtest, []string{"main"}, manager.checkedOutBranches)
		require.Equal(subtest, []string{repositoryPath(firstRepositoryNameConstant)}, manager.pulledPaths)
		require.Equal(subtest, fmt.Sprintf(expectedSummaryTemplateConstant, 1, 0), reporter.lines[len(reporter.lines)-1])
	})

	testInstance.Run(absentSkipCaseNameConstant, func(subtest *testing.T) {
		manager := &stubRepositoryManager{}
		reporter := &recordingReporter{}
		service := newTestService(subtest, manager, fileSystemWithCheckouts(secondRepositoryNameConstant), reporter)

		summary, executionError := service.Execute(context.Background(), testConfiguration(firstRepositoryNameConstant, secondRepositoryNameConstant))
		require.NoError(subtest, executionError)
		require.Equal(subtest, update.Summary{UpdatedCount: 1, SkippedCount: 1}, summary)
		require.Contains(subtest, reporter.lines[0], firstRepositoryNameConstant)
		require.Contains(subtest, reporter.lines[0], "not found")
	})

	testInstance.Run(dirtySkipCaseNameConstant, func(subtest *testing.T) {
		dirtyPath := repositoryPath(firstRepositoryNameConstant)
		manager := &stubRepositoryManager{cleanByPath: map[string]bool{dirtyPath: false}}
		reporter := &recordingReporter{}
		service := newTestService(subtest, manager, fileSystemWithCheckouts(firstRepositoryNameConstant), reporter)

		summary, executionError := service.Execute(context.Background(), testConfiguration(firstRepositoryNameConstant))
		require.NoError(subtest, executionError)
		require.Equal(subtest, update.Summary{ErrorCount: 1}, summary)
		require.Empty(subtest, manager.checkoutRequestPaths)
		require.Contains(subtest, reporter.lines[0], "uncommitted changes")
	})

	testInstance.Run(statusFailureCaseNameConstant, func(subtest *testing.T) {
		failingPath := repositoryPath(firstRepositoryNameConstant)
		manager := &stubRepositoryManager{cleanErrorsByPath: map[string]error{failingPath: errors.New(statusFailureMessageConstant)}}
		reporter := &recordingReporter{}
		service := newTestService(subtest, manager, fileSystemWithCheckouts(firstRepositoryNameConstant), reporter)

		summary, executionError := service.Execute(context.Background(), testConfiguration(firstRepositoryNameConstant))
		require.NoError(subtest, executionError)
		require.Equal(subtest, update.Summary{UpdatedCount: 1}, summary)
	})

	testInstance.Run(fallbackBranchCaseNameConstant, func(subtest *testing.T) {
		manager := &stubRepositoryManager{checkoutErrors: map[string]error{"main": errors.New(checkoutFailureMessageConstant)}}
		reporter := &recordingReporter{}
		service := newTestService(subtest, manager, fileSystemWithCheckouts(firstRepositoryNameConstant), reporter)

		summary, executionError := service.Execute(context.Background(), testConfiguration(firstRepositoryNameConstant))
		require.NoError(subtest, executionError)
		require.Equal(subtest, update.Summary{UpdatedCount: 1}, summary)
		require.Equal(subtest, []string{"master"}, manager.checkedOutBranches)
	})

	testInstance.Run(checkoutFailureCaseNameConstant, func(subtest *testing.T) {
		manager := &stubRepositoryManager{checkoutErrors: map[string]error{
			"main":   errors.New(checkoutFailureMessageConstant),
			"master": errors.New(fallbackFailureMessageConstant),
		}}
		reporter := &recordingReporter{}
		service := newTestService(subtest, manager, fileSystemWithCheckouts(firstRepositoryNameConstant), reporter)

		summary, executionError := service.Execute(context.Background(), testConfiguration(firstRepositoryNameConstant))
		require.NoError(subtest, executionError)
		require.Equal(subtest, update.Summary{ErrorCount: 1}, summary)
		require.Empty(subtest, manager.pulledPaths)
		require.Contains(subtest, reporter.lines[0], fallbackFailureMessageConstant)
		require.NotContains(subtest, reporter.lines[0], checkoutFailureMessageConstant)
	})

	testInstance.Run(pullFailureCaseNameConstant, func(subtest *testing.T) {
		failingPath := repositoryPath(firstRepositoryNameConstant)
		manager := &stubRepositoryManager{pullErrorsByPath: map[string]error{failingPath: errors.New(pullFailureMessageConstant)}}
		reporter := &recordingReporter{}
		service := newTestService(subtest, manager, fileSystemWithCheckouts(firstRepositoryNameConstant, secondRepositoryNameConstant), reporter)

		summary, executionError := service.Execute(context.Background(), testConfiguration(firstRepositoryNameConstant, secondRepositoryNameConstant))
		require.NoError(subtest, executionError)
		require.Equal(subtest, update.Summary{UpdatedCount: 1, ErrorCount: 1}, summary)
		require.Contains(subtest, reporter.lines[0], pullFailureMessageConstant)
		require.Equal(subtest, fmt.Sprintf(expectedSummaryTemplateConstant, 1, 1), reporter.lines[len(reporter.lines)-1])
	})
}
