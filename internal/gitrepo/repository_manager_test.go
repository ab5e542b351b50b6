package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gitfleet/internal/execshell"
	"gitfleet/internal/gitrepo"
)

const (
	missingExecutorCaseNameConstant      = "missing_executor"
	cloneArgumentsCaseNameConstant       = "clone_passes_url_and_path"
	cloneFailureCaseNameConstant         = "clone_surface_executor_error"
	cleanWorktreeCaseNameConstant        = "blank_status_is_clean"
	dirtyWorktreeCaseNameConstant        = "porcelain_output_is_dirty"
	statusFailureCaseNameConstant        = "status_failure_propagates"
	currentBranchCaseNameConstant        = "current_branch_is_trimmed"
	checkoutArgumentsCaseNameConstant    = "checkout_targets_branch"
	pullWorkingDirectoryCaseNameConstant = "pull_runs_in_repository"
	testRemoteURLConstant                = "https://git.example.com/mirrors/tooling.git"
	testRepositoryPathConstant           = "/workspace/tooling"
	testBranchNameConstant               = "main"
	executorFailureMessageConstant       = "executor failure"
)

type recordingGitExecutor struct {
	recordedDetails []execshell.CommandDetails
	result          execshell.ExecutionResult
	executionError  error
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return executor.result, executor.executionError
}

func TestNewRepositoryManagerValidatesExecutor(testInstance *testing.T) {
	testInstance.Run(missingExecutorCaseNameConstant, func(subtest *testing.T) {
		manager, constructionError := gitrepo.NewRepositoryManager(nil)
		require.ErrorIs(subtest, constructionError, gitrepo.ErrExecutorNotConfigured)
		require.Nil(subtest, manager)
	})
}

func TestRepositoryManagerCloneRepository(testInstance *testing.T) {
	testInstance.Run(cloneArgumentsCaseNameConstant, func(subtest *testing.T) {
		executor := &recordingGitExecutor{}
		manager, constructionError := gitrepo.NewRepositoryManager(executor)
		require.NoError(subtest, constructionError)

		cloneError := manager.CloneRepository(context.Background(), testRemoteURLConstant, testRepositoryPathConstant)
		require.NoError(subtest, cloneError)
		require.Len(subtest, executor.recordedDetails, 1)
		require.Equal(subtest, []string{"clone", testRemoteURLConstant, testRepositoryPathConstant}, executor.recordedDetails[0].Arguments)
		require.Empty(subtest, executor.recordedDetails[0].WorkingDirectory)
	})

	testInstance.Run(cloneFailureCaseNameConstant, func(subtest *testing.T) {
		executor := &recordingGitExecutor{executionError: errors.New(executorFailureMessageConstant)}
		manager, constructionError := gitrepo.NewRepositoryManager(executor)
		require.NoError(subtest, constructionError)

		cloneError := manager.CloneRepository(context.Background(), testRemoteURLConstant, testRepositoryPathConstant)
		require.Error(subtest, cloneError)
		require.Contains(subtest, cloneError.Error(), executorFailureMessageConstant)
	})
}

func TestRepositoryManagerCheckCleanWorktree(testInstance *testing.T) {
	testCases := []struct {
		name           string
		standardOutput string
		executionError error
		expectedClean  bool
		expectError    bool
	}{
		{
			name:           cleanWorktreeCaseNameConstant,
			standardOutput: "\n",
			expectedClean:  true,
		},
		{
			name:           dirtyWorktreeCaseNameConstant,
			standardOutput: " M internal/service.go\n?? notes.txt\n",
			expectedClean:  false,
		},
		{
			name:           statusFailureCaseNameConstant,
			executionError: errors.New(executorFailureMessageConstant),
			expectError:    true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			executor := &recordingGitExecutor{
				result:         execshell.ExecutionResult{StandardOutput: testCase.standardOutput},
				executionError: testCase.executionError,
			}
			manager, constructionError := gitrepo.NewRepositoryManager(executor)
			require.NoError(subtest, constructionError)

			isClean, statusError := manager.CheckCleanWorktree(context.Background(), testRepositoryPathConstant)
			if testCase.expectError {
				require.Error(subtest, statusError)
				return
			}
			require.NoError(subtest, statusError)
			require.Equal(subtest, testCase.expectedClean, isClean)
			require.Equal(subtest, []string{"status", "--porcelain"}, executor.recordedDetails[0].Arguments)
			require.Equal(subtest, testRepositoryPathConstant, executor.recordedDetails[0].WorkingDirectory)
		})
	}
}

func TestRepositoryManagerGetCurrentBranch(testInstance *testing.T) {
	testInstance.Run(currentBranchCaseNameConstant, func(subtest *testing.T) {
		executor := &recordingGitExecutor{result: execshell.ExecutionResult{StandardOutput: testBranchNameConstant + "\n"}}
		manager, constructionError := gitrepo.NewRepositoryManager(executor)
		require.NoError(subtest, constructionError)

		branchName, branchError := manager.GetCurrentBranch(context.Background(), testRepositoryPathConstant)
		require.NoError(subtest, branchError)
		require.Equal(subtest, testBranchNameConstant, branchName)
		require.Equal(subtest, []string{"rev-parse", "--abbrev-ref", "HEAD"}, executor.recordedDetails[0].Arguments)
	})
}

func TestRepositoryManagerCheckoutBranch(testInstance *testing.T) {
	testInstance.Run(checkoutArgumentsCaseNameConstant, func(subtest *testing.T) {
		executor := &recordingGitExecutor{}
		manager, constructionError := gitrepo.NewRepositoryManager(executor)
		require.NoError(subtest, constructionError)

		checkoutError := manager.CheckoutBranch(context.Background(), testRepositoryPathConstant, testBranchNameConstant)
		require.NoError(subtest, checkoutError)
		require.Equal(subtest, []string{"checkout", testBranchNameConstant}, executor.recordedDetails[0].Arguments)
		require.Equal(subtest, testRepositoryPathConstant, executor.recordedDetails[0].WorkingDirectory)
	})
}

func TestRepositoryManagerPullCurrentBranch(testInstance *testing.T) {
	testInstance.Run(pullWorkingDirectoryCaseNameConstant, func(subtest *testing.T) {
		executor := &recordingGitExecutor{}
		manager, constructionError := gitrepo.NewRepositoryManager(executor)
		require.NoError(subtest, constructionError)

		pullError := manager.PullCurrentBranch(context.Background(), testRepositoryPathConstant)
		require.NoError(subtest, pullError)
		require.Equal(subtest, []string{"pull"}, executor.recordedDetails[0].Arguments)
		require.Equal(subtest, testRepositoryPathConstant, executor.recordedDetails[0].WorkingDirectory)
	})
}
