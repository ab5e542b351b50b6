// Package dependencies resolves optional fleet collaborators to their
// production defaults.
package dependencies

import (
	"go.uber.org/zap"

	"gitfleet/internal/execshell"
	"gitfleet/internal/fleet/filesystem"
	"gitfleet/internal/fleet/shared"
	"gitfleet/internal/gitrepo"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a
// shell-backed default, attaching the optional command event observer.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, observer execshell.CommandEventObserver) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	if observer != nil {
		shellExecutor.UseCommandEventObserver(observer)
	}
	return shellExecutor, nil
}

// ResolveGitRepositoryManager returns the provided repository manager or
// constructs one from the executor.
func ResolveGitRepositoryManager(existing shared.GitRepositoryManager, executor shared.GitExecutor) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}
