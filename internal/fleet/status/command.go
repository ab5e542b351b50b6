package status

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitfleet/internal/execshell"
	"gitfleet/internal/fleet"
	"gitfleet/internal/fleet/dependencies"
	"gitfleet/internal/fleet/shared"
	"gitfleet/internal/utils"
)

const (
	commandUseConstant                          = "status"
	commandShortDescriptionConstant             = "Report the local state of fleet repositories"
	commandLongDescriptionConstant              = "status lists every configured repository with its presence, checked out branch, and worktree cleanliness."
	configurationProviderMissingMessageConstant = "configuration provider not configured"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider resolves the fleet configuration for command execution.
type ConfigurationProvider func() (fleet.Configuration, error)

// CommandEventObserverProvider yields an observer for shell execution events.
type CommandEventObserverProvider func() execshell.CommandEventObserver

// CommandBuilder assembles the status command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	GitExecutor                  shared.GitExecutor
	GitRepositoryManager         shared.GitRepositoryManager
	FileSystem                   shared.FileSystem
	CommandEventObserverProvider CommandEventObserverProvider
}

// Build constructs the status command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	if builder.ConfigurationProvider == nil {
		return nil, errors.New(configurationProviderMissingMessageConstant)
	}

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration, configurationError := builder.ConfigurationProvider()
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.resolveCommandEventObserver())
	if executorError != nil {
		return executorError
	}
	repositoryManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitRepositoryManager, gitExecutor)
	if managerError != nil {
		return managerError
	}
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	reporter := shared.NewWriterReporter(utils.NewFlushingWriter(command.OutOrStdout()))

	service, serviceCreationError := NewService(Dependencies{
		RepositoryManager: repositoryManager,
		FileSystem:        fileSystem,
		Reporter:          reporter,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	_, executionError := service.Execute(command.Context(), configuration)
	return executionError
}

func (builder *CommandBuilder) resolveCommandEventObserver() execshell.CommandEventObserver {
	if builder.CommandEventObserverProvider == nil {
		return nil
	}
	return builder.CommandEventObserverProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
