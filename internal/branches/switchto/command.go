package switchto

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/dependencies"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
)

const (
	commandUseConstant                    = "checkout branch"
	commandShortDescriptionConstant       = "Switch the worktree to another local branch"
	commandLongDescriptionConstant        = "checkout switches to the named local branch. A dirty worktree refuses the switch unless --discard-changes throws the local modifications away."
	commandExecutionErrorTemplateConstant = "branch switch failed: %w"
	flagDiscardNameConstant               = "discard-changes"
	flagDiscardDescriptionConstant        = "Discard uncommitted changes before switching"
	switchedLineTemplateConstant          = "switched to %s\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the checkout command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Repository                   shared.RepositoryPort
	HumanReadableLoggingProvider func() bool
	WorkingDirectory             string
}

// Build constructs the checkout command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	command.Flags().Bool(flagDiscardNameConstant, false, flagDiscardDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	discardChanges, discardError := command.Flags().GetBool(flagDiscardNameConstant)
	if discardError != nil {
		return discardError
	}

	logger := resolveLogger(builder.LoggerProvider)
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	repository, repositoryError := dependencies.ResolveRepository(builder.Repository, logger, humanReadableLogging, builder.WorkingDirectory)
	if repositoryError != nil {
		return repositoryError
	}

	service, serviceCreationError := NewService(Dependencies{Repository: repository, Logger: logger})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	options := Options{BranchName: arguments[0], DiscardChanges: discardChanges}
	if switchError := service.Switch(command.Context(), options); switchError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, switchError)
	}

	fmt.Fprintf(command.OutOrStdout(), switchedLineTemplateConstant, options.BranchName)
	return nil
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
