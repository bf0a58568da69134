package remove

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/dependencies"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
	"github.com/xuejuncheng0222/branch-keeper/internal/ui"
)

const (
	commandUseConstant                    = "delete branch..."
	commandShortDescriptionConstant       = "Delete the named local branches"
	commandLongDescriptionConstant        = "delete removes the named local branches after confirmation. Protected branches and the checked-out branch are never deleted; --force skips the fully-merged check on the rest."
	commandExecutionErrorTemplateConstant = "branch deletion failed: %w"
	flagForceNameConstant                 = "force"
	flagForceDescriptionConstant          = "Delete branches even when not fully merged into their upstream"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Preview deletions without making changes"
	flagYesNameConstant                   = "yes"
	flagYesDescriptionConstant            = "Skip the confirmation prompt"
	dryRunLineTemplateConstant            = "WOULD DELETE: %s\n"
	nothingToDoMessageConstant            = "no deletable branches named\n"
	summaryLineTemplateConstant           = "deleted %d branch(es), %d failed\n"
	skippedByRuleTemplateConstant         = "skipped %d branch(es)\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the delete command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Repository                   shared.RepositoryPort
	Prompter                     shared.ConfirmationPrompter
	HumanReadableLoggingProvider func() bool
	WorkingDirectory             string
}

// Build constructs the delete command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().Bool(flagForceNameConstant, false, flagForceDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagYesDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.resolveOptions(command, arguments)
	if optionsError != nil {
		return optionsError
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
	prompter := dependencies.ResolvePrompter(builder.Prompter, ui.NewTerminalPrompter(command.InOrStdin(), command.OutOrStdout()))

	service, serviceCreationError := NewService(Dependencies{Repository: repository, Logger: logger, Prompter: prompter})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	result, deletionError := service.Delete(command.Context(), options)
	if deletionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, deletionError)
	}

	builder.reportResult(command, options, result)
	return nil
}

func (builder *CommandBuilder) reportResult(command *cobra.Command, options Options, result Result) {
	outputWriter := command.OutOrStdout()

	if result.SkippedByRule > 0 {
		fmt.Fprintf(outputWriter, skippedByRuleTemplateConstant, result.SkippedByRule)
	}

	if result.Plan.IsEmpty() {
		fmt.Fprint(outputWriter, nothingToDoMessageConstant)
		return
	}

	if options.DryRun {
		for _, plannedOperation := range result.Plan.Operations {
			fmt.Fprintf(outputWriter, dryRunLineTemplateConstant, plannedOperation.BranchName)
		}
		return
	}

	fmt.Fprintf(outputWriter, summaryLineTemplateConstant, result.Summary.Succeeded, result.Summary.Failed)
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command, arguments []string) (Options, error) {
	forceDelete, forceError := command.Flags().GetBool(flagForceNameConstant)
	if forceError != nil {
		return Options{}, forceError
	}

	dryRun, dryRunError := command.Flags().GetBool(flagDryRunNameConstant)
	if dryRunError != nil {
		return Options{}, dryRunError
	}

	assumeYes, assumeYesError := command.Flags().GetBool(flagYesNameConstant)
	if assumeYesError != nil {
		return Options{}, assumeYesError
	}

	return Options{
		BranchNames: arguments,
		ForceDelete: forceDelete,
		DryRun:      dryRun,
		AssumeYes:   assumeYes || !isInteractiveInvocation(),
	}, nil
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

// isInteractiveInvocation reports whether standard input is a character device.
func isInteractiveInvocation() bool {
	inputInfo, statError := os.Stdin.Stat()
	if statError != nil {
		return false
	}
	return (inputInfo.Mode() & os.ModeCharDevice) != 0
}
