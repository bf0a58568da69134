package clean

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
	commandUseConstant                    = "clean"
	commandShortDescriptionConstant       = "Delete local branches whose upstream no longer exists"
	commandLongDescriptionConstant        = "clean reconciles local tracking branches against the remotes that back them and deletes every branch whose upstream branch has been removed."
	commandExecutionErrorTemplateConstant = "branch cleanup failed: %w"
	flagProtectedNameConstant             = "protected"
	flagProtectedDescriptionConstant      = "Branch names that must never be deleted (repeatable)"
	flagIgnoreNameConstant                = "ignore"
	flagIgnoreDescriptionConstant         = "Branch names excluded from this run (repeatable)"
	flagForceNameConstant                 = "force"
	flagForceDescriptionConstant          = "Delete branches even when not fully merged into their upstream"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Preview deletions without making changes"
	flagYesNameConstant                   = "yes"
	flagYesDescriptionConstant            = "Skip the confirmation prompt"
	dryRunLineTemplateConstant            = "WOULD DELETE: %s\n"
	nothingToDoMessageConstant            = "no stale branches found\n"
	summaryLineTemplateConstant           = "deleted %d branch(es), %d failed\n"
	skippedUnreachableTemplateConstant    = "skipped %d branch(es) on unreachable remotes\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the clean command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Repository                   shared.RepositoryPort
	Prompter                     shared.ConfirmationPrompter
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	WorkingDirectory             string
}

// Build constructs the clean command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().StringSlice(flagProtectedNameConstant, nil, flagProtectedDescriptionConstant)
	command.Flags().StringSlice(flagIgnoreNameConstant, nil, flagIgnoreDescriptionConstant)
	command.Flags().Bool(flagForceNameConstant, false, flagForceDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagYesDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.resolveOptions(command)
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

	result, cleanupError := service.Cleanup(command.Context(), options)
	if cleanupError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, cleanupError)
	}

	builder.reportResult(command, options, result)
	return nil
}

func (builder *CommandBuilder) reportResult(command *cobra.Command, options Options, result Result) {
	outputWriter := command.OutOrStdout()

	if result.SkippedUnreachable > 0 {
		fmt.Fprintf(outputWriter, skippedUnreachableTemplateConstant, result.SkippedUnreachable)
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

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	protectedBranches := configuration.ProtectedBranches
	if command.Flags().Changed(flagProtectedNameConstant) {
		flagValue, flagError := command.Flags().GetStringSlice(flagProtectedNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		protectedBranches = flagValue
	}

	ignoredBranches := configuration.IgnoredBranches
	if command.Flags().Changed(flagIgnoreNameConstant) {
		flagValue, flagError := command.Flags().GetStringSlice(flagIgnoreNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		ignoredBranches = flagValue
	}

	forceDelete := configuration.Force
	if command.Flags().Changed(flagForceNameConstant) {
		flagValue, flagError := command.Flags().GetBool(flagForceNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		forceDelete = flagValue
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(flagDryRunNameConstant) {
		flagValue, flagError := command.Flags().GetBool(flagDryRunNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		dryRun = flagValue
	}

	assumeYes, assumeYesError := command.Flags().GetBool(flagYesNameConstant)
	if assumeYesError != nil {
		return Options{}, assumeYesError
	}

	return Options{
		ProtectedBranches: protectedBranches,
		IgnoredBranches:   ignoredBranches,
		ForceDelete:       forceDelete,
		DryRun:            dryRun,
		AssumeYes:         assumeYes || !isInteractiveInvocation(),
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
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
