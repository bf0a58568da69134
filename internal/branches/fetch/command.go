package fetch

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
	commandUseConstant                    = "fetch"
	commandShortDescriptionConstant       = "Create local tracking branches for every remote branch"
	commandLongDescriptionConstant        = "fetch lists the branches advertised by one remote and creates a local tracking branch for each one that does not exist yet. Force mode deletes and recreates same-named local branches."
	commandExecutionErrorTemplateConstant = "tracking-branch creation failed: %w"
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Remote whose branches are materialized locally"
	flagIgnoreNameConstant                = "ignore"
	flagIgnoreDescriptionConstant         = "Branch names excluded from this run (repeatable)"
	flagForceNameConstant                 = "force"
	flagForceDescriptionConstant          = "Delete and recreate local branches that already exist"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Preview creations without making changes"
	flagYesNameConstant                   = "yes"
	flagYesDescriptionConstant            = "Skip the confirmation prompt"
	dryRunLineTemplateConstant            = "WOULD CREATE: %s\n"
	nothingToDoMessageConstant            = "no tracking branches to create\n"
	summaryLineTemplateConstant           = "created %d tracking branch(es), %d failed\n"
	skippedExistingTemplateConstant       = "skipped %d existing branch(es)\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the fetch command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Repository                   shared.RepositoryPort
	Prompter                     shared.ConfirmationPrompter
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	WorkingDirectory             string
}

// Build constructs the fetch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagRemoteNameConstant, "", flagRemoteDescriptionConstant)
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

	result, creationError := service.CreateTrackingBranches(command.Context(), options)
	if creationError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, creationError)
	}

	builder.reportResult(command, options, result)
	return nil
}

func (builder *CommandBuilder) reportResult(command *cobra.Command, options Options, result Result) {
	outputWriter := command.OutOrStdout()

	if result.SkippedExisting > 0 {
		fmt.Fprintf(outputWriter, skippedExistingTemplateConstant, result.SkippedExisting)
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

	remoteName := configuration.RemoteName
	if command.Flags().Changed(flagRemoteNameConstant) {
		flagValue, flagError := command.Flags().GetString(flagRemoteNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		remoteName = flagValue
	}

	ignoredBranches := configuration.IgnoredBranches
	if command.Flags().Changed(flagIgnoreNameConstant) {
		flagValue, flagError := command.Flags().GetStringSlice(flagIgnoreNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		ignoredBranches = flagValue
	}

	forceRecreate, forceError := command.Flags().GetBool(flagForceNameConstant)
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
		RemoteName:      remoteName,
		IgnoredBranches: ignoredBranches,
		ForceRecreate:   forceRecreate,
		DryRun:          dryRun,
		AssumeYes:       assumeYes || !isInteractiveInvocation(),
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
