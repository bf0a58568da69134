package merge

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
	commandUseConstant                    = "merge"
	commandShortDescriptionConstant       = "Merge one source branch into many target branches"
	commandLongDescriptionConstant        = "merge checks out each target branch in turn and merges the source branch into it, fast-forward-only unless --no-ff is given. The branch checked out before the run is restored afterward."
	commandExecutionErrorTemplateConstant = "branch merge failed: %w"
	flagSourceNameConstant                = "source"
	flagSourceDescriptionConstant         = "Branch to merge into each target"
	flagTargetNameConstant                = "target"
	flagTargetDescriptionConstant         = "Target branch (repeatable); defaults to every local branch except the source and excludes"
	flagExcludeNameConstant               = "exclude"
	flagExcludeDescriptionConstant        = "Branch names excluded from target resolution (repeatable)"
	flagNoFastForwardNameConstant         = "no-ff"
	flagNoFastForwardDescription          = "Create merge commits instead of requiring fast-forward merges"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Preview merge targets without making changes"
	flagYesNameConstant                   = "yes"
	flagYesDescriptionConstant            = "Skip the confirmation prompt"
	dryRunLineTemplateConstant            = "WOULD MERGE %s INTO %s\n"
	nothingToDoMessageConstant            = "no merge targets found\n"
	summaryLineTemplateConstant           = "merged %s into %d branch(es), %d failed\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the merge command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Repository                   shared.RepositoryPort
	Prompter                     shared.ConfirmationPrompter
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	WorkingDirectory             string
}

// Build constructs the merge command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagSourceNameConstant, "", flagSourceDescriptionConstant)
	command.Flags().StringSlice(flagTargetNameConstant, nil, flagTargetDescriptionConstant)
	command.Flags().StringSlice(flagExcludeNameConstant, nil, flagExcludeDescriptionConstant)
	command.Flags().Bool(flagNoFastForwardNameConstant, false, flagNoFastForwardDescription)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagYesDescriptionConstant)

	if markError := command.MarkFlagRequired(flagSourceNameConstant); markError != nil {
		return nil, markError
	}

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

	result, mergeError := service.Merge(command.Context(), options)
	if mergeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, mergeError)
	}

	builder.reportResult(command, options, result)
	return nil
}

func (builder *CommandBuilder) reportResult(command *cobra.Command, options Options, result Result) {
	outputWriter := command.OutOrStdout()

	if result.Plan.IsEmpty() {
		fmt.Fprint(outputWriter, nothingToDoMessageConstant)
		return
	}

	if options.DryRun {
		for _, plannedOperation := range result.Plan.Operations {
			fmt.Fprintf(outputWriter, dryRunLineTemplateConstant, options.SourceBranch, plannedOperation.BranchName)
		}
		return
	}

	fmt.Fprintf(outputWriter, summaryLineTemplateConstant, options.SourceBranch, result.Summary.Succeeded, result.Summary.Failed)
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	sourceBranch, sourceError := command.Flags().GetString(flagSourceNameConstant)
	if sourceError != nil {
		return Options{}, sourceError
	}

	targetBranches, targetError := command.Flags().GetStringSlice(flagTargetNameConstant)
	if targetError != nil {
		return Options{}, targetError
	}

	excludedBranches := configuration.ExcludedBranches
	if command.Flags().Changed(flagExcludeNameConstant) {
		flagValue, flagError := command.Flags().GetStringSlice(flagExcludeNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		excludedBranches = flagValue
	}

	fastForwardOnly := configuration.FastForwardOnly
	if command.Flags().Changed(flagNoFastForwardNameConstant) {
		flagValue, flagError := command.Flags().GetBool(flagNoFastForwardNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		fastForwardOnly = !flagValue
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
		SourceBranch:     sourceBranch,
		TargetBranches:   targetBranches,
		ExcludedBranches: excludedBranches,
		FastForwardOnly:  fastForwardOnly,
		DryRun:           dryRun,
		AssumeYes:        assumeYes || !isInteractiveInvocation(),
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
