package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	gitRevParseSubcommandNameConstant   = "rev-parse"
	gitWorkTreeFlagConstant             = "--is-inside-work-tree"
	gitAbbrevRefFlagConstant            = "--abbrev-ref"
	gitForEachRefSubcommandNameConstant = "for-each-ref"
	gitStatusSubcommandNameConstant     = "status"
	gitCheckoutSubcommandNameConstant   = "checkout"
	gitBranchSubcommandNameConstant     = "branch"
	gitDeleteFlagConstant               = "--delete"
	gitShortDeleteFlagConstant          = "-d"
	gitShortForceDeleteFlagConstant     = "-D"
	gitForceFlagConstant                = "--force"
	gitTrackFlagConstant                = "--track"
	gitMergeSubcommandNameConstant      = "merge"
	gitFetchSubcommandNameConstant      = "fetch"
	gitRevListSubcommandNameConstant    = "rev-list"
	gitLSRemoteSubcommandNameConstant   = "ls-remote"
	gitHeadsFlagConstant                = "--heads"
	gitHeadReferenceConstant            = "HEAD"
	flagPrefixConstant                  = "-"
)

const (
	gitWorkTreeStartTemplateConstant            = "Analyzing repository at %s"
	gitWorkTreeSuccessTemplateConstant          = "%s is a Git repository"
	gitWorkTreeFailureTemplateConstant          = "Could not confirm %s is a Git repository (exit code %d%s)"
	gitWorkTreeExecutionFailureTemplateConstant = "Could not analyze %s: %s"
	gitCurrentBranchStartTemplateConstant       = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant     = "Current branch in %s is %s"
	gitCurrentBranchDetachedTemplateConstant    = "%s is in a detached HEAD state"
	gitCurrentBranchFailureTemplateConstant     = "Failed to identify current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionTemplateConstant   = "Unable to identify current branch in %s: %s"
	gitForEachRefStartTemplateConstant          = "Enumerating branch references in %s"
	gitForEachRefSuccessTemplateConstant        = "Enumerated branch references in %s"
	gitForEachRefFailureTemplateConstant        = "Failed to enumerate branch references in %s (exit code %d%s)"
	gitForEachRefExecutionTemplateConstant      = "Unable to enumerate branch references in %s: %s"
	gitStatusStartTemplateConstant              = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant            = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant            = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionTemplateConstant          = "Unable to review working tree status in %s: %s"
	gitCheckoutStartTemplateConstant            = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant          = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant          = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionTemplateConstant        = "Unable to switch %s to branch %s: %s"
	gitBranchDeletionStartTemplateConstant      = "Removing local branch %s in %s"
	gitBranchForceDeletionStartTemplateConstant = "Force removing local branch %s in %s"
	gitBranchDeletionSuccessTemplateConstant    = "Removed local branch %s in %s"
	gitBranchDeletionFailureTemplateConstant    = "Failed to remove local branch %s in %s (exit code %d%s)"
	gitBranchDeletionExecutionTemplateConstant  = "Unable to remove local branch %s in %s: %s"
	gitBranchTrackingStartTemplateConstant      = "Creating tracking branch %s from %s in %s"
	gitBranchTrackingSuccessTemplateConstant    = "Created tracking branch %s from %s in %s"
	gitBranchTrackingFailureTemplateConstant    = "Failed to create tracking branch %s from %s in %s (exit code %d%s)"
	gitBranchTrackingExecutionTemplateConstant  = "Unable to create tracking branch %s from %s in %s: %s"
	gitBranchListStartTemplateConstant          = "Listing local branches in %s"
	gitBranchListSuccessTemplateConstant        = "Listed local branches in %s"
	gitBranchListFailureTemplateConstant        = "Failed to list local branches in %s (exit code %d%s)"
	gitBranchListExecutionTemplateConstant      = "Unable to list local branches in %s: %s"
	gitMergeStartTemplateConstant               = "Merging %s in %s"
	gitMergeSuccessTemplateConstant             = "Merged %s in %s"
	gitMergeFailureTemplateConstant             = "Failed to merge %s in %s (exit code %d%s)"
	gitMergeExecutionTemplateConstant           = "Unable to merge %s in %s: %s"
	gitFetchStartTemplateConstant               = "Refreshing remote tracking state in %s"
	gitFetchSuccessTemplateConstant             = "Refreshed remote tracking state in %s"
	gitFetchFailureTemplateConstant             = "Failed to refresh remote tracking state in %s (exit code %d%s)"
	gitFetchExecutionTemplateConstant           = "Unable to refresh remote tracking state in %s: %s"
	gitLSRemoteHeadsStartTemplateConstant       = "Listing branches on %s from %s"
	gitLSRemoteHeadsSuccessTemplateConstant     = "Listed branches on %s from %s"
	gitLSRemoteHeadsFailureTemplateConstant     = "Failed to list branches on %s from %s (exit code %d%s)"
	gitLSRemoteHeadsExecutionTemplateConstant   = "Unable to list branches on %s from %s: %s"
	gitRevListStartTemplateConstant             = "Counting unpushed commits in %s"
	gitRevListSuccessTemplateConstant           = "Counted unpushed commits in %s"
	gitRevListFailureTemplateConstant           = "Failed to count unpushed commits in %s (exit code %d%s)"
	gitRevListExecutionTemplateConstant         = "Unable to count unpushed commits in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitForEachRefSubcommandNameConstant:
		return formatter.describeDirectoryMessage(command, result, failure, stage, stageTemplates{
			start:            gitForEachRefStartTemplateConstant,
			success:          gitForEachRefSuccessTemplateConstant,
			failure:          gitForEachRefFailureTemplateConstant,
			executionFailure: gitForEachRefExecutionTemplateConstant,
		})
	case gitStatusSubcommandNameConstant:
		return formatter.describeDirectoryMessage(command, result, failure, stage, stageTemplates{
			start:            gitStatusStartTemplateConstant,
			success:          gitStatusSuccessTemplateConstant,
			failure:          gitStatusFailureTemplateConstant,
			executionFailure: gitStatusExecutionTemplateConstant,
		})
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitBranchSubcommandNameConstant:
		return formatter.describeGitBranchMessage(command, result, failure, stage)
	case gitMergeSubcommandNameConstant:
		return formatter.describeGitMergeMessage(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeDirectoryMessage(command, result, failure, stage, stageTemplates{
			start:            gitFetchStartTemplateConstant,
			success:          gitFetchSuccessTemplateConstant,
			failure:          gitFetchFailureTemplateConstant,
			executionFailure: gitFetchExecutionTemplateConstant,
		})
	case gitRevListSubcommandNameConstant:
		return formatter.describeDirectoryMessage(command, result, failure, stage, stageTemplates{
			start:            gitRevListStartTemplateConstant,
			success:          gitRevListSuccessTemplateConstant,
			failure:          gitRevListFailureTemplateConstant,
			executionFailure: gitRevListExecutionTemplateConstant,
		})
	case gitLSRemoteSubcommandNameConstant:
		return formatter.describeGitLSRemoteMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeDirectoryMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, templates stageTemplates) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitWorkTreeFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitWorkTreeStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitWorkTreeSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitWorkTreeFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitWorkTreeExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, gitAbbrevRefFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCurrentBranchStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			trimmedOutput := strings.TrimSpace(result.StandardOutput)
			if len(trimmedOutput) == 0 || strings.EqualFold(trimmedOutput, gitHeadReferenceConstant) {
				return fmt.Sprintf(gitCurrentBranchDetachedTemplateConstant, workingDirectory)
			}
			return fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, workingDirectory, trimmedOutput)
		case messageStageFailure:
			return fmt.Sprintf(gitCurrentBranchFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitCurrentBranchExecutionTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	branchName := lastPositionalArgument(command.Details.Arguments)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, branchName)
	case messageStageSuccess:
		return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, branchName)
	case messageStageFailure:
		return fmt.Sprintf(gitCheckoutFailureTemplateConstant, workingDirectory, branchName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitCheckoutExecutionTemplateConstant, workingDirectory, branchName, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitBranchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	deletionRequested := containsArgument(arguments, gitDeleteFlagConstant) ||
		containsArgument(arguments, gitShortDeleteFlagConstant) ||
		containsArgument(arguments, gitShortForceDeleteFlagConstant)
	if deletionRequested {
		branchName := lastPositionalArgument(arguments)
		forceRequested := containsArgument(arguments, gitForceFlagConstant) || containsArgument(arguments, gitShortForceDeleteFlagConstant)
		switch stage {
		case messageStageStart:
			if forceRequested {
				return fmt.Sprintf(gitBranchForceDeletionStartTemplateConstant, branchName, workingDirectory)
			}
			return fmt.Sprintf(gitBranchDeletionStartTemplateConstant, branchName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitBranchDeletionSuccessTemplateConstant, branchName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitBranchDeletionFailureTemplateConstant, branchName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitBranchDeletionExecutionTemplateConstant, branchName, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, gitTrackFlagConstant) {
		branchName, startPoint := trackingCreationArguments(arguments)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitBranchTrackingStartTemplateConstant, branchName, startPoint, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitBranchTrackingSuccessTemplateConstant, branchName, startPoint, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitBranchTrackingFailureTemplateConstant, branchName, startPoint, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitBranchTrackingExecutionTemplateConstant, branchName, startPoint, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.describeDirectoryMessage(command, result, failure, stage, stageTemplates{
		start:            gitBranchListStartTemplateConstant,
		success:          gitBranchListSuccessTemplateConstant,
		failure:          gitBranchListFailureTemplateConstant,
		executionFailure: gitBranchListExecutionTemplateConstant,
	})
}

func (formatter CommandMessageFormatter) describeGitMergeMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	sourceName := lastPositionalArgument(command.Details.Arguments)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitMergeStartTemplateConstant, sourceName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitMergeSuccessTemplateConstant, sourceName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitMergeFailureTemplateConstant, sourceName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitMergeExecutionTemplateConstant, sourceName, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitLSRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if !containsArgument(command.Details.Arguments, gitHeadsFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := lastPositionalArgument(command.Details.Arguments)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitLSRemoteHeadsStartTemplateConstant, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitLSRemoteHeadsSuccessTemplateConstant, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitLSRemoteHeadsFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitLSRemoteHeadsExecutionTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)

	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	workingDirectorySuffix := emptyStringConstant
	if len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func containsArgument(arguments []string, candidate string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == candidate {
			return true
		}
	}
	return false
}

func lastPositionalArgument(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex > 0; argumentIndex-- {
		trimmedArgument := strings.TrimSpace(arguments[argumentIndex])
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return emptyStringConstant
}

func trackingCreationArguments(arguments []string) (string, string) {
	positionalArguments := make([]string, 0, len(arguments))
	for argumentIndex := 1; argumentIndex < len(arguments); argumentIndex++ {
		trimmedArgument := strings.TrimSpace(arguments[argumentIndex])
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positionalArguments = append(positionalArguments, trimmedArgument)
	}
	switch len(positionalArguments) {
	case 0:
		return emptyStringConstant, emptyStringConstant
	case 1:
		return positionalArguments[0], emptyStringConstant
	default:
		return positionalArguments[0], positionalArguments[1]
	}
}
