package dependencies

import (
	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
	"github.com/xuejuncheng0222/branch-keeper/internal/execshell"
	"github.com/xuejuncheng0222/branch-keeper/internal/gitrepo"
	"github.com/xuejuncheng0222/branch-keeper/internal/ui"
)

// ResolveRepository returns the provided repository port or constructs a
// git-backed default executing in the given working directory.
//
// With human-readable logging enabled the executor additionally narrates each
// git invocation through the console event logger.
func ResolveRepository(existing shared.RepositoryPort, logger *zap.Logger, humanReadableLogging bool, workingDirectory string) (shared.RepositoryPort, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()

	var observers []execshell.CommandEventObserver
	if humanReadableLogging {
		observers = append(observers, ui.NewCommandEventLogger(logger))
	}

	shellExecutor, executorCreationError := execshell.NewShellExecutor(logger, commandRunner, observers...)
	if executorCreationError != nil {
		return nil, executorCreationError
	}

	repositoryManager, managerCreationError := gitrepo.NewRepositoryManager(shellExecutor, workingDirectory)
	if managerCreationError != nil {
		return nil, managerCreationError
	}
	return repositoryManager, nil
}

// ResolvePrompter returns the provided prompter or the given fallback.
func ResolvePrompter(existing shared.ConfirmationPrompter, fallback shared.ConfirmationPrompter) shared.ConfirmationPrompter {
	if existing != nil {
		return existing
	}
	if fallback != nil {
		return fallback
	}
	return shared.AutoApprovePrompter{}
}
