package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
	"github.com/xuejuncheng0222/branch-keeper/internal/utils"
)

const (
	promptSuffixConstant             = " [y/N]: "
	affirmativeShortAnswerConstant   = "y"
	affirmativeLongAnswerConstant    = "yes"
	promptWriteErrorTemplateConstant = "failed to present confirmation prompt: %w"
	promptReadErrorTemplateConstant  = "failed to read confirmation answer: %w"
)

// TerminalPrompter collects confirmations from an interactive reader/writer pair.
type TerminalPrompter struct {
	input  *bufio.Reader
	output io.Writer
}

// NewTerminalPrompter constructs a prompter over the provided streams.
func NewTerminalPrompter(input io.Reader, output io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		input:  bufio.NewReader(input),
		output: utils.NewFlushingWriter(output),
	}
}

// Confirm presents the prompt and interprets the typed answer.
// Any answer other than yes declines; end-of-input declines without error.
func (prompter *TerminalPrompter) Confirm(prompt string) (shared.ConfirmationResult, error) {
	if _, writeError := fmt.Fprint(prompter.output, prompt+promptSuffixConstant); writeError != nil {
		return shared.ConfirmationResult{}, fmt.Errorf(promptWriteErrorTemplateConstant, writeError)
	}

	answerLine, readError := prompter.input.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return shared.ConfirmationResult{}, fmt.Errorf(promptReadErrorTemplateConstant, readError)
	}

	normalizedAnswer := strings.ToLower(strings.TrimSpace(answerLine))
	confirmed := normalizedAnswer == affirmativeShortAnswerConstant || normalizedAnswer == affirmativeLongAnswerConstant
	return shared.ConfirmationResult{Confirmed: confirmed}, nil
}
