package prompt

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// PromptConfirm prompts the operator to confirm a plan before publishing
// (SPEC_FULL.md §1.1's "confirm this plan before publishing" prompt).
func PromptConfirm(message string, defaultYes bool) (bool, error) {
	return PromptConfirmFunc(message, defaultYes, nil)
}

// PromptConfirmFunc allows dependency injection for testing: when inputFunc
// is non-nil it is used instead of the real interactive prompt.
func PromptConfirmFunc(message string, defaultYes bool, inputFunc func() (bool, error)) (bool, error) {
	if inputFunc != nil {
		return inputFunc()
	}

	answer := defaultYes
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Value(&answer),
		),
	)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	return answer, nil
}
