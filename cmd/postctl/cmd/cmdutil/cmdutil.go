// Package cmdutil holds helpers shared by postctl subcommands.
package cmdutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

// Prompt returns value when set, otherwise asks for it. Non-interactive runs
// fail instead of prompting.
func Prompt(value, label, flag string, mask, nonInteractive bool) (string, error) {
	if value != "" {
		return value, nil
	}
	if nonInteractive {
		return "", fmt.Errorf("--%s is required in non-interactive mode", flag)
	}

	input := pterm.DefaultInteractiveTextInput
	if mask {
		input = *input.WithMask("*")
	}
	answer, err := input.Show(label)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return answer, nil
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(question string) (bool, error) {
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(question)
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return ok, nil
}

// ErrRejected stands in for a validation error whose messages were already printed.
var ErrRejected = errors.New("request rejected; see the messages above")

// ReportedError prints a validation error's messages and returns ErrRejected
// so they are not printed twice. Other errors come back unchanged.
func ReportedError(err error) error {
	if ReportValidation(err) {
		return ErrRejected
	}
	return err
}

// ReportValidation prints one line per field message carried by err. It
// reports whether err was a validation error.
func ReportValidation(err error) bool {
	var v *sdk.ValidationError
	if !errors.As(err, &v) {
		return false
	}
	msgs := v.Messages()
	if len(msgs) == 0 {
		pterm.Error.Println(v.Error())
		return true
	}
	if v.Message != "" {
		pterm.Error.Println(v.Message)
	}
	for _, m := range msgs {
		pterm.Error.Println(m)
	}
	return true
}
