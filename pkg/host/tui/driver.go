package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// TextPrompt asks for the contents of a Text leaf. Default is the text the
// leaf currently holds, so re-prompting after a rejected submit starts from
// the previous answer.
type TextPrompt struct {
	Label   string
	Default string
}

// TogglePrompt asks for the state of a Toggle leaf.
type TogglePrompt struct {
	Label   string
	Default bool
}

// ChoicePrompt asks for the selection of a Choice leaf. Selected is the
// current index, or -1 when nothing is selected.
type ChoicePrompt struct {
	Label    string
	Options  []string
	Selected int
	PageSize int
}

// PromptDriver answers one leaf at a time. Host only depends on this
// interface; the default implementation drives survey on the terminal.
type PromptDriver interface {
	Text(ctx context.Context, p TextPrompt) (string, error)
	Toggle(ctx context.Context, p TogglePrompt) (bool, error)
	Choice(ctx context.Context, p ChoicePrompt) (int, error)
	// Note prints a caption or a validation failure.
	Note(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

func newSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

// ask runs a single survey question into answer.
func ask[V any](ctx context.Context, prompt survey.Prompt, answer *V) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := survey.AskOne(prompt, answer); err != nil {
		return translateSurveyErr(err)
	}
	return nil
}

func (d *surveyDriver) Text(ctx context.Context, p TextPrompt) (string, error) {
	var answer string
	err := ask(ctx, &survey.Input{Message: p.Label, Default: p.Default}, &answer)
	return answer, err
}

func (d *surveyDriver) Toggle(ctx context.Context, p TogglePrompt) (bool, error) {
	var answer bool
	err := ask(ctx, &survey.Confirm{Message: p.Label, Default: p.Default}, &answer)
	return answer, err
}

func (d *surveyDriver) Choice(ctx context.Context, p ChoicePrompt) (int, error) {
	if len(p.Options) == 0 {
		return -1, ctx.Err()
	}
	prompt := &survey.Select{Message: p.Label, Options: p.Options}
	if p.PageSize > 0 {
		prompt.PageSize = p.PageSize
	}
	if p.Selected >= 0 && p.Selected < len(p.Options) {
		prompt.Default = p.Options[p.Selected]
	}
	var answer string
	if err := ask(ctx, prompt, &answer); err != nil {
		return -1, err
	}
	return slices.Index(p.Options, answer), nil
}

func (d *surveyDriver) Note(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// translateSurveyErr maps a Ctrl+C at any prompt to ErrAborted.
func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
