package render

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/errors"
	"golang.org/x/term"
)

var (
	promptNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	promptDefaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptChoiceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
)

// Prompt collects a full parameter set for the template's schema. Each
// non-private parameter is asked in declaration order; private ones are
// resolved silently. Defaults seed in order: the template's declared
// default, then the user config's default_context, then the values in
// req.Defaults (the project's stored parameters).
//
// When stdin is not a terminal every prompt falls back to its default,
// so scripted runs behave like cookiecutter's no-input mode.
func (e *CookiecutterEngine) Prompt(ctx context.Context, req PromptRequest) (*config.Parameters, error) {
	checkout, cleanup, err := e.checkout(ctx, req.Template, req.Ref)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	schema, err := ReadSchema(checkout)
	if err != nil {
		return nil, err
	}

	if !e.interactive() {
		params, err := resolveContext(schema, req.Defaults, e.UserDefaults)
		if err != nil {
			return nil, errors.RenderFailed(req.Template.Origin, err)
		}
		return params, nil
	}

	reader := bufio.NewReader(e.In)
	resolved := config.NewParameters()
	answered := map[string]interface{}{}

	for _, name := range schema.Names() {
		seeded, err := e.seededDefault(schema, name, req.Defaults, answered)
		if err != nil {
			return nil, errors.RenderFailed(req.Template.Origin, err)
		}

		if IsPrivate(name) {
			resolved.Set(name, seeded)
			answered[name] = seeded
			continue
		}

		value, err := e.askOne(reader, name, schema.Default(name), seeded)
		if err != nil {
			return nil, err
		}
		resolved.Set(name, value)
		answered[name] = value
	}
	return resolved, nil
}

// interactive reports whether stdin is a terminal that can be prompted.
func (e *CookiecutterEngine) interactive() bool {
	file, ok := e.In.(*os.File)
	if !ok {
		// A non-file reader (tests, pipes wrapped in buffers) is
		// treated as promptable; only a real non-TTY stdin disables
		// prompting.
		return true
	}
	return term.IsTerminal(int(file.Fd()))
}

// seededDefault resolves the value shown as a prompt's default,
// preferring the stored project parameters over user and template
// defaults.
func (e *CookiecutterEngine) seededDefault(schema *Schema, name string, stored *config.Parameters, answered map[string]interface{}) (interface{}, error) {
	if value, ok := stored.Get(name); ok {
		return value, nil
	}
	return defaultValue(schema, name, e.UserDefaults, answered)
}

// askOne prompts for a single parameter.
func (e *CookiecutterEngine) askOne(reader *bufio.Reader, name string, declared, seeded interface{}) (interface{}, error) {
	switch choices := declared.(type) {
	case []interface{}:
		return e.askChoice(reader, name, choices, seeded)
	}

	if _, isBool := declared.(bool); isBool {
		return e.askBool(reader, name, seeded)
	}

	fmt.Fprintf(e.Out, "%s %s: ",
		promptNameStyle.Render(name),
		promptDefaultStyle.Render(fmt.Sprintf("[%v]", seeded)))
	line, err := e.readLine(reader)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return seeded, nil
	}
	return line, nil
}

// askChoice prompts for one entry of a choice list.
func (e *CookiecutterEngine) askChoice(reader *bufio.Reader, name string, choices []interface{}, seeded interface{}) (interface{}, error) {
	defaultIndex := 1
	fmt.Fprintf(e.Out, "Select %s:\n", promptNameStyle.Render(name))
	for i, choice := range choices {
		if fmt.Sprintf("%v", choice) == fmt.Sprintf("%v", seeded) {
			defaultIndex = i + 1
		}
		fmt.Fprintf(e.Out, "%s - %v\n", promptChoiceStyle.Render(strconv.Itoa(i+1)), choice)
	}
	fmt.Fprintf(e.Out, "Choose from 1-%d %s: ", len(choices),
		promptDefaultStyle.Render(fmt.Sprintf("[%d]", defaultIndex)))

	line, err := e.readLine(reader)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return choices[defaultIndex-1], nil
	}
	index, err := strconv.Atoi(line)
	if err != nil || index < 1 || index > len(choices) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%q is not a choice between 1 and %d", line, len(choices)))
	}
	return choices[index-1], nil
}

// askBool prompts for a yes/no parameter.
func (e *CookiecutterEngine) askBool(reader *bufio.Reader, name string, seeded interface{}) (interface{}, error) {
	hint := "[y/N]"
	if isTruthy(seeded) {
		hint = "[Y/n]"
	}
	fmt.Fprintf(e.Out, "%s %s: ", promptNameStyle.Render(name), promptDefaultStyle.Render(hint))

	line, err := e.readLine(reader)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return isTruthy(seeded), nil
	}
	switch strings.ToLower(line) {
	case "y", "yes", "true", "1":
		return true, nil
	case "n", "no", "false", "0":
		return false, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		fmt.Sprintf("%q is not a yes/no answer", line))
}

func (e *CookiecutterEngine) readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		// EOF with nothing read accepts the default, so piped input
		// shorter than the prompt list still completes.
		return "", nil
	}
	return strings.TrimSpace(line), nil
}

func isTruthy(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "y", "yes", "true", "1":
			return true
		}
	}
	return false
}
