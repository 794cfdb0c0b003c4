package interactive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
)

// ErrNonInteractive is returned when a prompt is needed but prompting is disabled
var ErrNonInteractive = errors.New("interactive selection not available in non-interactive mode")

// Option is one selectable entity
type Option struct {
	ID     string
	Label  string
	Detail string
}

// String formats the option as "Label (Detail)"
func (o Option) String() string {
	name := color.New(color.FgWhite, color.Bold).Sprint(o.Label)
	if o.Detail == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, color.New(color.FgBlue).Sprint(o.Detail))
}

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectOne asks the user to pick one option; a single option is returned directly
func (s *SelectorAdapter) SelectOne(label string, options []Option) (Option, error) {
	if len(options) == 0 {
		return Option{}, fmt.Errorf("no options provided for selection")
	}
	if len(options) == 1 {
		return options[0], nil
	}
	if s.config.NonInteractive {
		return Option{}, ErrNonInteractive
	}

	items := lo.Map(options, func(o Option, _ int) string { return o.String() })
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             label,
		Items:             items,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(lo.Map(options, func(o Option, _ int) string { return o.Label + " " + o.Detail })),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return Option{}, fmt.Errorf("selection cancelled: %w", err)
	}
	return options[index], nil
}

// Confirm asks a yes/no question; non-interactive mode assumes yes
func (s *SelectorAdapter) Confirm(label string) (bool, error) {
	if s.config.NonInteractive {
		return true, nil
	}
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Resolve finds the option a user typed: exact id, then exact name, then a
// unique fuzzy match on the name
func Resolve(kind domain.EntityKind, query string, options []Option) (Option, error) {
	if o, ok := lo.Find(options, func(o Option) bool { return o.ID == query }); ok {
		return o, nil
	}
	named := lo.Filter(options, func(o Option, _ int) bool { return strings.EqualFold(o.Label, query) })
	if len(named) == 1 {
		return named[0], nil
	}
	if len(named) > 1 {
		return Option{}, ambiguous(kind, query, named)
	}

	labels := lo.Map(options, func(o Option, _ int) string { return o.Label })
	matches := fuzzy.Find(query, labels)
	switch len(matches) {
	case 0:
		return Option{}, domain.NotFoundError{Kind: kind, ID: query}
	case 1:
		return options[matches[0].Index], nil
	default:
		return Option{}, ambiguous(kind, query, lo.Map(matches, func(m fuzzy.Match, _ int) Option { return options[m.Index] }))
	}
}

func ambiguous(kind domain.EntityKind, query string, candidates []Option) error {
	names := lo.Map(candidates, func(o Option, _ int) string { return fmt.Sprintf("%s (%s)", o.Label, o.ID) })
	return fmt.Errorf("%w: %q matches several %ss: %s", domain.ErrInvalidPayload, query, kind, strings.Join(names, ", "))
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}
