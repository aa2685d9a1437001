package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// Form styles
var (
	formLabelStyle   = lipgloss.NewStyle().Foreground(colorGray).Width(20)
	formFocusedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Width(20)
	formErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	formHelpStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// initValues - Manifest fields collected by init
// =============================================================================

type initValues struct {
	Name          string
	TargetVersion string
	Version       string
	LoaderVersion string
	Description   string
	Author        string
}

func (v initValues) fields() []string {
	return []string{v.Name, v.TargetVersion, v.Version, v.LoaderVersion, v.Description, v.Author}
}

// validate checks the required fields. The returned index names the first
// offending form field.
func (v initValues) validate() (int, error) {
	if err := errors.ValidatePackName(v.Name); err != nil {
		return fieldName, err
	}
	if v.TargetVersion == "" {
		return fieldTarget, errors.New(errors.ErrCodeInvalidInput, "a Minecraft version is required")
	}
	return -1, nil
}

// manifest builds an empty manifest from the values.
func (v initValues) manifest() *pack.Manifest {
	m := pack.NewManifest(v.Name, v.TargetVersion)
	if v.Version != "" {
		m.Version = v.Version
	}
	m.LoaderVersion = v.LoaderVersion
	m.Description = v.Description
	m.Author = v.Author
	return m
}

// =============================================================================
// InitFormModel - Interactive pack setup
// =============================================================================

const (
	fieldName = iota
	fieldTarget
	fieldVersion
	fieldLoader
	fieldDescription
	fieldAuthor
	fieldCount
)

var (
	formLabels       = [fieldCount]string{"Pack name", "Minecraft version", "Pack version", "Mod loader", "Description", "Author"}
	formPlaceholders = [fieldCount]string{"my-pack", "1.12.2", pack.DefaultVersion, "forge-14.23.5.2859", "", ""}
)

type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

var formKeys = formKeyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "back")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "confirm")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel")),
}

// InitFormModel is the bubbletea model for interactive pack setup.
type InitFormModel struct {
	inputs []textinput.Model
	focus  int
	err    string

	Submitted bool
	Cancelled bool
}

// NewInitFormModel creates a form prefilled with defaults.
func NewInitFormModel(defaults initValues) InitFormModel {
	m := InitFormModel{inputs: make([]textinput.Model, fieldCount)}
	values := defaults.fields()
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = formPlaceholders[i]
		ti.CharLimit = 128
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[fieldName].Focus()
	return m
}

// Values returns the trimmed form contents.
func (m InitFormModel) Values() initValues {
	get := func(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }
	return initValues{
		Name:          get(fieldName),
		TargetVersion: get(fieldTarget),
		Version:       get(fieldVersion),
		LoaderVersion: get(fieldLoader),
		Description:   get(fieldDescription),
		Author:        get(fieldAuthor),
	}
}

func (m InitFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InitFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, formKeys.Quit):
			m.Cancelled = true
			return m, tea.Quit
		case key.Matches(msg, formKeys.Prev):
			return m.focusField(m.focus - 1)
		case key.Matches(msg, formKeys.Next):
			return m.focusField(m.focus + 1)
		case key.Matches(msg, formKeys.Submit):
			if m.focus < fieldCount-1 {
				return m.focusField(m.focus + 1)
			}
			if field, err := m.Values().validate(); err != nil {
				m.err = errors.UserMessage(err)
				return m.focusField(field)
			}
			m.Submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m InitFormModel) focusField(i int) (tea.Model, tea.Cmd) {
	i = max(0, min(i, fieldCount-1))
	m.inputs[m.focus].Blur()
	m.focus = i
	return m, m.inputs[i].Focus()
}

func (m InitFormModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("New modpack"))
	b.WriteString("\n\n")

	for i, in := range m.inputs {
		label := formLabelStyle
		if i == m.focus {
			label = formFocusedStyle
		}
		b.WriteString(label.Render(formLabels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(formErrorStyle.Render(m.err))
		b.WriteString("\n")
	}

	var help []string
	for _, k := range []key.Binding{formKeys.Next, formKeys.Prev, formKeys.Submit, formKeys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(formHelpStyle.Render(strings.Join(help, "  ")))
	b.WriteString("\n")

	return b.String()
}

// runInitForm shows the form and returns the entered values. ok is false
// when the user cancelled.
func runInitForm(defaults initValues) (values initValues, ok bool, err error) {
	final, err := tea.NewProgram(NewInitFormModel(defaults)).Run()
	if err != nil {
		return initValues{}, false, errors.Wrap(errors.ErrCodeInternal, err, "run setup form")
	}
	form := final.(InitFormModel)
	return form.Values(), form.Submitted, nil
}
