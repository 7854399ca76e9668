// Package repl implements the interactive shell for the bug language.
//
// The shell reads postfix bug source, runs it through the full
// lexer -> parser -> checker -> codegen -> vm pipeline and displays
// whatever the program wrote through the "write" native during that run.
// It uses the Charm libraries (Bubbletea, Bubbles and Lipgloss) for a
// terminal UI with history, a busy spinner and styled diagnostics.
//
// Unlike a tree-walking evaluator a compiled program has no notion of
// "the value of the last statement": every submitted chunk is
// accumulated into a growing session source and recompiled from scratch,
// then its main function (if any) is executed for its side effects. A
// chunk that fails to compile is not added to the session, so the user
// can correct it and resubmit without losing what already compiled.
package repl

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/edilson258/bug/checker"
	"github.com/edilson258/bug/codegen"
	"github.com/edilson258/bug/diagnostic"
	"github.com/edilson258/bug/lexer"
	"github.com/edilson258/bug/parser"
	"github.com/edilson258/bug/stdlib"
	"github.com/edilson258/bug/token"
	"github.com/edilson258/bug/vm"
)

const (
	// Prompt is the default prompt for the shell.
	Prompt = ">> "

	// ContPrompt is the continuation prompt used while parentheses are unbalanced.
	ContPrompt = ".. "
)

// Options contains configuration options for the shell.
type Options struct {
	NoColor bool // Disable syntax highlighting and colored output
	Debug   bool // Enable debug mode with more verbose output
}

// Start initializes and runs the shell with the given username and options.
func Start(username string, options Options) {
	p := tea.NewProgram(initialModel(username, options))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
	}
}

// Styling
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	// Syntax highlighting styles
	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6")).
			Bold(true)

	identifierStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	literalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	operatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	delimiterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))

	stringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))
)

// Custom messages for async evaluation.
type evalResultMsg struct {
	output     string
	isError    bool
	newSession string
	elapsed    time.Duration
}

// model represents the state of the application.
type model struct {
	textInput       textinput.Model
	history         []historyEntry
	session         string // accumulated source of everything that compiled successfully
	username        string
	evaluating      bool
	currentInput    string
	multilineBuffer string
	isMultiline     bool
	spinner         spinner.Model
	options         Options
}

// applyStyle applies a lipgloss style to a string, respecting the NoColor option.
func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

// historyEntry represents a single entry in the shell's history.
type historyEntry struct {
	input          string
	output         string
	isError        bool
	evaluationTime time.Duration
}

func initialModel(username string, options Options) model {
	ti := textinput.New()
	ti.Placeholder = "f main () void -> ... ;"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		textInput:  ti,
		history:    []historyEntry{},
		username:   username,
		evaluating: false,
		spinner:    s,
		options:    options,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// isBalanced reports whether parentheses are balanced in the input. bug has
// no braces or brackets, so unlike the Monkey shell this only needs to track
// the single delimiter pair the grammar actually uses.
func isBalanced(input string) bool {
	depth := 0
	for _, char := range input {
		switch char {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// evalCmd recompiles session+input as one program and, if it now defines
// main, runs it through a fresh engine. On success the combined source
// becomes the next session; on failure the session is left untouched.
func evalCmd(session, input string, debug bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		src := session
		if src != "" {
			src += "\n"
		}
		src += input

		var out strings.Builder
		natives := stdlib.New(&out, strings.NewReader(""))
		protos := stdlib.Prototypes(natives)

		p := parser.New(lexer.New(src))
		prog := p.ParseProgram()

		if len(p.Errors()) != 0 {
			diags := make([]diagnostic.Diagnostic, len(p.Errors()))
			for i, e := range p.Errors() {
				diags[i] = diagnostic.Diagnostic{Kind: diagnostic.Syntax, Message: e.Msg, Span: e.Span}
			}
			if debug {
				fmt.Printf("DEBUG: parse errors: %v\n", p.Errors())
			}
			return evalResultMsg{
				output:     diagnostic.RenderAll("<repl>", diags, src),
				isError:    true,
				newSession: session,
				elapsed:    time.Since(start),
			}
		}

		diags := checker.New(protos, src).Check(prog)
		// The shell accepts a session that does not define main yet, so the
		// checker's missing-main diagnostic is set aside here.
		kept := diags[:0]
		for _, d := range diags {
			if d.Kind == diagnostic.Name && d.Message == "missing 'main' function" {
				continue
			}
			kept = append(kept, d)
		}
		diags = kept
		if len(diags) != 0 {
			if debug {
				fmt.Printf("DEBUG: type errors: %v\n", diags)
			}
			return evalResultMsg{
				output:     diagnostic.RenderAll("<repl>", diags, src),
				isError:    true,
				newSession: session,
				elapsed:    time.Since(start),
			}
		}

		compiled := codegen.Generate(prog)

		var output string
		if _, hasMain := compiled.Functions["main"]; hasMain {
			if err := vm.New(compiled, natives).Run(); err != nil {
				if debug {
					fmt.Printf("DEBUG: runtime error: %v\n", err)
				}
				return evalResultMsg{
					output:     fmt.Sprintf("Runtime Error:\n  %s", err.Error()),
					isError:    true,
					newSession: session,
					elapsed:    time.Since(start),
				}
			}
			output = out.String()
		} else {
			output = "(declared, no main to run yet)"
		}

		elapsed := time.Since(start)
		if debug {
			fmt.Printf("DEBUG: total execution time: %v\n", elapsed)
		}

		return evalResultMsg{
			output:     output,
			isError:    false,
			newSession: src,
			elapsed:    elapsed,
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.evaluating {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case evalResultMsg:
		m.evaluating = false
		m.session = msg.newSession
		m.history = append(m.history, historyEntry{
			input:          m.currentInput,
			output:         msg.output,
			isError:        msg.isError,
			evaluationTime: msg.elapsed,
		})
		m.currentInput = ""
		return m, nil

	case tea.KeyMsg:
		if m.evaluating && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			input := m.textInput.Value()
			if input == "" {
				if m.isMultiline {
					if m.multilineBuffer == "" {
						m.isMultiline = false
						return m, nil
					}
					m.evaluating = true
					m.currentInput = m.multilineBuffer
					m.textInput.SetValue("")
					m.isMultiline = false
					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					return m, evalCmd(m.session, buffer, m.options.Debug)
				}
				return m, nil
			}

			if m.isMultiline {
				m.multilineBuffer += "\n" + input
				m.textInput.SetValue("")
				if isBalanced(m.multilineBuffer) {
					m.evaluating = true
					m.currentInput = m.multilineBuffer
					m.isMultiline = false
					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					return m, evalCmd(m.session, buffer, m.options.Debug)
				}
				return m, nil
			}

			if !isBalanced(input) {
				m.isMultiline = true
				m.multilineBuffer = input
				m.textInput.SetValue("")
				return m, nil
			}

			m.evaluating = true
			m.currentInput = input
			m.textInput.SetValue("")
			return m, evalCmd(m.session, input, m.options.Debug)
		}
	}

	if !m.evaluating {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.evaluating {
		return m, m.spinner.Tick
	}
	return m, cmd
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " bug REPL "))
	s.WriteString("\n")

	if m.username != "" {
		s.WriteString(fmt.Sprintf("\nHello %s! Declare functions and they'll run as soon as main exists.\n", m.username))
	}
	s.WriteString("\n")

	for _, entry := range m.history {
		lines := strings.Split(entry.input, "\n")
		for i, line := range lines {
			if i == 0 {
				s.WriteString(m.applyStyle(promptStyle, Prompt))
			} else {
				s.WriteString(m.applyStyle(promptStyle, ContPrompt))
			}
			s.WriteString(m.highlightCode(line))
			s.WriteString("\n")
		}

		if entry.isError {
			s.WriteString(m.applyStyle(errorStyle, entry.output))
		} else {
			s.WriteString(m.applyStyle(resultStyle, entry.output))
		}

		if entry.evaluationTime > 10*time.Millisecond {
			timeStr := fmt.Sprintf(" (%.2fs)", entry.evaluationTime.Seconds())
			s.WriteString(m.applyStyle(historyStyle, timeStr))
		}

		s.WriteString("\n\n")
	}

	if m.evaluating {
		s.WriteString(m.applyStyle(promptStyle, Prompt))
		s.WriteString(m.highlightCode(m.currentInput))
		s.WriteString("\n")
		s.WriteString(m.spinner.View())
		s.WriteString(" Evaluating...")
		s.WriteString("\n\n")
	}

	if m.isMultiline && !m.evaluating {
		s.WriteString(m.applyStyle(historyStyle, "Current multiline input:\n"))
		s.WriteString(m.highlightCode(m.multilineBuffer))
		s.WriteString("\n")
	}

	if !m.evaluating {
		if m.isMultiline {
			m.textInput.Prompt = m.applyStyle(promptStyle, ContPrompt)
		} else {
			m.textInput.Prompt = m.applyStyle(promptStyle, Prompt)
		}
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	helpText := "\nPress Esc or Ctrl+C/D to exit"
	if m.isMultiline {
		helpText += " | Multiline mode: empty line evaluates, unbalanced '(' keeps collecting"
	} else {
		helpText += " | Multiline input supported for unbalanced parentheses"
	}
	s.WriteString(m.applyStyle(historyStyle, helpText))

	return s.String()
}

// highlightCode applies syntax highlighting to a line of bug source. bug's
// grammar has no braces, brackets or infix operators beyond +, - and >, so
// this is a flat token-by-token colorizer rather than a pretty-printer.
func (m model) highlightCode(code string) string {
	l := lexer.New(code)
	var s strings.Builder

	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	for i, tok := range tokens {
		if tok.Type == token.EOF {
			break
		}
		if i > 0 {
			s.WriteString(" ")
		}

		switch tok.Type {
		case token.FUNCTION, token.TRUE, token.FALSE, token.IF, token.RETURN:
			s.WriteString(m.applyStyle(keywordStyle, tok.Literal))
		case token.TYPE_INT, token.TYPE_STR, token.TYPE_BOOL, token.TYPE_VOID:
			s.WriteString(m.applyStyle(typeStyle, tok.Literal))
		case token.IDENT:
			s.WriteString(m.applyStyle(identifierStyle, tok.Literal))
		case token.INT:
			s.WriteString(m.applyStyle(literalStyle, tok.Literal))
		case token.STRING:
			s.WriteString(m.applyStyle(stringStyle, "\""+tok.Literal+"\""))
		case token.ASSIGN, token.PLUS, token.MINUS, token.GT, token.ARROW, token.DOT:
			s.WriteString(m.applyStyle(operatorStyle, tok.Literal))
		case token.COMMA, token.SEMI, token.LPAREN, token.RPAREN:
			s.WriteString(m.applyStyle(delimiterStyle, tok.Literal))
		default:
			s.WriteString(tok.Literal)
		}
	}

	return s.String()
}
