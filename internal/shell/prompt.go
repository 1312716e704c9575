package shell

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptHostStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	promptPathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// PlainPrompt renders the prompt without styling.
func PlainPrompt(cwd string) string {
	return fmt.Sprintf("shell@emulator:%s$ ", cwd)
}

// Prompt renders the prompt, coloured when the terminal supports it.
func Prompt(cwd string) string {
	return promptHostStyle.Render("shell@emulator") + ":" + promptPathStyle.Render(cwd) + "$ "
}
