package components

import (
	"fmt"
	"strings"

	"github.com/PizzaHomicide/rotv/internal/ui/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

const keySeparator = " • "

// KeyBinding is one key hint in a footer
type KeyBinding struct {
	Key  string
	Desc string
}

var keyStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7D56F4")).
	Bold(true)

// KeyBindingsBar renders the footer hints centered in width.  Hints that would overflow a narrow terminal are
// dropped from the end, so list the important ones first.
func KeyBindingsBar(width int, bindings []KeyBinding) string {
	var parts []string
	used := 0
	for _, b := range bindings {
		part := fmt.Sprintf("%s: %s", keyStyle.Render(b.Key), b.Desc)
		w := lipgloss.Width(part)
		if len(parts) > 0 {
			w += lipgloss.Width(keySeparator)
		}
		if width > 0 && len(parts) > 0 && used+w > width {
			break
		}
		parts = append(parts, part)
		used += w
	}

	return styles.CenteredText(width, styles.Info.Render(strings.Join(parts, keySeparator)))
}
