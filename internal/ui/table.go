package ui

import (
	"fmt"
	"strings"
)

// RenderKeyValues renders a bordered key-value section with an optional
// title. Rows appear in the order given.
func RenderKeyValues(title string, rows []KV, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string
	if title != "" {
		lines = append(lines, TableTitleStyle.Render(" "+title))
		dividerWidth := width - 6
		if dividerWidth < 10 {
			dividerWidth = 10
		}
		lines = append(lines, RenderHorizontalDivider(dividerWidth, "─"))
	}

	for _, row := range rows {
		keyStyled := TableKeyStyle.Render(" " + row.Key)
		valueStyled := TableValueStyle.Render(row.Value)
		lines = append(lines, keyStyled+" "+valueStyled)
	}

	content := strings.Join(lines, "\n")
	return TableBoxStyle(width).Render(content)
}

// PrintKeyValues renders a key-value section to stdout at the current
// terminal width.
func PrintKeyValues(title string, rows []KV) {
	fmt.Println(RenderKeyValues(title, rows, GetTerminalWidth()))
}
