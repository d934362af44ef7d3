package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm asks a yes/no question on stdin. Anything but y/yes is no.
func Confirm(prompt string) bool {
	return confirm(os.Stdin, StyleWarning.Render(prompt))
}

// ConfirmDanger is Confirm styled for destructive actions.
func ConfirmDanger(prompt string) bool {
	return confirm(os.Stdin, StyleError.Render("⚠ "+prompt))
}

func confirm(in io.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
