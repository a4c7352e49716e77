package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter asks line-oriented questions on the terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed answer; "" on EOF.
func (p *prompter) ask(question string) string {
	fmt.Fprintf(p.out, "%s ", promptStyle.Render(question))
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return ""
	}
	return strings.TrimSpace(line)
}

// confirm asks a yes/no question. An empty answer selects def.
func (p *prompter) confirm(question string, def bool) bool {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		ans := strings.ToLower(p.ask(question + " " + hint))
		switch ans {
		case "":
			return def
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}
