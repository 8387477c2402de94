package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter reads answers for interactive setup.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints label with its default and returns the answer, or def when the
// answer is empty.
func (p *prompter) ask(label, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	input, _ := p.in.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}

// confirm asks a yes/no question.
func (p *prompter) confirm(question string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", question, hint)
		input, err := p.in.ReadString('\n')
		input = strings.ToLower(strings.TrimSpace(input))
		switch {
		case input == "y" || input == "yes":
			return true
		case input == "n" || input == "no":
			return false
		case input == "" || err != nil:
			return def
		default:
			fmt.Fprintln(p.out, "Please answer y or n.")
		}
	}
}
