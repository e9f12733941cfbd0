package stir

import "strings"

// Command is an executable name or path plus its arguments.
type Command struct {
	Name string
	Args []string
}

// New builds a Command. The argument slice is copied.
func New(name string, args ...string) Command {
	return Command{Name: name, Args: append([]string(nil), args...)}
}

// String renders the program and arguments separated by single spaces,
// exactly as supplied.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}
