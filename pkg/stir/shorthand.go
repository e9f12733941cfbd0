package stir

// Cmd runs name with args and returns its captured stdout untrimmed. Any
// failure panics with the *Error.
func Cmd(name string, args ...string) string {
	r := &Runner{}
	return r.MustOutput(New(name, args...))
}

// CmdUnit runs name with args, relaying its output. Any failure panics with
// the *Error.
func CmdUnit(name string, args ...string) {
	r := &Runner{}
	r.MustRun(New(name, args...))
}

// CmdResult is Cmd returning the error instead of panicking.
func CmdResult(name string, args ...string) (string, error) {
	r := &Runner{}
	return r.Output(New(name, args...))
}

// CmdStatus runs name with args, relaying its output, and returns the exit
// status. A non-zero exit is not an error.
func CmdStatus(name string, args ...string) (Status, error) {
	r := &Runner{}
	return r.Status(New(name, args...))
}
