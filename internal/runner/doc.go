// Package runner executes the external tools connect2vid delegates to.
//
// Commands are expressed as shell-style command lines (tokenized with
// go-shellquote, never passed to a shell). Standard output and standard error
// are relayed separately, line by line, while the child runs, and the exit
// code is returned instead of being folded into an error: deciding whether a
// non-zero exit matters is the caller's policy.
//
// Stages depend on the Executor interface so tests can substitute recorders.
package runner
