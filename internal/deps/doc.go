// Package deps reports whether the external executables connect2vid shells
// out to can be found on PATH.
package deps
