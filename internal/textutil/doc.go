// Package textutil provides text helpers for turning user supplied titles into
// safe output file names.
package textutil
