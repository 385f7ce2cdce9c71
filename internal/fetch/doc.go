// Package fetch implements the download and extraction stage.
//
// Both steps are skip-if-present: the download is not issued when the archive
// already exists (and wget runs with --no-clobber anyway), and unzip runs with
// -n so previously extracted tracks are never overwritten. Repeated runs on
// the same recording are therefore cheap.
package fetch
