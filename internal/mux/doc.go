// Package mux drives ffmpeg to combine paired tracks into numbered parts and
// to join those parts into the final recording.
//
// Every invocation uses stream copy, so no re-encoding takes place. The
// concatenation manifest uses the concat demuxer's `file '<path>'` syntax and
// is left next to the output for inspection.
package mux
