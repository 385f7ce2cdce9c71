// Package ffprobe reads container metadata of produced parts so the run
// summary can show their durations and stream layout.
//
// The probe is informational only: parts are never rejected based on what
// ffprobe reports.
package ffprobe
