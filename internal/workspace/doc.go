// Package workspace computes where a run keeps its files and serializes runs
// on the same recording.
//
// The archive (<id>.zip) and the extracted session folder (<id>/) live in the
// work directory; numbered parts, the concatenation manifest and the final
// video live in the output folder. A flock-based lock file next to the
// archive keeps two invocations for the same recording from racing on the
// skip-if-present download and extraction.
package workspace
