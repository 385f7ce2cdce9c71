// Package pipeline runs a full conversion: resolve the layout, take the
// session lock, fetch and extract the archive, mux each track pair into a
// numbered part and concatenate the parts into the final recording.
//
// Stages run strictly in order. A non-zero exit from wget, unzip or ffmpeg is
// handled by the configured failure policy: "continue" logs a warning and
// carries on with whatever state the tool left behind, "abort" stops the run
// with ErrToolFailed.
//
// Every log line carries the run id (a UUID) and the session id. When history
// recording is enabled, the run is persisted through internal/history.
package pipeline
