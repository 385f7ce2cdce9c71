// Package tracks discovers the camera/voice and screenshare recordings of an
// extracted session and pairs them by position.
//
// Each family is sorted by byte order before pairing, so the i-th voice track
// is muxed with the i-th screenshare track. Tracks without a partner are
// reported on the Listing rather than dropped silently.
package tracks
