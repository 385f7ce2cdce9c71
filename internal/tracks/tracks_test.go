package tracks_test

import (
	"path/filepath"
	"testing"

	"connect2vid/internal/testsupport"
	"connect2vid/internal/tracks"
)

func TestScanPairsSortedTracksPositionally(t *testing.T) {
	dir := t.TempDir()
	testsupport.Touch(t, dir,
		"cameraVoip_2.flv", "cameraVoip_1.flv",
		"screenshare_9.flv", "screenshare_3.flv",
		"other.flv", "cameraVoip_1.mp4",
	)

	listing, err := tracks.Scan(dir, tracks.DefaultPatterns)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(listing.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(listing.Pairs))
	}
	want := []tracks.Pair{
		{Index: 0, Voice: filepath.Join(dir, "cameraVoip_1.flv"), Screen: filepath.Join(dir, "screenshare_3.flv")},
		{Index: 1, Voice: filepath.Join(dir, "cameraVoip_2.flv"), Screen: filepath.Join(dir, "screenshare_9.flv")},
	}
	for i, pair := range listing.Pairs {
		if pair != want[i] {
			t.Fatalf("pair %d = %+v, want %+v", i, pair, want[i])
		}
	}
	if listing.Dropped() != 0 {
		t.Fatalf("expected nothing dropped, got %d", listing.Dropped())
	}
}

func TestPairUpTruncatesToShorterList(t *testing.T) {
	listing := tracks.PairUp(
		[]string{"v3", "v1", "v2"},
		[]string{"s1"},
	)
	if len(listing.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(listing.Pairs))
	}
	if listing.Pairs[0].Voice != "v1" || listing.Pairs[0].Screen != "s1" {
		t.Fatalf("unexpected pair %+v", listing.Pairs[0])
	}
	if len(listing.DroppedVoice) != 2 || listing.DroppedVoice[0] != "v2" || listing.DroppedVoice[1] != "v3" {
		t.Fatalf("unexpected dropped voice tracks %v", listing.DroppedVoice)
	}
	if len(listing.DroppedScreen) != 0 {
		t.Fatalf("unexpected dropped screen tracks %v", listing.DroppedScreen)
	}
}

func TestPairUpUsesByteOrder(t *testing.T) {
	// Byte order places "_10" before "_2"; pairing follows it.
	listing := tracks.PairUp(
		[]string{"cameraVoip_2.flv", "cameraVoip_10.flv"},
		[]string{"screenshare_2.flv", "screenshare_10.flv"},
	)
	if listing.Pairs[0].Voice != "cameraVoip_10.flv" || listing.Pairs[0].Screen != "screenshare_10.flv" {
		t.Fatalf("unexpected first pair %+v", listing.Pairs[0])
	}
}

func TestPairUpDoesNotMutateInput(t *testing.T) {
	voice := []string{"b", "a"}
	tracks.PairUp(voice, []string{"x"})
	if voice[0] != "b" {
		t.Fatalf("input slice was reordered: %v", voice)
	}
}

func TestScanEmptyFolder(t *testing.T) {
	listing, err := tracks.Scan(t.TempDir(), tracks.DefaultPatterns)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(listing.Pairs) != 0 || listing.Dropped() != 0 {
		t.Fatalf("expected empty listing, got %+v", listing)
	}
}

func TestScanRejectsMalformedPattern(t *testing.T) {
	if _, err := tracks.Scan(t.TempDir(), tracks.Patterns{Voice: "[", Screen: "*.flv"}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}
