package tracks

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Patterns holds the glob patterns for the two track families.
type Patterns struct {
	Voice  string
	Screen string
}

// DefaultPatterns matches the file names Adobe Connect uses in its exports.
var DefaultPatterns = Patterns{
	Voice:  "cameraVoip_*.flv",
	Screen: "screenshare_*.flv",
}

// Pair is one voice track matched with one screenshare track.
type Pair struct {
	Index  int
	Voice  string
	Screen string
}

// Listing is the result of scanning a session folder.
type Listing struct {
	Voice         []string
	Screen        []string
	Pairs         []Pair
	DroppedVoice  []string
	DroppedScreen []string
}

// Dropped reports how many tracks had no partner.
func (l Listing) Dropped() int {
	return len(l.DroppedVoice) + len(l.DroppedScreen)
}

// Scan globs both families inside dir and pairs them.
func Scan(dir string, patterns Patterns) (Listing, error) {
	voice, err := glob(dir, patterns.Voice)
	if err != nil {
		return Listing{}, fmt.Errorf("list voice tracks: %w", err)
	}
	screen, err := glob(dir, patterns.Screen)
	if err != nil {
		return Listing{}, fmt.Errorf("list screenshare tracks: %w", err)
	}
	return PairUp(voice, screen), nil
}

// PairUp sorts both lists independently and zips them positionally. The pair
// count is the length of the shorter list.
func PairUp(voice, screen []string) Listing {
	voice = sorted(voice)
	screen = sorted(screen)

	count := min(len(voice), len(screen))
	listing := Listing{
		Voice:         voice,
		Screen:        screen,
		Pairs:         make([]Pair, 0, count),
		DroppedVoice:  voice[count:],
		DroppedScreen: screen[count:],
	}
	for i := 0; i < count; i++ {
		listing.Pairs = append(listing.Pairs, Pair{Index: i, Voice: voice[i], Screen: screen[i]})
	}
	return listing
}

func glob(dir, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, nil
	}
	return filepath.Glob(filepath.Join(dir, pattern))
}

func sorted(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out
}
