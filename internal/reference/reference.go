package reference

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// IDLength is the length of a bare Connect recording identifier.
const IDLength = 12

// ArchiveExtension marks a reference as a local session archive.
const ArchiveExtension = ".zip"

// DefaultHostDomain is the substring identifying the hosting domain in a URL.
const DefaultHostDomain = "adobeconnect.com"

var (
	// ErrNoReference is returned when no positional argument was supplied.
	ErrNoReference = errors.New("no recording reference provided")
	// ErrUnparseable is returned when a reference is neither an archive, an
	// identifier, nor a URL on the hosting domain.
	ErrUnparseable = errors.New("couldn't parse URL")
)

// Kind classifies how a reference was interpreted.
type Kind string

const (
	KindArchive Kind = "archive"
	KindID      Kind = "id"
	KindURL     Kind = "url"
)

// Reference is a resolved recording reference.
type Reference struct {
	Raw  string
	ID   string
	Kind Kind
	// ArchivePath is set for KindArchive references.
	ArchivePath string
}

// IsLocalArchive reports whether the reference names an archive already on disk.
func (r Reference) IsLocalArchive() bool {
	return r.Kind == KindArchive
}

// Resolver turns raw positional arguments into recording identifiers.
type Resolver struct {
	HostDomain string
}

// NewResolver returns a resolver matching URLs on hostDomain. An empty domain
// falls back to DefaultHostDomain.
func NewResolver(hostDomain string) Resolver {
	hostDomain = strings.ToLower(strings.TrimSpace(hostDomain))
	if hostDomain == "" {
		hostDomain = DefaultHostDomain
	}
	return Resolver{HostDomain: hostDomain}
}

// Resolve interprets the first argument. Checks run in a fixed order: archive
// suffix, exact identifier length, then URL scan. Only the first argument is
// considered.
func (r Resolver) Resolve(args []string) (Reference, error) {
	if len(args) < 1 {
		return Reference{}, ErrNoReference
	}
	raw := args[0]

	if strings.EqualFold(extensionOf(raw), ArchiveExtension) {
		stem := raw[:len(raw)-len(ArchiveExtension)]
		return Reference{
			Raw:         raw,
			ID:          filepath.Base(stem),
			Kind:        KindArchive,
			ArchivePath: raw,
		}, nil
	}

	if len(raw) == IDLength {
		return Reference{Raw: raw, ID: raw, Kind: KindID}, nil
	}

	domain := r.HostDomain
	if domain == "" {
		domain = DefaultHostDomain
	}
	segments := strings.Split(raw, "/")
	for i := 0; i < len(segments)-1; i++ {
		if !strings.Contains(strings.ToLower(segments[i]), domain) {
			continue
		}
		id := segments[i+1]
		if id == "" {
			break
		}
		return Reference{Raw: raw, ID: id, Kind: KindURL}, nil
	}
	return Reference{}, fmt.Errorf("%w: %q", ErrUnparseable, raw)
}

// extensionOf returns the last len(ArchiveExtension) bytes of value.
func extensionOf(value string) string {
	if len(value) < len(ArchiveExtension) {
		return ""
	}
	return value[len(value)-len(ArchiveExtension):]
}
