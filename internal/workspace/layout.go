package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ManifestName is the file name of the concatenation manifest.
const ManifestName = "video_list.txt"

// ErrLocked is returned when another invocation holds the session lock.
var ErrLocked = errors.New("session is being processed by another connect2vid instance")

// Layout holds the absolute paths a run reads and writes.
type Layout struct {
	SessionID     string
	WorkDir       string
	OutputDir     string
	BaseName      string
	Extension     string
	ArchivePath   string
	SessionDir    string
	LockPath      string
	ManifestPath  string
	FinalPath     string
	remoteArchive bool
}

// New computes the layout for sessionID. workDir holds the archive and the
// session folder; outputDir receives segments, the manifest and the final file.
// Relative directories are resolved against the current working directory.
func New(sessionID, workDir, outputDir, baseName, extension string) (Layout, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Layout{}, errors.New("session id required")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return Layout{}, fmt.Errorf("session id %q is not a valid folder name", sessionID)
	}
	work, err := filepath.Abs(workDir)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve work dir: %w", err)
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve output folder: %w", err)
	}
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return Layout{
		SessionID:     sessionID,
		WorkDir:       work,
		OutputDir:     out,
		BaseName:      baseName,
		Extension:     extension,
		ArchivePath:   filepath.Join(work, sessionID+".zip"),
		SessionDir:    filepath.Join(work, sessionID),
		LockPath:      filepath.Join(work, sessionID+".lock"),
		ManifestPath:  filepath.Join(out, ManifestName),
		FinalPath:     filepath.Join(out, baseName+extension),
		remoteArchive: true,
	}, nil
}

// WithLocalArchive points the layout at an archive the user already has.
func (l Layout) WithLocalArchive(path string) (Layout, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return l, fmt.Errorf("resolve archive path: %w", err)
	}
	l.ArchivePath = abs
	l.remoteArchive = false
	return l, nil
}

// RemoteArchive reports whether the archive has to be downloaded.
func (l Layout) RemoteArchive() bool {
	return l.remoteArchive
}

// SegmentPath returns the output path of the zero-based part index.
func (l Layout) SegmentPath(index int) string {
	return filepath.Join(l.OutputDir, fmt.Sprintf("%s_%04d%s", l.BaseName, index, l.Extension))
}

// EnsureDirectories creates the session folder and the output folder.
func (l Layout) EnsureDirectories() error {
	for _, dir := range []string{l.SessionDir, l.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Lock is a held per-session lock.
type Lock struct {
	lock *flock.Flock
}

// Acquire takes the per-session lock without blocking. It returns ErrLocked
// when another process holds it.
func (l Layout) Acquire() (*Lock, error) {
	if err := os.MkdirAll(l.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	fl := flock.New(l.LockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, l.LockPath)
	}
	return &Lock{lock: fl}, nil
}

// Release unlocks the session. The lock file stays on disk.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
