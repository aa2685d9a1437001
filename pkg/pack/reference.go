package pack

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/mcbuilder/pkg/errors"
)

// SourceCurseForge names the CurseForge catalog.
const SourceCurseForge = "curseforge"

// Reference identifies one remote mod file.
//
// A zero FileID means "the latest file compatible with the pack's target
// version"; it is pinned when the reference is resolved.
type Reference struct {
	Source   string
	SourceID int
	FileID   int
	Scope    Scope
}

// NewReference returns a CurseForge reference in the common scope.
func NewReference(projectID, fileID int) Reference {
	return Reference{Source: SourceCurseForge, SourceID: projectID, FileID: fileID}
}

// Key identifies the project a reference points at. Two references with the
// same key are the same logical mod, whatever their file ids.
func (r Reference) Key() string {
	return Key(r.Source, r.SourceID)
}

// Key builds the identity key for a project of a catalog source.
func Key(source string, id int) string {
	if source == "" {
		source = SourceCurseForge
	}
	return source + ":" + strconv.Itoa(id)
}

// Pinned reports whether the reference names an explicit file.
func (r Reference) Pinned() bool { return r.FileID != 0 }

// Unpinned returns a copy of r without its file id.
func (r Reference) Unpinned() Reference {
	r.FileID = 0
	return r
}

func (r Reference) String() string {
	if r.FileID == 0 {
		return r.Key()
	}
	return fmt.Sprintf("%s@%d", r.Key(), r.FileID)
}

// ParseReference parses a user supplied reference.
//
// Accepted forms:
//
//	238222
//	238222:3137448
//	238222@3137448
//	curseforge:238222@3137448
//	curseforge://install?addonId=238222&fileId=3137448
func ParseReference(s string) (Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}, errors.New(errors.ErrCodeInvalidReference, "empty reference")
	}
	if strings.Contains(s, "://") {
		return parseReferenceURL(s)
	}

	ref := Reference{Source: SourceCurseForge}
	if src, rest, ok := strings.Cut(s, ":"); ok && !isDigits(src) {
		if src != SourceCurseForge {
			return Reference{}, errors.New(errors.ErrCodeInvalidReference, "unknown source %q in %q", src, s)
		}
		s = rest
	}

	project, file, hasFile := strings.Cut(s, "@")
	if !hasFile {
		project, file, hasFile = strings.Cut(s, ":")
	}

	id, err := parseID(project)
	if err != nil {
		return Reference{}, errors.Wrap(errors.ErrCodeInvalidReference, err, "invalid project id in %q", s)
	}
	ref.SourceID = id

	if hasFile {
		fid, err := parseID(file)
		if err != nil {
			return Reference{}, errors.Wrap(errors.ErrCodeInvalidReference, err, "invalid file id in %q", s)
		}
		ref.FileID = fid
	}
	return ref, nil
}

func parseReferenceURL(s string) (Reference, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Reference{}, errors.Wrap(errors.ErrCodeInvalidReference, err, "invalid reference URL %q", s)
	}
	if u.Scheme != SourceCurseForge || u.Host != "install" {
		return Reference{}, errors.New(errors.ErrCodeInvalidReference, "unsupported reference URL %q", s)
	}

	q := u.Query()
	id, err := parseID(q.Get("addonId"))
	if err != nil {
		return Reference{}, errors.Wrap(errors.ErrCodeInvalidReference, err, "invalid addonId in %q", s)
	}
	ref := NewReference(id, 0)
	if f := q.Get("fileId"); f != "" {
		fid, err := parseID(f)
		if err != nil {
			return Reference{}, errors.Wrap(errors.ErrCodeInvalidReference, err, "invalid fileId in %q", s)
		}
		ref.FileID = fid
	}
	return ref, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
