package linkshare

import (
	"regexp"
	"strconv"
)

// RefKind is the entity kind recovered from a shared link.
type RefKind string

const (
	RefDocument RefKind = "document"
	RefTask     RefKind = "task"
	RefFolder   RefKind = "folder"
)

// Ref is the entity reference recovered from a shared link.
type Ref struct {
	Kind RefKind
	ID   int64
}

var linkPattern = regexp.MustCompile(`/(document|task|folder)/([0-9]+)`)

// ExtractRef recovers an entity reference from an opaque link string.
// It matches a document, task or folder path segment followed by a
// numeric id anywhere in the string, and fails with ErrUnknownLink
// when no such segment exists.
func ExtractRef(link string) (Ref, error) {
	match := linkPattern.FindStringSubmatch(link)
	if match == nil {
		return Ref{}, ErrUnknownLink
	}
	id, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return Ref{}, ErrUnknownLink
	}
	return Ref{Kind: RefKind(match[1]), ID: id}, nil
}
