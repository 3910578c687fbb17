package routing

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownType = errors.New("unknown queue type")
	ErrNoRoute     = errors.New("no route configured")
)

// Target is the downstream service a message type is forwarded to.
type Target struct {
	BaseURL string
	Path    string
}

// URL joins BaseURL and Path with exactly one slash.
func (t Target) URL() string {
	return JoinURL(t.BaseURL, t.Path)
}

func (t Target) configured() bool {
	return t.BaseURL != "" && t.Path != ""
}

// JoinURL concatenates base and path separated by a single slash.
func JoinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}

// Table maps message types to their targets. The same table applies to every
// environment. A Table is not modified after construction.
type Table struct {
	targets map[MessageType]Target
}

// NewTable copies targets into a Table.
func NewTable(targets map[MessageType]Target) Table {
	t := Table{targets: make(map[MessageType]Target, len(targets))}
	for k, v := range targets {
		t.targets[k] = v
	}
	return t
}

// Resolve returns the target for typ. Entries with an empty base URL or path
// count as missing.
func (t Table) Resolve(typ MessageType) (Target, error) {
	if typ == "" {
		return Target{}, ErrUnknownType
	}
	target, ok := t.targets[typ]
	if !ok || !target.configured() {
		return Target{}, errors.Wrapf(ErrNoRoute, "type %s", typ)
	}
	return target, nil
}

// Types lists the types that have a usable target.
func (t Table) Types() []MessageType {
	var types []MessageType
	for _, r := range Rules {
		if target, ok := t.targets[r.Type]; ok && target.configured() {
			types = append(types, r.Type)
		}
	}
	return types
}
