// Package registry names the example lenses cmd/lensctl and cmd/lensd both
// expose to their callers, so neither has to hardcode the set on its own.
package registry

import (
	"fmt"
	"sort"

	"github.com/dekarrin/lens/examples/debctrl"
	"github.com/dekarrin/lens/examples/netiface"
	"github.com/dekarrin/lens/internal/util"
	"github.com/dekarrin/lens/lens"
)

// Entry is one named lens available for Get/Put, built fresh on each Build
// call since lens trees are cheap to construct and some carry recursion
// depth state that shouldn't be shared across unrelated calls.
type Entry struct {
	Name        string
	Description string
	Build       func() lens.Lens

	// New returns a fresh pointer to the Go type this lens's Get produces, so
	// a caller that only has a JSON encoding of a model (e.g. one round-
	// tripped through a saved session) has something concrete to unmarshal
	// it back into before handing it to Put.
	New func() any
}

var entries = []Entry{
	{
		Name:        "netiface",
		Description: "Debian /etc/network/interfaces stanzas",
		Build:       func() lens.Lens { return netiface.Lens() },
		New:         func() any { return &netiface.Config{} },
	},
	{
		Name:        "debctrl",
		Description: "Debian control(5) stanzas",
		Build:       func() lens.Lens { return debctrl.Lens() },
		New:         func() any { return &debctrl.Control{} },
	},
}

// Names returns the registered lens names in a stable order.
func Names() []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named entry, or an error listing the valid names if it
// isn't registered.
func Lookup(name string) (Entry, error) {
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("unknown lens %q (available: %s)", name, util.MakeTextList(Names()))
}
