package actor

import (
	"strings"

	"github.com/google/uuid"
)

// AgentId is a stable, human-readable hierarchical name. A child's id always
// extends its parent's id with a "/"-separated suffix, so the id alone
// reveals an agent's position in the supervision tree.
type AgentId string

// rootPrefix is the id segment every top-level agent (spawned with no
// parent) is anchored under.
const rootPrefix = "root"

// newAgentId builds a child id from an optional parent id and a
// caller-supplied name. If name is empty, a short anonymous suffix is
// generated so that concurrent anonymous spawns are unlikely to collide.
func newAgentId(parent AgentId, name string) AgentId {
	if name == "" {
		name = anonymousName()
	}

	if parent == "" {
		return AgentId(rootPrefix + "/" + name)
	}

	return AgentId(string(parent) + "/" + name)
}

// anonymousName generates a short, probabilistically unique name for agents
// spawned without an explicit id.
func anonymousName() string {
	return "agent-" + uuid.NewString()[:8]
}

// IsDescendantOf reports whether id names a node at or below ancestor in the
// supervision tree, based purely on the hierarchical naming convention.
func (id AgentId) IsDescendantOf(ancestor AgentId) bool {
	if id == ancestor {
		return true
	}

	return strings.HasPrefix(string(id), string(ancestor)+"/")
}

// String implements fmt.Stringer.
func (id AgentId) String() string {
	return string(id)
}
