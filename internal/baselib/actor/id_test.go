package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAgentIdRootPrefix(t *testing.T) {
	t.Parallel()

	id := newAgentId("", "worker")
	require.Equal(t, AgentId("root/worker"), id)
}

func TestNewAgentIdChildExtendsParent(t *testing.T) {
	t.Parallel()

	parent := newAgentId("", "supervisor")
	child := newAgentId(parent, "worker")

	require.Equal(t, AgentId("root/supervisor/worker"), child)
}

func TestNewAgentIdAnonymousNamesDontCollide(t *testing.T) {
	t.Parallel()

	a := newAgentId("root/parent", "")
	b := newAgentId("root/parent", "")

	require.NotEqual(t, a, b)
}

func TestIsDescendantOf(t *testing.T) {
	t.Parallel()

	root := AgentId("root/supervisor")
	child := AgentId("root/supervisor/worker")
	unrelated := AgentId("root/other")

	require.True(t, child.IsDescendantOf(root))
	require.True(t, root.IsDescendantOf(root))
	require.False(t, unrelated.IsDescendantOf(root))
	require.False(t, root.IsDescendantOf(child))
}
