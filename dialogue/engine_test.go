package dialogue

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCycleEngine(t *testing.T) *Engine {
	t.Helper()
	g, err := NewGraph("A", cycleNodes())
	require.NoError(t, err)
	return NewEngine(g)
}

func optionTo(t *testing.T, n *Node, next NodeID) Option {
	t.Helper()
	for _, opt := range n.Options {
		if opt.Next == next {
			return opt
		}
	}
	t.Fatalf("node %q has no option leading to %q", n.ID, next)
	return Option{}
}

func TestEngineStartsAtRoot(t *testing.T) {
	e := newCycleEngine(t)

	n, err := e.CurrentNode()
	require.NoError(t, err)
	assert.Equal(t, NodeID("A"), n.ID)
	assert.Equal(t, NodeID("A"), e.CurrentID())
	assert.True(t, e.IsSessionEmpty())
}

func TestEngineSelect(t *testing.T) {
	e := newCycleEngine(t)
	a, _ := e.CurrentNode()

	b, err := e.Select(a.Options[0])
	require.NoError(t, err)
	assert.Equal(t, NodeID("B"), b.ID)
	assert.Equal(t, NodeID("B"), e.CurrentID())
	assert.False(t, e.IsSessionEmpty())
}

func TestEngineSelectRejectsForeignOption(t *testing.T) {
	e := newCycleEngine(t)
	before, _ := e.CurrentNode()

	tests := []struct {
		name string
		opt  Option
	}{
		{name: "option of another node", opt: Option{Text: "to a", Next: "A"}},
		{name: "unknown target", opt: Option{Text: "to b", Next: "C"}},
		{name: "zero option", opt: Option{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := e.Select(tt.opt)
			assert.Nil(t, n)
			require.ErrorIs(t, err, ErrInvalidTransition)

			var ite *InvalidTransitionError
			require.ErrorAs(t, err, &ite)
			assert.Equal(t, NodeID("A"), ite.NodeID)
			assert.Equal(t, tt.opt, ite.Option)

			after, err := e.CurrentNode()
			require.NoError(t, err)
			assert.Equal(t, before, after)
			assert.True(t, e.IsSessionEmpty())
		})
	}
}

func TestEngineSelectRejectsStaleOptionAfterReset(t *testing.T) {
	e := newCycleEngine(t)
	a, _ := e.CurrentNode()
	b, err := e.Select(a.Options[0])
	require.NoError(t, err)

	stale := b.Options[0]
	e.Reset()

	// "to a" belongs to B; after the reset the session is back at A.
	_, err = e.Select(stale)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, NodeID("A"), e.CurrentID())
}

func TestEngineSelectIndex(t *testing.T) {
	e := newCycleEngine(t)

	n, err := e.SelectIndex(0)
	require.NoError(t, err)
	assert.Equal(t, NodeID("B"), n.ID)

	for _, i := range []int{-1, 1, 99} {
		_, err := e.SelectIndex(i)
		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, NodeID("B"), e.CurrentID())
	}
}

func TestEngineReset(t *testing.T) {
	e := newCycleEngine(t)
	_, err := e.SelectIndex(0)
	require.NoError(t, err)

	root := e.Reset()
	assert.Equal(t, NodeID("A"), root.ID)
	assert.True(t, e.IsSessionEmpty())

	// Idempotent.
	again := e.Reset()
	assert.Equal(t, root, again)
	assert.Equal(t, NodeID("A"), e.CurrentID())
}

func TestEngineCurrentNodeIsStable(t *testing.T) {
	e := newCycleEngine(t)
	_, err := e.SelectIndex(0)
	require.NoError(t, err)

	first, err := e.CurrentNode()
	require.NoError(t, err)
	for range 5 {
		n, err := e.CurrentNode()
		require.NoError(t, err)
		assert.Equal(t, first, n)
	}
}

func TestEngineCurrentNodeMissing(t *testing.T) {
	e := newCycleEngine(t)
	e.current = "ghost"

	n, err := e.CurrentNode()
	assert.Nil(t, n)
	require.ErrorIs(t, err, ErrGraphIntegrity)

	_, err = e.SelectIndex(0)
	require.ErrorIs(t, err, ErrGraphIntegrity)

	// Reset recovers the session.
	assert.Equal(t, NodeID("A"), e.Reset().ID)
}

func TestEngineCyclesWithoutLeaking(t *testing.T) {
	e := newCycleEngine(t)

	for i := range 100 {
		n, err := e.SelectIndex(0)
		require.NoError(t, err)
		if i%2 == 0 {
			assert.Equal(t, NodeID("B"), n.ID)
		} else {
			assert.Equal(t, NodeID("A"), n.ID)
		}
		assert.Len(t, n.Options, 1)
	}
	assert.Equal(t, NodeID("A"), e.CurrentID())
	assert.Equal(t, 3, e.Graph().Len())
}

func TestEngineIndependentSessions(t *testing.T) {
	g, err := NewGraph("A", cycleNodes())
	require.NoError(t, err)

	s1 := NewEngine(g)
	s2 := NewEngine(g)

	_, err = s1.SelectIndex(0)
	require.NoError(t, err)
	assert.Equal(t, NodeID("B"), s1.CurrentID())
	assert.Equal(t, NodeID("A"), s2.CurrentID())
	assert.True(t, s2.IsSessionEmpty())
}

func TestEngineDefaultScriptScenario(t *testing.T) {
	g, err := DefaultGraph()
	require.NoError(t, err)
	e := NewEngine(g)

	start, err := e.CurrentNode()
	require.NoError(t, err)
	require.Equal(t, NodeID("start"), start.ID)

	n, err := e.Select(optionTo(t, start, "topic_greetings"))
	require.NoError(t, err)
	cur, err := e.CurrentNode()
	require.NoError(t, err)
	assert.Equal(t, n, cur)
	assert.Equal(t, "Hi, Abdi. Apa khabar hari ni? 😊", cur.Text)

	n, err = e.Select(optionTo(t, cur, "greet_routeA_1"))
	require.NoError(t, err)
	assert.Equal(t, NodeID("greet_routeA_1"), n.ID)

	var mid NodeID
	for steps := 0; !g.Terminal(n.ID); steps++ {
		require.Less(t, steps, g.Len(), "branch never reached its end")
		if steps == 3 {
			mid = n.ID
		}
		n, err = e.Select(n.Options[0])
		require.NoError(t, err)
	}
	assert.Equal(t, NodeID("greet_routeA_15"), n.ID)
	require.NotEmpty(t, mid)

	for i := range n.Options {
		replay := NewEngine(g)
		replayTo(t, replay, n.ID)

		root, err := replay.SelectIndex(i)
		require.NoError(t, err)
		assert.Equal(t, NodeID("start"), root.ID)
		assert.Equal(t, "Hai, Abdi.😊", root.Text)
	}

	// Reset from the middle of the branch.
	mide := NewEngine(g)
	replayTo(t, mide, mid)
	require.Equal(t, mid, mide.CurrentID())
	root := mide.Reset()
	assert.Equal(t, "Hai, Abdi.😊", root.Text)
	cur, err = mide.CurrentNode()
	require.NoError(t, err)
	assert.Equal(t, root, cur)
}

// replayTo walks the greetings route A along first options until target.
func replayTo(t *testing.T, e *Engine, target NodeID) {
	t.Helper()
	e.Reset()
	for _, next := range []NodeID{"topic_greetings", "greet_routeA_1"} {
		n, _ := e.CurrentNode()
		_, err := e.Select(optionTo(t, n, next))
		require.NoError(t, err)
	}
	for e.CurrentID() != target {
		_, err := e.SelectIndex(0)
		require.NoError(t, err)
		require.NotEqual(t, NodeID("start"), e.CurrentID(), "target %q not on route", target)
	}
}

func TestEngineIsDeterministic(t *testing.T) {
	g, err := DefaultGraph()
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(7, 11))
	for walk := range 20 {
		e := NewEngine(g)
		var picks []int
		var visited []NodeID
		for range 60 {
			n, err := e.CurrentNode()
			require.NoError(t, err)
			i := rng.IntN(len(n.Options))
			_, err = e.SelectIndex(i)
			require.NoError(t, err)
			picks = append(picks, i)
			visited = append(visited, e.CurrentID())
		}

		replay := NewEngine(g)
		replay.Reset()
		for step, i := range picks {
			n, err := replay.SelectIndex(i)
			require.NoError(t, err, "walk %d step %d", walk, step)
			want, ok := g.Node(visited[step])
			require.True(t, ok)
			assert.Equal(t, want, n)
		}
	}
}
