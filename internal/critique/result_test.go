package critique

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/perspective"
)

func TestNewResultSetNormalizes(t *testing.T) {
	set := NewResultSet("a1", map[string]api.PerspectivePayload{
		"science":   {Status: "ok", Content: "fine"},
		"economics": {Status: "error", Message: "  "},
		"ethics":    {Status: "pending"},
		"astrology": {Status: "ok", Content: "dropped"},
	})

	require.Equal(t, 4, set.Len())
	assert.Equal(t, "a1", set.AttemptID())

	sci, _ := set.Get(perspective.Science)
	assert.True(t, sci.OK())
	assert.Equal(t, "fine", sci.Text())

	econ, _ := set.Get(perspective.Economics)
	assert.Equal(t, MsgUnavailable, econ.Message)

	soc, ok := set.Get(perspective.Sociology)
	require.True(t, ok)
	assert.Equal(t, StatusError, soc.Status)
	assert.Equal(t, MsgUnavailable, soc.Message)

	eth, _ := set.Get(perspective.Ethics)
	assert.False(t, eth.OK())
	assert.Contains(t, eth.Message, "pending")

	_, ok = set.Get(perspective.Key("astrology"))
	assert.False(t, ok)
	assert.Equal(t, []perspective.Key{perspective.Economics, perspective.Sociology, perspective.Ethics}, set.Failed())
}

func TestResultSetWireRoundTrip(t *testing.T) {
	set := NewResultSet("a1", allOK("").Analysis)
	wire := set.Wire()
	require.Len(t, wire, 4)
	assert.Equal(t, api.PerspectivePayload{Status: "ok", Content: "## ethics critique"}, wire["ethics"])
}

func TestNilResultSet(t *testing.T) {
	var set *ResultSet
	_, ok := set.Get(perspective.Science)
	assert.False(t, ok)
	assert.Zero(t, set.Len())
	assert.Nil(t, set.Wire())
	assert.Empty(t, set.Failed())
}

func TestSelection(t *testing.T) {
	var zero Selection
	assert.Equal(t, perspective.Science, zero.Active())

	sel := NewSelection()
	sel.Select(perspective.Ethics)
	assert.Equal(t, perspective.Ethics, sel.Active())

	_, ok := sel.Project(nil)
	assert.False(t, ok)

	res, ok := sel.Project(NewResultSet("a1", allOK("").Analysis))
	require.True(t, ok)
	assert.Equal(t, "## ethics critique", res.Content)

	sel.Reset()
	assert.Equal(t, perspective.Science, sel.Active())

	assert.Panics(t, func() { sel.Select("astrology") })
}
