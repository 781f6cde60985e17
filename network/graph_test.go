package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
)

func TestGraph_AddFork_Idempotent(t *testing.T) {
	g := NewGraph()
	pos := geometry.Point{Lat: 2, Lon: 3}

	first := g.AddFork(pos, "main-street", 0.4, "")
	second := g.AddFork(pos, "side-street", 0.9, "")

	assert.Equal(t, first, second, "same coordinate must yield the same fork")
	assert.Equal(t, 1, g.Stats().Forks)

	fork, ok := g.Fork(first)
	require.True(t, ok)
	assert.Equal(t, "main-street", fork.Street, "first street keeps the fork")
	assert.Equal(t, 0.4, fork.T)
}

func TestGraph_AddFork_FillsMissingAttributes(t *testing.T) {
	g := NewGraph()
	pos := geometry.Point{Lat: 1, Lon: 1}

	// An intersection fork arrives first without a street tag, then a
	// projection lands on the same coordinate, then a producer connects.
	id := g.AddFork(pos, "", 0, "")
	g.AddFork(pos, "main-street", 0.0, "")
	g.AddFork(pos, "ignored-street", 0.5, "heat-plant")

	fork, ok := g.Fork(id)
	require.True(t, ok)
	assert.Equal(t, "main-street", fork.Street)
	assert.Zero(t, fork.T)
	assert.Equal(t, "heat-plant", fork.Bus)
}

func TestGraph_AddFork_DistinctCoordinates(t *testing.T) {
	g := NewGraph()

	a := g.AddFork(geometry.Point{Lat: 0, Lon: 0}, "", 0, "")
	b := g.AddFork(geometry.Point{Lat: 0, Lon: 1}, "", 0, "")

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, g.Stats().Forks)
	assert.Equal(t, NodeID{Kind: KindFork, Num: 0}, a)
	assert.Equal(t, NodeID{Kind: KindFork, Num: 1}, b)
}

func TestGraph_AddPipe_SequentialIDs(t *testing.T) {
	g := NewGraph()
	a := g.AddFork(geometry.Point{Lat: 0, Lon: 0}, "", 0, "")
	b := g.AddFork(geometry.Point{Lat: 0, Lon: 1}, "", 0, "")

	first := g.AddPipe(a, b, 1, "main-street")
	second := g.AddPipe(b, a, 1, "main-street")

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestGraph_ForksOnStreet(t *testing.T) {
	g := NewGraph()
	g.AddFork(geometry.Point{Lat: 0, Lon: 1}, "main-street", 0.1, "")
	g.AddFork(geometry.Point{Lat: 0, Lon: 2}, "side-street", 0.5, "")
	g.AddFork(geometry.Point{Lat: 0, Lon: 3}, "main-street", 0.8, "")

	forks := g.ForksOnStreet("main-street")

	require.Len(t, forks, 2)
	assert.Equal(t, 0.1, forks[0].T)
	assert.Equal(t, 0.8, forks[1].T)
}

func TestGraph_Normalize_ClosesGaps(t *testing.T) {
	// Simulate a reduced graph: consumer numbering has a hole and pipes
	// still point at the old identifiers.
	g := NewGraph()
	fork := g.AddFork(geometry.Point{Lat: 0, Lon: 5}, "main-street", 0.5, "")

	g.ReplaceConsumers([]Consumer{
		{ID: NodeID{Kind: KindConsumer, Num: 3}, Label: "house-1", Pos: geometry.Point{Lat: 3, Lon: 5}, Demand: 1},
		{ID: NodeID{Kind: KindConsumer, Num: 7}, Label: "house-2", Pos: geometry.Point{Lat: 4, Lon: 5}, Demand: 2},
	})
	g.ReplacePipes([]Pipe{
		{ID: 9, From: NodeID{Kind: KindConsumer, Num: 3}, To: fork, Length: 3},
		{ID: 12, From: NodeID{Kind: KindConsumer, Num: 7}, To: fork, Length: 4},
	})

	require.NoError(t, g.Normalize())

	consumers := g.Consumers()
	assert.Equal(t, NodeID{Kind: KindConsumer, Num: 0}, consumers[0].ID)
	assert.Equal(t, NodeID{Kind: KindConsumer, Num: 1}, consumers[1].ID)

	pipes := g.Pipes()
	assert.Equal(t, 1, pipes[0].ID)
	assert.Equal(t, 2, pipes[1].ID)
	assert.Equal(t, NodeID{Kind: KindConsumer, Num: 0}, pipes[0].From)
	assert.Equal(t, NodeID{Kind: KindConsumer, Num: 1}, pipes[1].From)

	// Fork index survives renumbering.
	id, ok := g.ForkAt(geometry.Point{Lat: 0, Lon: 5})
	require.True(t, ok)
	assert.Equal(t, NodeID{Kind: KindFork, Num: 0}, id)
}

func TestGraph_Normalize_Idempotent(t *testing.T) {
	g := NewGraph()
	a := g.AddFork(geometry.Point{Lat: 0, Lon: 0}, "s", 0, "")
	b := g.AddFork(geometry.Point{Lat: 0, Lon: 1}, "s", 1, "")
	g.AddPipe(a, b, 1, "s")

	require.NoError(t, g.Normalize())
	before := g.Pipes()
	require.NoError(t, g.Normalize())
	after := g.Pipes()

	assert.Equal(t, before, after)
}

func TestGraph_Normalize_OrphanedPipe(t *testing.T) {
	g := NewGraph()
	fork := g.AddFork(geometry.Point{Lat: 0, Lon: 0}, "s", 0, "")
	g.ReplacePipes([]Pipe{
		{ID: 1, From: fork, To: NodeID{Kind: KindConsumer, Num: 9}, Length: 2},
	})

	err := g.Normalize()

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrOrphanedPipe)
	assert.True(t, errors.IsTopology(err))
	assert.Contains(t, err.Error(), "consumers-9")
}

func TestGraph_Check_Valid(t *testing.T) {
	g := NewGraph()
	fork := g.AddFork(geometry.Point{Lat: 0, Lon: 5}, "main-street", 0.5, "")
	consumer := g.AddConsumer("house-1", geometry.Point{Lat: 3, Lon: 5}, 1, "main-street")
	producer := g.AddProducer("heat-plant", geometry.Point{Lat: 1, Lon: 1})
	g.AddPipe(consumer, fork, 3, "main-street")
	g.AddPipe(producer, fork, 4.1, "main-street")

	require.NoError(t, g.Check())
}

func TestGraph_Check_IsolatedConsumer(t *testing.T) {
	g := NewGraph()
	fork := g.AddFork(geometry.Point{Lat: 0, Lon: 5}, "main-street", 0.5, "")
	g.AddConsumer("house-1", geometry.Point{Lat: 3, Lon: 5}, 1, "main-street")
	producer := g.AddProducer("heat-plant", geometry.Point{Lat: 1, Lon: 1})
	g.AddPipe(producer, fork, 4.1, "main-street")

	err := g.Check()

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIsolatedNode)
	assert.Contains(t, err.Error(), "house-1")
}

func TestGraph_Check_IsolatedProducer(t *testing.T) {
	g := NewGraph()
	g.AddProducer("heat-plant", geometry.Point{Lat: 1, Lon: 1})

	err := g.Check()

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIsolatedNode)
	assert.Contains(t, err.Error(), "heat-plant")
}

func TestGraph_Check_OrphanedPipe(t *testing.T) {
	g := NewGraph()
	fork := g.AddFork(geometry.Point{Lat: 0, Lon: 0}, "s", 0, "")
	g.ReplacePipes([]Pipe{
		{ID: 1, From: fork, To: NodeID{Kind: KindFork, Num: 44}, Length: 1},
	})

	err := g.Check()

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrOrphanedPipe)
}

func TestGraph_Clear(t *testing.T) {
	g := NewGraph()
	g.AddFork(geometry.Point{Lat: 0, Lon: 0}, "s", 0, "")
	g.AddConsumer("house-1", geometry.Point{Lat: 1, Lon: 1}, 1, "s")

	g.Clear()

	assert.Equal(t, Stats{}, g.Stats())
	_, ok := g.ForkAt(geometry.Point{Lat: 0, Lon: 0})
	assert.False(t, ok)

	// A fresh fork starts numbering from zero again.
	id := g.AddFork(geometry.Point{Lat: 5, Lon: 5}, "s", 0, "")
	assert.Equal(t, NodeID{Kind: KindFork, Num: 0}, id)
}
