package network

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L4rsG/SESMG/errors"
)

func TestNodeID_String(t *testing.T) {
	tests := []struct {
		id       NodeID
		expected string
	}{
		{NodeID{Kind: KindFork, Num: 0}, "forks-0"},
		{NodeID{Kind: KindConsumer, Num: 7}, "consumers-7"},
		{NodeID{Kind: KindProducer, Num: 2}, "producers-2"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.id.String())
		})
	}
}

func TestParseNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    NodeID
		wantErr bool
	}{
		{"fork", "forks-3", NodeID{Kind: KindFork, Num: 3}, false},
		{"consumer", "consumers-0", NodeID{Kind: KindConsumer, Num: 0}, false},
		{"producer", "producers-12", NodeID{Kind: KindProducer, Num: 12}, false},
		{"unknown kind", "valves-1", NodeID{}, true},
		{"no number", "forks-", NodeID{}, true},
		{"no separator", "forks", NodeID{}, true},
		{"negative number", "forks--1", NodeID{}, true},
		{"empty", "", NodeID{}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseNodeID(test.input)
			if test.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestNodeID_RoundTrip(t *testing.T) {
	for _, kind := range []NodeKind{KindFork, KindConsumer, KindProducer} {
		id := NodeID{Kind: kind, Num: 5}
		parsed, err := ParseNodeID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestNodeID_JSON(t *testing.T) {
	id := NodeID{Kind: KindFork, Num: 4}

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"forks-4"`, string(data))

	var back NodeID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back)
}

func TestNodeKind_IsValid(t *testing.T) {
	assert.True(t, KindFork.IsValid())
	assert.True(t, KindConsumer.IsValid())
	assert.True(t, KindProducer.IsValid())
	assert.False(t, NodeKind("valves").IsValid())
}

func TestNodeID_IsZero(t *testing.T) {
	assert.True(t, NodeID{}.IsZero())
	assert.False(t, NodeID{Kind: KindFork}.IsZero())
}
