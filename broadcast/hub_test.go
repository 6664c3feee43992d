package broadcast

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, opts ...HubOption) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "session queue closed")
		msg, err := Decode(data)
		require.NoError(t, err)
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_DeliversOnlyToSubscribers(t *testing.T) {
	hub := startHub(t)
	teams := NewClient(hub, nil, []Channel{ChannelTeams})
	clips := NewClient(hub, nil, []Channel{ChannelClipStats})
	require.True(t, hub.Register(teams))
	require.True(t, hub.Register(clips))

	hub.Publish(ChannelTeams, TypeTeamsUpdate, 1, []string{"a"})

	msg := receive(t, teams)
	assert.Equal(t, TypeTeamsUpdate, msg.Type)
	assert.Equal(t, ChannelTeams, msg.Channel)
	assert.Equal(t, uint64(1), msg.Version)
	assert.JSONEq(t, `["a"]`, string(msg.Payload))
	assertNothing(t, clips)
}

func TestHub_DropsStaleSnapshots(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, []Channel{ChannelMatches})
	require.True(t, hub.Register(c))

	hub.Publish(ChannelMatches, TypeMatchesUpdate, 5, []int{5})
	hub.Publish(ChannelMatches, TypeMatchesUpdate, 4, []int{4})
	hub.Publish(ChannelMatches, TypeMatchesUpdate, 5, []int{5})
	hub.Publish(ChannelMatches, TypeMatchesUpdate, 6, []int{6})

	assert.Equal(t, uint64(5), receive(t, c).Version)
	assert.Equal(t, uint64(6), receive(t, c).Version)
	assertNothing(t, c)
}

func TestHub_NotificationsAreNotVersioned(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, []Channel{ChannelPlayerStatChanged})
	require.True(t, hub.Register(c))

	hub.Publish(ChannelPlayerStatChanged, TypePlayerStatsChanged, 0, map[string]any{"value": 1})
	hub.Publish(ChannelPlayerStatChanged, TypePlayerStatsChanged, 0, map[string]any{"value": 2})

	assert.JSONEq(t, `{"value":1}`, string(receive(t, c).Payload))
	assert.JSONEq(t, `{"value":2}`, string(receive(t, c).Payload))
}

func TestHub_SlowSessionIsDisconnected(t *testing.T) {
	hub := startHub(t)
	slow := NewClient(hub, nil, []Channel{ChannelClipStats})
	require.True(t, hub.Register(slow))

	for v := uint64(1); v <= SendBuffer+1; v++ {
		hub.Publish(ChannelClipStats, TypeStatsUpdate, v, v)
	}

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	received := 0
	for range slow.Send {
		received++
	}
	assert.Equal(t, SendBuffer, received)
}

func TestHub_UnregisterClosesQueue(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, AllChannels)
	require.True(t, hub.Register(c))
	assert.Equal(t, 1, hub.Subscribers(ChannelPlayoffs))

	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, c.Enqueue([]byte("late")))
}

func TestHub_RegisterAfterStop(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hub.Run(ctx), context.Canceled)

	c := NewClient(hub, nil, AllChannels)
	assert.False(t, hub.Register(c))
	hub.Unregister(c)
}

func TestParseChannels(t *testing.T) {
	all, err := ParseChannels("")
	require.NoError(t, err)
	assert.Equal(t, AllChannels, all)

	got, err := ParseChannels("teams, clip-stats,teams")
	require.NoError(t, err)
	assert.Equal(t, []Channel{ChannelTeams, ChannelClipStats}, got)

	_, err = ParseChannels("teams,scores")
	assert.Error(t, err)
}

func TestHub_StampsEpoch(t *testing.T) {
	hub := startHub(t, WithEpoch("run-2"))
	c := NewClient(hub, nil, []Channel{ChannelTeams})
	require.True(t, hub.Register(c))

	hub.Publish(ChannelTeams, TypeTeamsUpdate, 1, []string{"a"})
	msg := receive(t, c)
	assert.Equal(t, "run-2", msg.Epoch)
	assert.EqualValues(t, 1, msg.Version)
}
