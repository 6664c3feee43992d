package broadcast

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Dosada05/league-portal/models"
)

type Channel string

const (
	ChannelTeams             Channel = "teams"
	ChannelClubs             Channel = "clubs"
	ChannelPlayers           Channel = "players"
	ChannelMatches           Channel = "matches"
	ChannelClipStats         Channel = "clip-stats"
	ChannelPlayerStatChanged Channel = "player-stat-changed"
	ChannelPlayoffs          Channel = "playoffs"
)

// AllChannels is the default subscription.
var AllChannels = []Channel{
	ChannelTeams,
	ChannelClubs,
	ChannelPlayers,
	ChannelMatches,
	ChannelClipStats,
	ChannelPlayerStatChanged,
	ChannelPlayoffs,
}

const (
	TypeTeamsUpdate        = "teamsUpdate"
	TypeClubsUpdate        = "clubsUpdate"
	TypePlayersUpdate      = "playersUpdate"
	TypeMatchesUpdate      = "matchesUpdate"
	TypeStatsUpdate        = "statsUpdate"
	TypePlayerStatsChanged = "playerStatsChanged"
	TypeBracketUpdate      = "bracketUpdate"
)

// Message is the envelope of every frame sent to a session. Version is zero
// for notifications that do not replace state. Epoch names the server run
// the version belongs to; versions of different epochs do not compare.
type Message struct {
	Type    string          `json:"type"`
	Channel Channel         `json:"channel"`
	Epoch   string          `json:"epoch,omitempty"`
	Version uint64          `json:"version,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

func Encode(epoch string, channel Channel, msgType string, version uint64, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
	}
	return json.Marshal(Message{Type: msgType, Channel: channel, Epoch: epoch, Version: version, Payload: body})
}

func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// ChannelForKind maps a store collection onto the channel that carries its
// snapshots.
func ChannelForKind(kind models.Kind) (Channel, string, bool) {
	switch kind {
	case models.KindTeams:
		return ChannelTeams, TypeTeamsUpdate, true
	case models.KindClubs:
		return ChannelClubs, TypeClubsUpdate, true
	case models.KindPlayers:
		return ChannelPlayers, TypePlayersUpdate, true
	case models.KindMatches:
		return ChannelMatches, TypeMatchesUpdate, true
	case models.KindClips:
		return ChannelClipStats, TypeStatsUpdate, true
	case models.KindPlayoffs:
		return ChannelPlayoffs, TypeBracketUpdate, true
	}
	return "", "", false
}

// ParseChannels reads a comma separated subscription list. An empty list
// subscribes to everything.
func ParseChannels(raw string) ([]Channel, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AllChannels, nil
	}
	seen := make(map[Channel]bool)
	var out []Channel
	for _, part := range strings.Split(raw, ",") {
		ch := Channel(strings.TrimSpace(part))
		if ch == "" || seen[ch] {
			continue
		}
		if !known(ch) {
			return nil, fmt.Errorf("unknown channel %q", ch)
		}
		seen[ch] = true
		out = append(out, ch)
	}
	if len(out) == 0 {
		return AllChannels, nil
	}
	return out, nil
}

func known(ch Channel) bool {
	for _, c := range AllChannels {
		if c == ch {
			return true
		}
	}
	return false
}
