package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eechess/internal/network"
)

func envelope(t *testing.T, msgType string, payload any) network.Message {
	t.Helper()
	msg := network.Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}
	return msg
}

func TestParseJoinGameWithoutPayload(t *testing.T) {
	parsed, err := ParseClientMessage(envelope(t, TypeJoinGame, nil))

	require.NoError(t, err)
	assert.Equal(t, TypeJoinGame, parsed.Type)
	assert.Empty(t, parsed.GameID)
}

func TestParseJoinGameWithGameID(t *testing.T) {
	parsed, err := ParseClientMessage(envelope(t, TypeJoinGame, map[string]any{"gameId": "abc123"}))

	require.NoError(t, err)
	assert.Equal(t, "abc123", parsed.GameID)
}

func TestParseMakeMove(t *testing.T) {
	parsed, err := ParseClientMessage(envelope(t, TypeMakeMove, map[string]any{
		"move": map[string]any{"from": "e2", "to": "e4"},
	}))

	require.NoError(t, err)
	assert.Equal(t, "e2", parsed.Move.From)
	assert.Equal(t, "e4", parsed.Move.To)
	assert.Empty(t, parsed.Move.Promotion)
}

func TestParseMakeMoveWithPromotion(t *testing.T) {
	parsed, err := ParseClientMessage(envelope(t, TypeMakeMove, map[string]any{
		"move": map[string]any{"from": "e7", "to": "e8", "promotion": "q"},
	}))

	require.NoError(t, err)
	assert.Equal(t, "q", parsed.Move.Promotion)
}

func TestParseMakeMoveWithoutMoveFails(t *testing.T) {
	_, err := ParseClientMessage(envelope(t, TypeMakeMove, map[string]any{}))
	assert.Error(t, err)
}

func TestParseMakeMoveWithoutPayloadFails(t *testing.T) {
	_, err := ParseClientMessage(envelope(t, TypeMakeMove, nil))
	assert.Error(t, err)
}

func TestParseMakeMoveWithWrongFieldTypesFails(t *testing.T) {
	_, err := ParseClientMessage(envelope(t, TypeMakeMove, map[string]any{
		"move": map[string]any{"from": 12, "to": "e4"},
	}))
	assert.Error(t, err)
}

func TestParseResignAndReconnect(t *testing.T) {
	for _, msgType := range []string{TypeResign, TypeReconnect} {
		parsed, err := ParseClientMessage(envelope(t, msgType, nil))
		require.NoError(t, err)
		assert.Equal(t, msgType, parsed.Type)
	}
}

func TestParseUnknownTypeFails(t *testing.T) {
	_, err := ParseClientMessage(envelope(t, "launchMissiles", nil))
	assert.Error(t, err)
}

func TestCreateGameOverMessageEncodesDrawAsNull(t *testing.T) {
	msg := CreateGameOverMessage("")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	winner, present := payload["winner"]
	assert.True(t, present)
	assert.Nil(t, winner)
}

func TestCreateGameOverMessageEncodesWinner(t *testing.T) {
	msg := CreateGameOverMessage("white")

	var payload GameOverPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	require.NotNil(t, payload.Winner)
	assert.Equal(t, "white", *payload.Winner)
}
