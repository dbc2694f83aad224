package session

// Testes funcionais de ponta a ponta: servidor websocket real, clientes
// gorilla reais, protocolo completo.

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eechess/internal/network"
	"eechess/internal/session/message"
)

const readTimeout = 2 * time.Second

func startTestServer(t *testing.T, reconnectTimeout time.Duration) (*httptest.Server, *GameManager) {
	t.Helper()
	m := NewGameManager(reconnectTimeout, nil)
	srv := network.NewServer(m)
	srv.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.ServeWS)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, m
}

func wsDial(t *testing.T, ts *httptest.Server, playerID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?playerId=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "dial failed")
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readServerMessage(t *testing.T, conn *websocket.Conn) network.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	var msg network.Message
	require.NoError(t, conn.ReadJSON(&msg), "read failed")
	return msg
}

func sendClientMessage(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	msg := network.Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}
	require.NoError(t, conn.WriteJSON(msg), "write failed")
}

func decodeAs[T any](t *testing.T, msg network.Message) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(msg.Payload, &out))
	return out
}

func sendMove(t *testing.T, conn *websocket.Conn, from, to string) {
	t.Helper()
	sendClientMessage(t, conn, message.TypeMakeMove, map[string]any{
		"move": map[string]string{"from": from, "to": to},
	})
}

// startMatch pareia dois clientes e retorna as conexões já separadas por cor.
// A ordem de chegada dos dois joinGame na goroutine do hub decide quem joga
// de brancas, então o teste descobre em vez de assumir.
func startMatch(t *testing.T, ts *httptest.Server) (white, black *websocket.Conn, gameID string) {
	t.Helper()
	c1 := wsDial(t, ts, "alice")
	c2 := wsDial(t, ts, "bob")

	sendClientMessage(t, c1, message.TypeJoinGame, nil)
	sendClientMessage(t, c2, message.TypeJoinGame, nil)

	init1 := readServerMessage(t, c1)
	init2 := readServerMessage(t, c2)
	require.Equal(t, message.TypeInitGame, init1.Type)
	require.Equal(t, message.TypeInitGame, init2.Type)

	p1 := decodeAs[message.InitGamePayload](t, init1)
	p2 := decodeAs[message.InitGamePayload](t, init2)
	require.NotEqual(t, p1.Color, p2.Color)
	require.Equal(t, p1.GameID, p2.GameID)

	if p1.Color == "white" {
		return c1, c2, p1.GameID
	}
	return c2, c1, p1.GameID
}

func TestEndToEndMatch(t *testing.T) {
	ts, _ := startTestServer(t, time.Second)
	white, black, _ := startMatch(t, ts)

	// As brancas jogam; só as pretas recebem a notificação.
	sendMove(t, white, "e2", "e4")
	moveForBlack := readServerMessage(t, black)
	require.Equal(t, message.TypeMove, moveForBlack.Type)

	// As pretas respondem; a PRÓXIMA mensagem das brancas é a jogada das
	// pretas, provando que a própria jogada nunca lhes foi reenviada.
	sendMove(t, black, "e7", "e5")
	moveForWhite := readServerMessage(t, white)
	require.Equal(t, message.TypeMove, moveForWhite.Type)
	mv := decodeAs[map[string]string](t, moveForWhite)
	assert.Equal(t, "e7", mv["from"])
	assert.Equal(t, "e5", mv["to"])

	// As brancas desistem; os dois recebem gameOver com as pretas vencendo.
	sendClientMessage(t, white, message.TypeResign, nil)
	for _, conn := range []*websocket.Conn{white, black} {
		over := readServerMessage(t, conn)
		require.Equal(t, message.TypeGameOver, over.Type)
		payload := decodeAs[message.GameOverPayload](t, over)
		require.NotNil(t, payload.Winner)
		assert.Equal(t, "black", *payload.Winner)
	}
}

func TestEndToEndSpectator(t *testing.T) {
	ts, _ := startTestServer(t, time.Second)
	white, _, gameID := startMatch(t, ts)

	carol := wsDial(t, ts, "carol")
	sendClientMessage(t, carol, message.TypeJoinGame, map[string]string{"gameId": gameID})

	state := readServerMessage(t, carol)
	require.Equal(t, message.TypeGameState, state.Type)
	payload := decodeAs[message.GameStatePayload](t, state)
	assert.Equal(t, gameID, payload.GameID)
	assert.Equal(t, "w", payload.Turn)
	assert.NotEmpty(t, payload.FEN)

	sendMove(t, white, "e2", "e4")
	moveForCarol := readServerMessage(t, carol)
	assert.Equal(t, message.TypeMove, moveForCarol.Type)
}

func TestEndToEndReconnect(t *testing.T) {
	ts, m := startTestServer(t, 5*time.Second)
	white, _, gameID := startMatch(t, ts)

	// As brancas caem. Espera o servidor perceber e abrir o prazo.
	white.Close()
	var awaitingID string
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		for id := range m.reconnecting {
			awaitingID = id
			return true
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	// Volta com o mesmo identificador e pede reconexão.
	back := wsDial(t, ts, awaitingID)
	sendClientMessage(t, back, message.TypeReconnect, nil)

	snapshot := readServerMessage(t, back)
	require.Equal(t, message.TypeInitGame, snapshot.Type)
	payload := decodeAs[message.InitGamePayload](t, snapshot)
	assert.Equal(t, "white", payload.Color)
	assert.Equal(t, gameID, payload.GameID)
	assert.NotEmpty(t, payload.FEN)
}
