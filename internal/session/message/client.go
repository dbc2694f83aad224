package message

// Mensagens no sentido servidor -> cliente. O conjunto é o contrato do
// protocolo: initGame, gameState, move e gameOver.

import (
	"encoding/json"

	"eechess/internal/game/board"
	"eechess/internal/network"
)

const (
	TypeInitGame  = "initGame"
	TypeGameState = "gameState"
	TypeMove      = "move"
	TypeGameOver  = "gameOver"
)

// InitGamePayload informa a um assento sua cor e o id da sessão. Em uma
// reconexão carrega também o snapshot completo (fen + histórico).
type InitGamePayload struct {
	Color  string       `json:"color"`
	GameID string       `json:"gameId"`
	FEN    string       `json:"fen,omitempty"`
	Moves  []board.Move `json:"moves,omitempty"`
}

// GameStatePayload é o snapshot completo enviado a um novo espectador.
type GameStatePayload struct {
	Moves  []board.Move `json:"moves"`
	Turn   string       `json:"turn"`
	FEN    string       `json:"fen"`
	GameID string       `json:"gameId"`
}

// GameOverPayload carrega o vencedor; nil significa empate.
type GameOverPayload struct {
	Winner *string `json:"winner"`
}

// CreateInitGameMessage é enviada uma vez por assento na criação da sessão.
func CreateInitGameMessage(color, gameID string) network.Message {
	return mustMessage(TypeInitGame, InitGamePayload{
		Color:  color,
		GameID: gameID,
	})
}

// CreateReconnectSnapshotMessage é a initGame de reconexão: mesma forma, mas
// com o estado completo para o cliente reconstruir o tabuleiro.
func CreateReconnectSnapshotMessage(color, gameID, fen string, moves []board.Move) network.Message {
	return mustMessage(TypeInitGame, InitGamePayload{
		Color:  color,
		GameID: gameID,
		FEN:    fen,
		Moves:  moves,
	})
}

// CreateGameStateMessage traz um espectador recém-chegado ao estado corrente.
func CreateGameStateMessage(gameID, fen, turn string, moves []board.Move) network.Message {
	return mustMessage(TypeGameState, GameStatePayload{
		Moves:  moves,
		Turn:   turn,
		FEN:    fen,
		GameID: gameID,
	})
}

// CreateMoveMessage notifica o oponente e os espectadores de uma jogada aceita.
func CreateMoveMessage(m board.Move) network.Message {
	return mustMessage(TypeMove, m)
}

// CreateGameOverMessage anuncia o resultado. winner vazio vira null (empate).
func CreateGameOverMessage(winner string) network.Message {
	payload := GameOverPayload{}
	if winner != "" {
		payload.Winner = &winner
	}
	return mustMessage(TypeGameOver, payload)
}

func mustMessage(msgType string, payload any) network.Message {
	// Os payloads daqui são structs nossos; um erro de marshal seria um bug
	// de programação, não um estado alcançável.
	payloadBytes, _ := json.Marshal(payload)
	return network.Message{
		Type:    msgType,
		Payload: payloadBytes,
	}
}
