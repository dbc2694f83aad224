package message

// Validação das mensagens cliente -> servidor. O envelope é checado contra um
// esquema fechado antes de qualquer despacho: mensagem malformada é
// descartada e a conexão permanece aberta.

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"eechess/internal/game/board"
	"eechess/internal/network"
)

const (
	TypeJoinGame  = "joinGame"
	TypeMakeMove  = "makeMove"
	TypeResign    = "resign"
	TypeReconnect = "reconnect"
)

// clientMessageSchema é a união fechada dos tipos de mensagem que o cliente
// pode enviar. Campos desconhecidos são tolerados, formas erradas não.
const clientMessageSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"oneOf": [
		{
			"type": "object",
			"required": ["type"],
			"properties": {
				"type": {"const": "joinGame"},
				"payload": {
					"type": "object",
					"properties": {
						"gameId": {"type": "string"}
					}
				}
			}
		},
		{
			"type": "object",
			"required": ["type", "payload"],
			"properties": {
				"type": {"const": "makeMove"},
				"payload": {
					"type": "object",
					"required": ["move"],
					"properties": {
						"move": {
							"type": "object",
							"required": ["from", "to"],
							"properties": {
								"from": {"type": "string"},
								"to": {"type": "string"},
								"promotion": {"type": "string"}
							}
						}
					}
				}
			}
		},
		{
			"type": "object",
			"required": ["type"],
			"properties": {
				"type": {"const": "resign"}
			}
		},
		{
			"type": "object",
			"required": ["type"],
			"properties": {
				"type": {"const": "reconnect"}
			}
		}
	]
}`

var compiledClientSchema = jsonschema.MustCompileString("eechess://client-messages.json", clientMessageSchema)

// ClientMessage é a união tipada das mensagens de entrada já validadas.
// Apenas o campo correspondente ao Type está preenchido.
type ClientMessage struct {
	Type   string
	GameID string     // joinGame: vazio significa matchmaking comum
	Move   board.Move // makeMove
}

type joinGamePayload struct {
	GameID string `json:"gameId"`
}

type makeMovePayload struct {
	Move board.Move `json:"move"`
}

// ParseClientMessage valida o envelope contra o esquema e o decodifica para a
// união tipada. Qualquer falha aqui é um erro de protocolo do cliente.
func ParseClientMessage(msg network.Message) (*ClientMessage, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if err := compiledClientSchema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	out := &ClientMessage{Type: msg.Type}
	switch msg.Type {
	case TypeJoinGame:
		if len(msg.Payload) > 0 {
			var p joinGamePayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				return nil, fmt.Errorf("joinGame payload: %w", err)
			}
			out.GameID = p.GameID
		}
	case TypeMakeMove:
		var p makeMovePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("makeMove payload: %w", err)
		}
		out.Move = p.Move
	case TypeResign, TypeReconnect:
		// Sem payload.
	default:
		// O esquema já garante que não chegamos aqui, mas o switch é a
		// união fechada: tipo novo exige caso novo.
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return out, nil
}
