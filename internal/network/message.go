package network

import "encoding/json"

// Message é o envelope padrão para toda a comunicação, nos dois sentidos.
// O Type roteia a mensagem; o Payload fica em JSON bruto para ser
// decodificado por quem conhece o tipo.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
