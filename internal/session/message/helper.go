package message

import "eechess/internal/network"

// Sender é qualquer destino capaz de receber uma mensagem sem bloquear.
// Desacopla o motor de sessões do network.Client concreto e permite que os
// testes capturem as mensagens emitidas.
type Sender interface {
	// TrySend enfileira a mensagem e retorna false se ela foi descartada
	// (destino lento ou já fechado). O chamador nunca deve re-tentar.
	TrySend(msg network.Message) bool
}
