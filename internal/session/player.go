package session

import "eechess/internal/session/message"

// PlayerSession representa um participante conectado. O ID é estável e
// sobrevive a reconexões; a conexão (conn) é trocada quando o participante
// volta, nunca o ID.
type PlayerSession struct {
	ID   string
	conn message.Sender
}

// NewPlayerSession cria a sessão de um participante recém-conectado.
func NewPlayerSession(id string, conn message.Sender) *PlayerSession {
	return &PlayerSession{
		ID:   id,
		conn: conn,
	}
}
