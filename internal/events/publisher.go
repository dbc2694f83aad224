package events

// Feed de eventos de ciclo de vida das partidas. Consumidores externos
// (painéis, bots, análise) assinam os subjects no broker; o motor de sessões
// só publica e nunca espera resposta.

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"
)

const (
	subjectMatchCreated = "eechess.match.created"
	subjectGameOver     = "eechess.game.over"
)

// Publisher recebe os eventos de ciclo de vida emitidos pelo GameManager.
type Publisher interface {
	MatchCreated(gameID, whiteID, blackID string)
	GameOver(gameID, winner string)
}

// MatchCreatedEvent é publicado quando dois participantes são pareados.
type MatchCreatedEvent struct {
	GameID  string `json:"gameId"`
	WhiteID string `json:"whiteId"`
	BlackID string `json:"blackId"`
}

// GameOverEvent é publicado quando uma partida termina, por qualquer motivo.
// Winner vazio significa empate ou abandono.
type GameOverEvent struct {
	GameID string `json:"gameId"`
	Winner string `json:"winner,omitempty"`
}

// NATSPublisher publica os eventos como JSON em subjects NATS.
type NATSPublisher struct {
	nc *nats.Conn
}

// NewNATSPublisher conecta ao broker no endereço dado.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) MatchCreated(gameID, whiteID, blackID string) {
	p.publish(subjectMatchCreated, MatchCreatedEvent{
		GameID:  gameID,
		WhiteID: whiteID,
		BlackID: blackID,
	})
}

func (p *NATSPublisher) GameOver(gameID, winner string) {
	p.publish(subjectGameOver, GameOverEvent{
		GameID: gameID,
		Winner: winner,
	})
}

// Close drena a conexão, entregando o que ainda estiver no buffer.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

// publish nunca propaga erro: o feed é melhor-esforço e uma falha de broker
// não pode afetar nenhuma sessão.
func (p *NATSPublisher) publish(subject string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Events] marshal %s: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		log.Printf("[Events] publish %s: %v", subject, err)
	}
}

// NopPublisher é usado quando nenhum broker está configurado.
type NopPublisher struct{}

func (NopPublisher) MatchCreated(gameID, whiteID, blackID string) {}
func (NopPublisher) GameOver(gameID, winner string)               {}
