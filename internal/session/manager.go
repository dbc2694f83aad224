package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"eechess/internal/events"
	"eechess/internal/network"
	"eechess/internal/session/message"
)

// pendingReturn é uma entrada do registro de reconexão: a partida que aguarda
// o participante e o timer do prazo. A REMOÇÃO da entrada é o ponto de
// exclusão mútua entre reconexão e timeout: quem a encontrar primeiro age,
// quem chegar depois encontra o registro vazio e desiste.
type pendingReturn struct {
	game  *Game
	timer *time.Timer
}

// GameManager é o diretório de sessões e o matchmaker: o conjunto de
// participantes conectados, a vaga única de pareamento, as partidas vivas e o
// registro de reconexão. Implementa network.EventHandler; os eventos chegam
// serializados pela goroutine do Hub, mas os timers de reconexão disparam em
// goroutines próprias, então toda mutação passa pela trava.
type GameManager struct {
	mu sync.Mutex

	// conexão viva -> participante. Chaveado pela conexão porque é ela que o
	// Hub entrega nos eventos; o id estável vive dentro da sessão.
	sessions map[message.Sender]*PlayerSession

	// A vaga única de pareamento. Nil quando ninguém espera.
	pending *PlayerSession

	// Partidas vivas, por id de sessão.
	games map[string]*Game

	// Registro de reconexão: id do participante -> partida que o aguarda.
	// Invariante: existe entrada se e só se a partida correspondente está em
	// awaiting_reconnect para esse assento.
	reconnecting map[string]*pendingReturn

	reconnectTimeout time.Duration
	publisher        events.Publisher
}

// NewGameManager cria o manager. publisher nil desativa o feed de eventos.
func NewGameManager(reconnectTimeout time.Duration, publisher events.Publisher) *GameManager {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &GameManager{
		sessions:         make(map[message.Sender]*PlayerSession),
		games:            make(map[string]*Game),
		reconnecting:     make(map[string]*pendingReturn),
		reconnectTimeout: reconnectTimeout,
		publisher:        publisher,
	}
}

// --- Implementação de network.EventHandler ---

func (m *GameManager) OnConnect(c *network.Client) {
	m.addParticipant(c.PlayerID(), c)
}

func (m *GameManager) OnDisconnect(c *network.Client) {
	m.removeParticipant(c)
}

func (m *GameManager) OnMessage(c *network.Client, msg network.Message) {
	m.dispatch(c, msg)
}

// addParticipant registra uma conexão autenticada como participante.
func (m *GameManager) addParticipant(id string, conn message.Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[conn] = NewPlayerSession(id, conn)
	log.Printf("[GameManager] player %s connected, %d online", id, len(m.sessions))
}

// removeParticipant trata o fechamento de uma conexão. Ordem de resolução:
// vaga de pareamento, assento em partida viva, espectador.
func (m *GameManager) removeParticipant(conn message.Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.sessions[conn]
	if !ok {
		return
	}
	delete(m.sessions, conn)
	log.Printf("[GameManager] player %s disconnected, %d online", p.ID, len(m.sessions))

	if m.pending == p {
		m.pending = nil
		return
	}

	if g := m.findGameBySeat(p.ID); g != nil {
		// Só conta como queda do assento se esta conexão for a que o assento
		// usa hoje; a queda tardia de uma conexão já substituída não pode
		// derrubar um assento reconectado.
		if s := g.seatFor(p.ID); s.conn != nil && s.conn != conn {
			return
		}
		switch g.HandleDisconnect(p.ID) {
		case DisconnectSeatVacated:
			m.registerReconnectDeadline(g, p.ID)
		case DisconnectAbandoned:
			m.cleanupGame(g, Outcome{Over: true})
		}
		return
	}

	// Por construção um participante observa no máximo uma partida, mas a
	// remoção é barata e ausente é no-op.
	for _, g := range m.games {
		g.RemoveSpectator(p.ID)
	}
}

// dispatch valida a mensagem contra o esquema do protocolo e a roteia pela
// união fechada de tipos. Mensagem malformada é descartada com log; a conexão
// permanece aberta.
func (m *GameManager) dispatch(conn message.Sender, msg network.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.sessions[conn]
	if !ok {
		return
	}

	parsed, err := message.ParseClientMessage(msg)
	if err != nil {
		log.Printf("[GameManager] dropping malformed message from %s: %v", p.ID, err)
		return
	}

	switch parsed.Type {
	case message.TypeJoinGame:
		m.handleJoin(p, parsed.GameID)

	case message.TypeMakeMove:
		g := m.findGameBySeat(p.ID)
		if g == nil {
			return
		}
		if out := g.MakeMove(p.ID, parsed.Move); out.Over {
			m.cleanupGame(g, out)
		}

	case message.TypeResign:
		g := m.findGameBySeat(p.ID)
		if g == nil {
			return
		}
		if out := g.Resign(p.ID); out.Over {
			m.cleanupGame(g, out)
		}

	case message.TypeReconnect:
		m.handleReconnect(p)
	}
}

// handleJoin cobre os dois caminhos do joinGame: observar uma partida
// existente (com gameId) ou entrar no pareamento (sem).
func (m *GameManager) handleJoin(p *PlayerSession, gameID string) {
	if gameID != "" {
		g, ok := m.games[gameID]
		if !ok {
			log.Printf("[GameManager] game not found: %s", gameID)
			return
		}
		// Um participante sentado em qualquer partida viva não vira
		// espectador; observar a própria partida é no-op.
		if m.findGameBySeat(p.ID) != nil {
			return
		}
		// No máximo uma partida observada por participante: trocar de
		// partida remove da anterior.
		for _, other := range m.games {
			if other != g {
				other.RemoveSpectator(p.ID)
			}
		}
		g.AddSpectator(p)
		return
	}

	// Pareamento comum. Quem já está sentado em uma partida viva não entra.
	if m.findGameBySeat(p.ID) != nil {
		return
	}

	if m.pending == nil {
		m.pending = p
		return
	}
	if m.pending.ID == p.ID {
		// Pedido duplicado (segunda aba): nunca parear alguém consigo mesmo.
		return
	}

	white, black := m.pending, p
	m.pending = nil

	g := newGame(uuid.NewString(), white, black)
	m.games[g.ID] = g
	log.Printf("[GameManager] match created %s: %s (white) vs %s (black)", g.ID, white.ID, black.ID)
	m.publisher.MatchCreated(g.ID, white.ID, black.ID)
}

// handleReconnect resolve o pedido pelo registro. Sem entrada pendente é um
// no-op observável apenas no log.
func (m *GameManager) handleReconnect(p *PlayerSession) {
	entry, ok := m.reconnecting[p.ID]
	if !ok {
		log.Printf("[GameManager] reconnect from %s with no pending entry", p.ID)
		return
	}
	// Remover a entrada resolve a corrida com o timer: a partir daqui a
	// expiração encontra o registro vazio e vira no-op.
	delete(m.reconnecting, p.ID)
	entry.timer.Stop()

	if !entry.game.ReconnectSeat(p.ID, p.conn) {
		// Inalcançável enquanto a invariante do registro valer.
		log.Printf("[GameManager] stale reconnect entry for %s on game %s", p.ID, entry.game.ID)
		return
	}
	log.Printf("[GameManager] player %s reconnected to game %s", p.ID, entry.game.ID)
}

// registerReconnectDeadline cria a entrada do registro e arma o timer que,
// expirando, encerra a partida a favor do assento restante.
func (m *GameManager) registerReconnectDeadline(g *Game, playerID string) {
	entry := &pendingReturn{game: g}
	entry.timer = time.AfterFunc(m.reconnectTimeout, func() {
		m.handleReconnectTimeout(playerID)
	})
	m.reconnecting[playerID] = entry
	log.Printf("[GameManager] game %s awaiting %s for %s", g.ID, playerID, m.reconnectTimeout)
}

// handleReconnectTimeout roda na goroutine do timer. Se a entrada já saiu do
// registro, o participante reconectou primeiro e não há nada a fazer.
func (m *GameManager) handleReconnectTimeout(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.reconnecting[playerID]
	if !ok {
		return
	}
	delete(m.reconnecting, playerID)

	if out := entry.game.ForceEnd(playerID); out.Over {
		log.Printf("[GameManager] game %s forfeited by %s on timeout", entry.game.ID, playerID)
		m.cleanupGame(entry.game, out)
	}
}

// cleanupGame remove uma partida encerrada do diretório, limpa o registro de
// reconexão dos dois assentos e publica o evento de término.
func (m *GameManager) cleanupGame(g *Game, out Outcome) {
	delete(m.games, g.ID)
	for _, id := range []string{g.white.id, g.black.id} {
		if entry, ok := m.reconnecting[id]; ok && entry.game == g {
			entry.timer.Stop()
			delete(m.reconnecting, id)
		}
	}
	m.publisher.GameOver(g.ID, out.Winner)
}

// findGameBySeat localiza a partida viva onde o participante está sentado.
// Por construção existe no máximo uma.
func (m *GameManager) findGameBySeat(playerID string) *Game {
	for _, g := range m.games {
		if g.HasPlayer(playerID) {
			return g
		}
	}
	return nil
}
