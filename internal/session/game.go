package session

import (
	"log"

	"eechess/internal/game/board"
	"eechess/internal/network"
	"eechess/internal/session/message"
)

// Estados do ciclo de vida de uma partida. over é terminal.
const (
	status_ACTIVE             = "active"
	status_AWAITING_RECONNECT = "awaiting_reconnect"
	status_OVER               = "over"
)

// Outcome é o resultado explícito de uma operação que pode encerrar a
// partida. O GameManager usa isso para atualizar seus diretórios em vez de a
// partida segurar um callback de volta para o manager.
type Outcome struct {
	Over   bool
	Winner string // "white", "black" ou vazio para empate
}

// DisconnectResult informa ao GameManager o que uma desconexão significou
// para a partida.
type DisconnectResult int

const (
	// DisconnectNone: era espectador (ou ninguém); nada a fazer.
	DisconnectNone DisconnectResult = iota
	// DisconnectSeatVacated: um assento ficou vago; o manager deve registrar
	// o prazo de reconexão para o id retornado por AwaitingID.
	DisconnectSeatVacated
	// DisconnectAbandoned: o segundo assento caiu enquanto o primeiro já era
	// aguardado; a partida terminou sem vencedor.
	DisconnectAbandoned
)

// seat é um dos dois lugares fixos da partida. A cor e o id são definidos na
// criação e nunca mudam; só a conexão é trocada em uma reconexão.
type seat struct {
	id    string
	color string
	conn  message.Sender
}

// Game é a entidade de sessão: dois assentos, espectadores, o tabuleiro e a
// regra de alternância de turno. Toda mutação passa pelo GameManager, que
// serializa o acesso; Game não tem trava própria.
type Game struct {
	ID string

	white *seat
	black *seat

	spectators map[string]message.Sender

	board  *board.Board
	status string

	// id do assento aguardando reconexão; vazio fora de awaiting_reconnect.
	awaitingID string
}

// newGame cria a partida e envia a cada assento sua mensagem initGame. O
// chamador garante que white e black são participantes distintos e
// conectados; sentar o mesmo participante dos dois lados é erro do chamador
// e é barrado antes de chegar aqui.
func newGame(id string, white, black *PlayerSession) *Game {
	g := &Game{
		ID:         id,
		white:      &seat{id: white.ID, color: "white", conn: white.conn},
		black:      &seat{id: black.ID, color: "black", conn: black.conn},
		spectators: make(map[string]message.Sender),
		board:      board.New(),
		status:     status_ACTIVE,
	}

	g.white.conn.TrySend(message.CreateInitGameMessage("white", g.ID))
	g.black.conn.TrySend(message.CreateInitGameMessage("black", g.ID))
	return g
}

// HasPlayer responde se o participante ocupa um dos dois assentos.
func (g *Game) HasPlayer(playerID string) bool {
	return g.seatFor(playerID) != nil
}

// HasSpectator responde se o participante observa esta partida.
func (g *Game) HasSpectator(playerID string) bool {
	_, ok := g.spectators[playerID]
	return ok
}

// AwaitingID retorna o id do assento aguardado, ou vazio.
func (g *Game) AwaitingID() string {
	return g.awaitingID
}

// AddSpectator adiciona um observador e o traz ao estado corrente com um
// snapshot completo.
func (g *Game) AddSpectator(p *PlayerSession) {
	g.spectators[p.ID] = p.conn
	p.conn.TrySend(message.CreateGameStateMessage(g.ID, g.board.FEN(), g.board.Turn(), g.board.Moves()))
}

// RemoveSpectator remove se presente; ausente é no-op.
func (g *Game) RemoveSpectator(playerID string) {
	delete(g.spectators, playerID)
}

// MakeMove aplica uma jogada proposta. Fora do turno do participante, ou
// rejeitada pelo motor de regras, nada muda e nada é enviado. Uma jogada
// aceita não-terminal é notificada ao oponente e aos espectadores (quem jogou
// já conhece a própria jogada). Uma jogada terminal encerra a partida.
func (g *Game) MakeMove(playerID string, mv board.Move) Outcome {
	if g.status == status_OVER {
		return Outcome{}
	}

	mover := g.seatFor(playerID)
	if mover == nil || !g.isSeatTurn(mover) {
		return Outcome{}
	}

	if err := g.board.ApplyMove(mv); err != nil {
		// Jogada ilegal: sem mudança de estado, sem mensagem.
		return Outcome{}
	}

	if over, winner := g.board.Outcome(); over {
		return g.finish(winner)
	}

	moveMsg := message.CreateMoveMessage(mv)
	g.sendToSeat(g.otherSeat(mover), moveMsg)
	g.sendToSpectators(moveMsg)
	return Outcome{}
}

// Resign encerra a partida declarando o outro assento vencedor. Vinda de quem
// não ocupa assento (espectador incluso), é no-op.
func (g *Game) Resign(playerID string) Outcome {
	if g.status == status_OVER {
		return Outcome{}
	}
	resigning := g.seatFor(playerID)
	if resigning == nil {
		return Outcome{}
	}
	return g.finish(g.otherSeat(resigning).color)
}

// HandleDisconnect trata a queda de uma conexão. Um assento vago NÃO encerra
// a partida: a decisão de esperar (prazo de reconexão) ou encerrar fica com o
// GameManager, que é quem recebe o resultado.
func (g *Game) HandleDisconnect(playerID string) DisconnectResult {
	s := g.seatFor(playerID)
	if s == nil {
		g.RemoveSpectator(playerID)
		return DisconnectNone
	}

	if g.status == status_AWAITING_RECONNECT {
		if playerID == g.awaitingID {
			// Queda de uma conexão extra do assento já aguardado (outra aba
			// que nunca reconectou); o assento já está vago.
			return DisconnectNone
		}
		// O outro assento já estava sendo aguardado; não resta ninguém.
		log.Printf("[Game %s] both seats disconnected, abandoning", g.ID)
		g.finish("")
		return DisconnectAbandoned
	}

	s.conn = nil
	g.status = status_AWAITING_RECONNECT
	g.awaitingID = playerID
	return DisconnectSeatVacated
}

// ReconnectSeat religa a conexão de um assento aguardado e devolve o snapshot
// completo ao participante. Qualquer outra combinação de estado/id é
// rejeitada sem mudança.
func (g *Game) ReconnectSeat(playerID string, conn message.Sender) bool {
	if g.status != status_AWAITING_RECONNECT || g.awaitingID != playerID {
		return false
	}
	s := g.seatFor(playerID)
	s.conn = conn
	g.status = status_ACTIVE
	g.awaitingID = ""

	conn.TrySend(message.CreateReconnectSnapshotMessage(s.color, g.ID, g.board.FEN(), g.board.Moves()))
	return true
}

// ForceEnd encerra a partida por expiração do prazo de reconexão, declarando
// o assento restante vencedor. Se a partida já não aguarda esse participante
// (reconectou ou já terminou), é um no-op seguro: a corrida entre reconexão e
// timeout é resolvida pelo registro do manager, não aqui.
func (g *Game) ForceEnd(playerID string) Outcome {
	if g.status != status_AWAITING_RECONNECT || g.awaitingID != playerID {
		return Outcome{}
	}
	gone := g.seatFor(playerID)
	return g.finish(g.otherSeat(gone).color)
}

// finish transita para over e anuncia o resultado a assentos e espectadores.
func (g *Game) finish(winner string) Outcome {
	g.status = status_OVER
	g.awaitingID = ""
	g.broadcast(message.CreateGameOverMessage(winner))
	return Outcome{Over: true, Winner: winner}
}

func (g *Game) seatFor(playerID string) *seat {
	if g.white.id == playerID {
		return g.white
	}
	if g.black.id == playerID {
		return g.black
	}
	return nil
}

func (g *Game) otherSeat(s *seat) *seat {
	if s == g.white {
		return g.black
	}
	return g.white
}

// isSeatTurn deriva a posse do turno exclusivamente do lado a jogar do
// tabuleiro, cruzado com a cor do assento.
func (g *Game) isSeatTurn(s *seat) bool {
	return (g.board.Turn() == "w" && s.color == "white") ||
		(g.board.Turn() == "b" && s.color == "black")
}

func (g *Game) sendToSeat(s *seat, msg network.Message) {
	if s.conn != nil {
		s.conn.TrySend(msg)
	}
}

func (g *Game) sendToSpectators(msg network.Message) {
	for _, conn := range g.spectators {
		conn.TrySend(msg)
	}
}

func (g *Game) broadcast(msg network.Message) {
	g.sendToSeat(g.white, msg)
	g.sendToSeat(g.black, msg)
	g.sendToSpectators(msg)
}
