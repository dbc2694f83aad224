package board

import (
	"fmt"

	chess "github.com/corentings/chess/v2"
)

// Move é uma jogada proposta no formato do protocolo: casas de origem e
// destino em notação algébrica, mais a peça de promoção quando houver.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// UCI retorna a jogada no formato que o motor de regras decodifica.
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion
}

// Board é a fachada sobre o motor de regras externo. Ele guarda a posição
// corrente e o histórico de jogadas de uma sessão; legalidade e detecção de
// fim de jogo são sempre delegadas ao motor, nunca re-derivadas aqui.
type Board struct {
	game  *chess.Game
	moves []Move
}

func New() *Board {
	return &Board{
		game:  chess.NewGame(),
		moves: make([]Move, 0),
	}
}

// ApplyMove delega a jogada ao motor de regras. Uma jogada rejeitada não
// altera nada; uma aceita é anexada ao histórico (append-only).
func (b *Board) ApplyMove(m Move) error {
	pos := b.game.Position()

	mv, err := chess.UCINotation{}.Decode(pos, m.UCI())
	if err != nil {
		return fmt.Errorf("invalid move %q: %w", m.UCI(), err)
	}
	if err := b.game.Move(mv, nil); err != nil {
		return fmt.Errorf("illegal move %q: %w", m.UCI(), err)
	}

	b.moves = append(b.moves, m)
	return nil
}

// Outcome consulta o motor sobre o estado terminal. winner é "white" ou
// "black" para resultados decisivos e vazio para empate.
func (b *Board) Outcome() (over bool, winner string) {
	switch b.game.Outcome() {
	case chess.WhiteWon:
		return true, "white"
	case chess.BlackWon:
		return true, "black"
	case chess.Draw:
		return true, ""
	default:
		return false, ""
	}
}

// Turn retorna o lado a jogar no formato do protocolo: "w" ou "b".
func (b *Board) Turn() string {
	if b.game.Position().Turn() == chess.White {
		return "w"
	}
	return "b"
}

// FEN serializa a posição corrente.
func (b *Board) FEN() string {
	return b.game.FEN()
}

// Moves retorna o histórico de jogadas aceitas, na ordem.
func (b *Board) Moves() []Move {
	return b.moves
}
