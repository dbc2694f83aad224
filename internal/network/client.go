package network

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Tempo para aguardar por uma escrita na conexão.
	writeWait = 10 * time.Second

	// Tempo máximo para aguardar por uma resposta de pong do cliente.
	pongWait = 60 * time.Second

	// Frequência com que enviamos pings. Deve ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize = 256
)

// Client é a representação de um participante conectado do ponto de vista do
// servidor: a conexão websocket, o id estável do jogador e o canal de saída.
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	// Identificador estável do participante. Sobrevive a reconexões: a
	// conexão é trocada, o id não. Vem do parâmetro playerId do upgrade.
	playerID string

	// Canal bufferizado de mensagens de saída. O motor escreve aqui via
	// TrySend e a goroutine writeLoop drena para a conexão.
	send chan Message

	// Protege closed. O Hub fecha o canal send na sua goroutine, mas o
	// registro de reconexão dispara broadcasts de outra, então TrySend
	// precisa saber se o canal ainda aceita escrita.
	mu     sync.Mutex
	closed bool
}

// PlayerID retorna o identificador estável do participante.
func (c *Client) PlayerID() string {
	return c.playerID
}

// TrySend enfileira uma mensagem sem bloquear. Retorna false se o cliente já
// foi desregistrado ou se o buffer está cheio; nos dois casos a mensagem é
// descartada. Um destino lento ou morto nunca atrasa o motor.
func (c *Client) TrySend(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend fecha o canal de saída exatamente uma vez. É o sinal para a
// writeLoop terminar.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	// Cada pong recebido renova o deadline de leitura, mantendo a conexão viva.
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Client %s] unexpected close: %v", c.playerID, err)
			}
			// Qualquer erro (desconexão normal ou não) encerra o loop.
			break
		}

		c.hub.incoming <- clientMessage{client: c, msg: msg}
	}
}

// writeLoop bombeia mensagens do canal send para a conexão websocket e envia
// pings periódicos.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			// Canal fechado pelo Hub: cliente desregistrado.
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
