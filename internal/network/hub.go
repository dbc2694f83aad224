package network

// clientMessage empacota uma mensagem com o cliente que a enviou.
type clientMessage struct {
	client *Client
	msg    Message
}

// Hub mantém o conjunto de clientes ativos e entrega todos os eventos ao
// EventHandler a partir de uma única goroutine. É essa serialização que
// permite ao motor de sessões tratar cada evento por inteiro antes do próximo.
type Hub struct {
	// Acessado SOMENTE pela goroutine do Hub.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	incoming   chan clientMessage

	handler EventHandler
}

// NewHub cria e inicializa um novo Hub.
func NewHub(handler EventHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		handler:    handler,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.handler.OnConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// Sinal para a writeLoop do cliente parar.
				client.closeSend()
				h.handler.OnDisconnect(client)
			}

		case clientMsg := <-h.incoming:
			h.handler.OnMessage(clientMsg.client, clientMsg.msg)
		}
	}
}
