package network

// EventHandler é a interface que conecta a camada de rede com o motor de
// sessões. Todos os eventos chegam serializados pela goroutine do Hub.
type EventHandler interface {
	// OnConnect é chamado quando um novo cliente completa o upgrade.
	OnConnect(c *Client)

	// OnDisconnect é chamado quando a conexão de um cliente fecha.
	OnDisconnect(c *Client)

	// OnMessage é chamado para cada mensagem recebida de um cliente.
	OnMessage(c *Client, msg Message)
}
