package network

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server faz o upgrade das conexões HTTP para websocket e as entrega ao Hub.
type Server struct {
	hub *Hub
}

var upgrader = websocket.Upgrader{
	// Em desenvolvimento aceitamos qualquer origem.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewServer cria o servidor com o EventHandler injetado. Este é o ponto de
// injeção do motor de sessões na camada de rede.
func NewServer(handler EventHandler) *Server {
	return &Server{
		hub: NewHub(handler),
	}
}

// Run inicia a goroutine do Hub. Deve ser chamado antes de aceitar conexões.
func (s *Server) Run() {
	go s.hub.Run()
}

// ServeWS é o ponto de entrada das conexões. O parâmetro de query playerId é
// o identificador de reconexão fornecido fora de banda; na ausência dele o
// servidor emite um id novo.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Server] upgrade failed: %v", err)
		return
	}

	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		playerID = uuid.NewString()
	}

	client := &Client{
		conn:     conn,
		hub:      s.hub,
		playerID: playerID,
		send:     make(chan Message, sendBufferSize),
	}

	client.hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}

// Listen inicia o Hub e serve /ws e /health no endereço dado. Bloqueante.
func (s *Server) Listen(address string) error {
	s.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	log.Printf("[Server] listening on ws://%s/ws", address)
	return http.ListenAndServe(address, mux)
}
