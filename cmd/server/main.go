package main

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"

	"eechess/internal/events"
	"eechess/internal/network"
	"eechess/internal/services/cluster"
	"eechess/internal/session"
)

// Config reúne toda a configuração do processo, vinda do ambiente. NATS e
// Consul são opcionais: sem endereço configurado o servidor roda sozinho.
type Config struct {
	Addr             string        `env:"EECHESS_ADDR" envDefault:":8080"`
	ReconnectTimeout time.Duration `env:"EECHESS_RECONNECT_TIMEOUT" envDefault:"30s"`

	NATSURL string `env:"NATS_URL"`

	ServiceName string `env:"EECHESS_SERVICE_NAME" envDefault:"eechess-server"`
	ServicePort int    `env:"EECHESS_SERVICE_PORT" envDefault:"8080"`
	ConsulAddr  string `env:"CONSUL_HTTP_ADDR"`
}

func main() {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer np.Close()
		publisher = np
		log.Printf("[Main] publishing lifecycle events to %s", cfg.NATSURL)
	}

	manager := session.NewGameManager(cfg.ReconnectTimeout, publisher)
	server := network.NewServer(manager)

	if cfg.ConsulAddr != "" {
		reg := cluster.Registration{
			ServiceName: cfg.ServiceName,
			ServicePort: cfg.ServicePort,
			HealthPort:  cfg.ServicePort,
			ConsulAddr:  cfg.ConsulAddr,
		}
		if err := cluster.Register(reg); err != nil {
			log.Fatalf("cluster: %v", err)
		}
	}

	if err := server.Listen(cfg.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
