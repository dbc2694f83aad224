package cluster

// Registro opcional do servidor no Consul, com health check HTTP. O serviço
// funciona normalmente sem Consul; isto existe para os ambientes onde a
// descoberta de serviço está de pé.

import (
	"fmt"
	"log"
	"os"

	consul "github.com/hashicorp/consul/api"
)

// Registration descreve o serviço a registrar.
type Registration struct {
	ServiceName string
	ServicePort int
	HealthPort  int
	ConsulAddr  string
}

// Register registra o serviço no agente Consul do endereço dado. O hostname
// do processo compõe o ID do serviço, então múltiplas instâncias convivem no
// mesmo catálogo.
func Register(reg Registration) error {
	config := consul.DefaultConfig()
	config.Address = reg.ConsulAddr

	client, err := consul.NewClient(config)
	if err != nil {
		return fmt.Errorf("consul client: %w", err)
	}

	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	serviceID := fmt.Sprintf("%s-%s", reg.ServiceName, hostname)

	registration := &consul.AgentServiceRegistration{
		ID:   serviceID,
		Name: reg.ServiceName,
		Port: reg.ServicePort,

		Check: &consul.AgentServiceCheck{
			// O agente resolve o hostname do contêiner pela rede interna.
			HTTP:     fmt.Sprintf("http://%s:%d/health", hostname, reg.HealthPort),
			Timeout:  "5s",
			Interval: "10s",
			// Desregistra sozinho se ficar crítico por muito tempo.
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("consul register: %w", err)
	}

	log.Printf("[Cluster] service '%s' registered in Consul as %s", reg.ServiceName, serviceID)
	return nil
}
