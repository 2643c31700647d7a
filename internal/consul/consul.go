// Package consul resolves the upstream medicine API through service
// discovery when the deployment registers it there instead of pinning
// a URL in the environment.
package consul

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

// GetServiceAddress returns the address and port of a healthy instance
// of the named service.
func GetServiceAddress(client *consulapi.Client, serviceName string) (string, int, error) {
	if client == nil {
		return "", 0, fmt.Errorf("consul client is nil")
	}

	services, _, err := client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to query consul for %s: %w", serviceName, err)
	}
	if len(services) == 0 {
		return "", 0, fmt.Errorf("no healthy instances of %s registered", serviceName)
	}

	svc := services[0].Service
	address := svc.Address
	if address == "" {
		address = services[0].Node.Address
	}
	return address, svc.Port, nil
}
