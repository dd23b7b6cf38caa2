package setup

import (
	"errors"

	"github.com/kappal-app/awx-local/pkg/config"
)

// ErrToolMissing is returned when a required tool is not on PATH
var ErrToolMissing = errors.New("required tool not found on PATH")

// RequiredTools lists the external tools a provider needs
func RequiredTools(provider string) []string {
	tools := []string{"kubectl", "make"}
	if provider == config.ProviderMinikube {
		tools = append(tools, "minikube")
	}
	return tools
}
