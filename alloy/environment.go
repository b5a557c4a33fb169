package alloy

import "fmt"

// Environment names a hosted Alloy API deployment
type Environment string

const (
	Production Environment = "production"
	Sandbox    Environment = "sandbox"
)

var environmentBaseURLs = map[Environment]string{
	Production: "https://api.alloy.co/v1",
	Sandbox:    "https://sandbox.alloy.co/v1",
}

// EnvironmentBaseURL resolves a named environment to its base URL
func EnvironmentBaseURL(env Environment) (string, error) {
	baseURL, ok := environmentBaseURLs[env]
	if !ok {
		return "", fmt.Errorf("unknown environment: %s", env)
	}
	return baseURL, nil
}
