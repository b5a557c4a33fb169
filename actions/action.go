package actions

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrMissingParam is returned by ExpandPath when a required path
// parameter is absent or empty
var ErrMissingParam = errors.New("missing required parameter")

/* Action describes one (resource, operation) pair as data:
 * HTTP method, path template, and parameter requirements.
 * The whole remote API surface is a table of these, not branching code.
 */
type Action struct {
	Resource  string
	Operation string
	Method    string
	Path      string   // Template with {param} placeholders, e.g. /entities/{entity_token}
	Required  []string // Path parameters that must be supplied
	Paginated bool     // List-class action eligible for page traversal
	// WorkflowToken marks actions that accept the configured default
	// workflow token as a query fallback
	WorkflowToken bool
}

var (
	placeholderPattern = regexp.MustCompile(`\{([a-z0-9_]+)\}`)
	allowedMethods     = map[string]bool{
		"GET":    true,
		"POST":   true,
		"PUT":    true,
		"PATCH":  true,
		"DELETE": true,
	}
)

// Validate checks the action definition is internally consistent
func (a *Action) Validate() error {
	if a.Resource == "" {
		return fmt.Errorf("resource cannot be empty")
	}
	if a.Operation == "" {
		return fmt.Errorf("operation cannot be empty for resource %s", a.Resource)
	}
	if !allowedMethods[a.Method] {
		return fmt.Errorf("invalid method %q for %s.%s", a.Method, a.Resource, a.Operation)
	}
	if !strings.HasPrefix(a.Path, "/") {
		return fmt.Errorf("path must start with / for %s.%s", a.Resource, a.Operation)
	}
	if a.Paginated && a.Method != "GET" {
		return fmt.Errorf("paginated actions must use GET: %s.%s", a.Resource, a.Operation)
	}

	// Every placeholder must be declared required, and vice versa
	placeholders := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(a.Path, -1) {
		placeholders[match[1]] = true
	}
	for _, param := range a.Required {
		if !placeholders[param] {
			return fmt.Errorf("required param %q not present in path for %s.%s", param, a.Resource, a.Operation)
		}
	}
	for placeholder := range placeholders {
		if !contains(a.Required, placeholder) {
			return fmt.Errorf("path placeholder %q not declared required for %s.%s", placeholder, a.Resource, a.Operation)
		}
	}

	return nil
}

// ExpandPath substitutes path parameters into the template. Missing or
// empty required parameters fail before anything reaches the wire.
func (a *Action) ExpandPath(params map[string]string) (string, error) {
	path := a.Path
	for _, param := range a.Required {
		value := params[param]
		if value == "" {
			return "", fmt.Errorf("%w %q for %s.%s", ErrMissingParam, param, a.Resource, a.Operation)
		}
		path = strings.ReplaceAll(path, "{"+param+"}", url.PathEscape(value))
	}

	if placeholderPattern.MatchString(path) {
		return "", fmt.Errorf("unexpanded placeholder in path %q for %s.%s", path, a.Resource, a.Operation)
	}

	return path, nil
}

// Key returns the catalog lookup key for this action
func (a *Action) Key() string {
	return a.Resource + "." + a.Operation
}

func contains(list []string, needle string) bool {
	for _, item := range list {
		if item == needle {
			return true
		}
	}
	return false
}
