package actions

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Get for actions absent from the catalog
var ErrNotFound = errors.New("unknown action")

/* Catalog manages the action table loaded from YAML
 * Provides in-memory lookup keyed by resource.operation
 */

//go:embed actions.yaml
var defaultCatalog []byte

// Config represents the structure of an actions YAML document
type Config struct {
	Resources map[string]ResourceConfig `yaml:"resources"`
}

// ResourceConfig groups the operations of one remote resource
type ResourceConfig struct {
	Operations map[string]OperationConfig `yaml:"operations"`
}

// OperationConfig represents a single operation entry in the YAML file
type OperationConfig struct {
	Method        string   `yaml:"method"`
	Path          string   `yaml:"path"`
	Required      []string `yaml:"required"`
	Paginated     bool     `yaml:"paginated"`
	WorkflowToken bool     `yaml:"workflow_token"`
}

// Catalog holds the loaded actions
type Catalog struct {
	actions map[string]*Action
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		actions: make(map[string]*Action),
	}
}

// Default loads the embedded action table
func Default() (*Catalog, error) {
	catalog := NewCatalog()
	if err := catalog.Load(defaultCatalog); err != nil {
		return nil, fmt.Errorf("loading embedded catalog: %w", err)
	}
	return catalog, nil
}

// Load parses and validates a YAML action table
func (c *Catalog) Load(data []byte) error {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing actions YAML: %w", err)
	}

	if len(config.Resources) == 0 {
		return fmt.Errorf("catalog defines no resources")
	}

	for resource, rc := range config.Resources {
		if len(rc.Operations) == 0 {
			return fmt.Errorf("resource %s defines no operations", resource)
		}
		for operation, oc := range rc.Operations {
			action := &Action{
				Resource:      resource,
				Operation:     operation,
				Method:        oc.Method,
				Path:          oc.Path,
				Required:      oc.Required,
				Paginated:     oc.Paginated,
				WorkflowToken: oc.WorkflowToken,
			}

			if err := action.Validate(); err != nil {
				return fmt.Errorf("validating action: %w", err)
			}

			c.actions[action.Key()] = action
		}
	}

	return nil
}

// LoadFile reads and parses an actions YAML file
func (c *Catalog) LoadFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading actions file: %w", err)
	}
	return c.Load(data)
}

// Get retrieves an action by resource and operation name
func (c *Catalog) Get(resource, operation string) (*Action, error) {
	action, exists := c.actions[resource+"."+operation]
	if !exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotFound, resource, operation)
	}
	return action, nil
}

// List returns all loaded actions sorted by key
func (c *Catalog) List() []*Action {
	actions := make([]*Action, 0, len(c.actions))
	for _, action := range c.actions {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].Key() < actions[j].Key()
	})
	return actions
}

// Exists checks if a resource/operation pair is defined
func (c *Catalog) Exists(resource, operation string) bool {
	_, exists := c.actions[resource+"."+operation]
	return exists
}
