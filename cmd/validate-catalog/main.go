package main

import (
	"fmt"
	"os"

	"github.com/marcelsud/alloy-bridge/actions"
)

/* validate-catalog - Standalone CLI tool to validate an action catalog
 * Usage: go run cmd/validate-catalog/main.go [actions.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	// Get catalog file path from args or use default
	catalogFile := "actions.yaml"
	if len(os.Args) > 1 {
		catalogFile = os.Args[1]
	}

	fmt.Printf("Validating catalog file: %s\n", catalogFile)

	catalog := actions.NewCatalog()
	if err := catalog.LoadFile(catalogFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loaded := catalog.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d action(s):\n", len(loaded))

	for i, action := range loaded {
		fmt.Printf("\n%d. Action: %s\n", i+1, action.Key())
		fmt.Printf("   Method:    %s\n", action.Method)
		fmt.Printf("   Path:      %s\n", action.Path)
		if len(action.Required) > 0 {
			fmt.Printf("   Required:  %v\n", action.Required)
		}
		if action.Paginated {
			fmt.Printf("   Paginated: true\n")
		}
		if action.WorkflowToken {
			fmt.Printf("   Workflow token: required\n")
		}
	}

	fmt.Printf("\n✓ All actions are valid!\n")
	os.Exit(0)
}
