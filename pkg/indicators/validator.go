package indicators

import "fmt"

// ValidateNoCycles checks for circular dependencies in an indicator
func ValidateNoCycles(indicator Indicator) error {
	visited := make(map[string]bool)
	stack := make(map[string]bool)
	return validateNoCyclesRecursive(indicator, visited, stack)
}

func validateNoCyclesRecursive(indicator Indicator, visited, stack map[string]bool) error {
	name := indicator.Name()

	// If this node is already in our DFS stack, we have a cycle
	if stack[name] {
		return fmt.Errorf("circular dependency detected involving %s", name)
	}

	// If we've already validated this node, skip it
	if visited[name] {
		return nil
	}

	// Add to DFS stack
	stack[name] = true
	visited[name] = true

	// Check all dependencies
	for _, dep := range indicator.Dependencies() {
		if err := validateNoCyclesRecursive(dep, visited, stack); err != nil {
			return fmt.Errorf("dependency chain: %s -> %v", name, err)
		}
	}

	// Remove from DFS stack (backtrack)
	stack[name] = false

	return nil
}

// ValidateIndicators checks for circular dependencies in multiple indicators
func ValidateIndicators(indicators []Indicator) error {
	visited := make(map[string]bool)
	stack := make(map[string]bool)

	for _, ind := range indicators {
		if err := validateNoCyclesRecursive(ind, visited, stack); err != nil {
			return err
		}
	}

	return nil
}
