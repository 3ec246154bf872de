package errors_test

import (
	"fmt"

	"github.com/agentstation/cgvn/pkg/errors"
)

// Example demonstrates checking a reshape conflict.
func Example() {
	err := fmt.Errorf("prepare governance: %w",
		errors.NewStructuralConflictError("governance", []string{"1234567", "1T2020"}, "X1", 0, 1))

	if errors.IsStructuralConflict(err) {
		fmt.Println("duplicate pivot key")
	}

	// Output: duplicate pivot key
}

// Example_temporalLabel demonstrates the context carried by a label failure.
func Example_temporalLabel() {
	err := errors.NewTemporalLabelError("equity", 4, "sem data", "quarter label like 1T2020")
	fmt.Println(err.Table, err.Row, err.Label)

	// Output: equity 4 sem data
}
