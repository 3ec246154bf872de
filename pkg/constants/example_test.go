package constants_test

import (
	"fmt"

	"github.com/agentstation/cgvn/pkg/constants"
)

// Example shows the fixed column prefix of the reconciled table.
func Example() {
	fmt.Println(constants.ColumnIdentifier, constants.ColumnYear, constants.ColumnTicker, constants.ColumnEquity)
	// Output: identifier year ticker equity
}
