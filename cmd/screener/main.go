// Command screener analyses Screener.in workbook exports from the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"screener_valuation/pkg/core/extract"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, extract.ErrStructural) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
