package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/settle/cmd/settle"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/ui/styles"
)

func main() {
	rootCmd := settle.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Render("Error", fmt.Sprintf("Error: %v", err)))

		// Usage errors get the full help, domain errors only the message
		if errors.GetErrorCode(err) == errors.ErrUnknown {
			fmt.Fprintln(os.Stderr)
			_ = rootCmd.Help()
		}
		os.Exit(1)
	}
}
