package main

import (
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/settle/cmd/settle"
	"github.com/arthur-debert/settle/internal/version"
	"github.com/arthur-debert/settle/pkg/logging"
)

func main() {
	rootCmd := settle.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "SETTLE",
		Section: "1",
		Source:  "settle " + version.Version,
		Manual:  "settle manual",
	}

	logging.Must(doc.GenMan(rootCmd, header, os.Stdout), "Error generating man page")
}
