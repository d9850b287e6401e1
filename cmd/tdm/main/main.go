package main

import (
	"os"

	"github.com/mrtigerst/tdm/cmd/tdm"
	"github.com/mrtigerst/tdm/pkg/ui"
)

func main() {
	rootCmd := tdm.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		ui.Error("Error: %v", err)
		os.Exit(1)
	}
}
