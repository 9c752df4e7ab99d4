package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"soporte-itsm/core/appbootstrap"
)

func main() {
	configPath := flag.StringP("config", "c", "config.yaml", "path to the YAML config file (optional)")
	flag.Parse()

	if err := appbootstrap.Run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "soporte: %v\n", err)
		os.Exit(1)
	}
}
