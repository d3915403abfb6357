package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/kvesta/scanconsole/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error().Msgf("%v", err)
		os.Exit(1)
	}
}
