package main

import (
	"os"

	"regi/cmd"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("regi failed")
		os.Exit(1)
	}
}
