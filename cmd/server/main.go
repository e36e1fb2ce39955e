package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	loadLocalEnv()
	execute()
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found; relying on existing environment")
	}
}
