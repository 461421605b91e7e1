package main

import (
	"casebox_backend/internal/app"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := app.NewApp().Run(); err != nil {
		log.WithError(err).Fatal("casebox stopped")
	}
}
