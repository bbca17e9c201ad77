package main

import (
	"github.com/shyjal/goplaces/internal/application"
	config "github.com/shyjal/goplaces/internal/infrastructure/configs"
)

func main() {

	cfg, err := config.LoadConfigs(".env")
	if err != nil {
		panic(err)
	}

	app := application.App{Cfg: cfg}
	app.Run()

}
