package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/AnkushinDaniil/thinfilm/app"
	"github.com/AnkushinDaniil/thinfilm/material"
)

func main() {
	configPath := flag.String("config", "stack.yaml", "Path to the calculation config file")
	dataDir := flag.String("data", "data", "Directory with material dispersion files")
	listMaterials := flag.Bool("materials", false, "List known material identifiers and exit")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *listMaterials {
		for _, id := range material.NewDatabase(*dataDir).Materials() {
			fmt.Println(id)
		}
		return
	}

	a := app.New(*configPath, *dataDir, os.Stdout)
	if err := a.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
