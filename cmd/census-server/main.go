package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cognicore/censusqa/internal/api"
	"github.com/cognicore/censusqa/pkg/census"
	"github.com/cognicore/censusqa/pkg/census/store/sqlite"
)

func main() {
	var (
		addr         = flag.String("addr", ":8000", "Listen address")
		dataPath     = flag.String("data", "census_data.csv", "Dataset CSV path")
		synonymsPath = flag.String("synonyms", "", "Synonyms YAML file (optional)")
		dbPath       = flag.String("db", "censusqa.db", "SQLite database path")
	)
	flag.Parse()

	ctx := context.Background()

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// The API goes live immediately; until the dataset is published, /chat
	// answers with the echo fallback and /health reports census_enabled=false.
	h := api.NewHandler(st, nil, nil)
	h.RegisterRoutes(e)

	go func() {
		t0 := time.Now()
		engine, err := census.Load(*dataPath, *synonymsPath)
		if err != nil {
			log.Printf("census data unavailable: %v", err)
			return
		}
		h.SetEngine(engine)
		log.Printf("dataset loaded in %v, census answers enabled", time.Since(t0))
	}()

	log.Printf("server ready on %s (dataset loading in background)", *addr)
	e.Logger.Fatal(e.Start(*addr))
}
