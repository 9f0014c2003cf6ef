package main

import (
	"github.com/quietpage/journal/config"
	"github.com/quietpage/journal/models"
	"github.com/quietpage/journal/routes"
	"github.com/quietpage/journal/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// The store connection is readiness-gated: a down database keeps the
	// process serving 503s instead of exiting.
	db := config.OpenDatabase(&models.User{}, &models.Post{}, &models.Comment{})

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
