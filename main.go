package main

import (
	"github.com/ziyuwang/portfolio-api/config"
	"github.com/ziyuwang/portfolio-api/models"
	"github.com/ziyuwang/portfolio-api/routes"
	"github.com/ziyuwang/portfolio-api/store"
	"github.com/ziyuwang/portfolio-api/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.BlogPost{}, &models.Tag{}, &models.Comment{}, &models.Like{}, &models.PageView{})

	gateway := store.NewGormGateway(db)
	r := routes.SetupRouter(db, gateway)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
