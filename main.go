// Package main Lendoo API.
//
// @title           Lendoo API
// @version         1.0
// @description     Peer-to-peer rental marketplace (catalog, cart, loans).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"lendoo/app/echoServer"
	authctrl "lendoo/app/echoServer/controller/auth"
	cartctrl "lendoo/app/echoServer/controller/cart"
	itemctrl "lendoo/app/echoServer/controller/item"
	loanctrl "lendoo/app/echoServer/controller/loan"
	"lendoo/app/echoServer/validation"
	"lendoo/config"
	"lendoo/migrations"
	cartrepo "lendoo/repository/cart"
	itemrepo "lendoo/repository/item"
	loanrepo "lendoo/repository/loan"
	"lendoo/repository/storage"
	userrepo "lendoo/repository/user"
	authsvc "lendoo/service/auth"
	cartsvc "lendoo/service/cart"
	catalogsvc "lendoo/service/catalog"
	loansvc "lendoo/service/loan"
	reconcilesvc "lendoo/service/reconcile"
	"lendoo/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pressly/goose/v3"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// migrations
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Error("goose dialect", "err", err)
		os.Exit(1)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// object storage (optional)
	var up storage.Uploader
	if cfg.S3Bucket != "" {
		up, err = storage.NewS3(ctx, storage.Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			log.Error("s3 init failed", "err", err)
			os.Exit(1)
		}
	} else {
		log.Warn("S3_BUCKET not set, item images disabled")
	}

	// repos
	ur := userrepo.New(db)
	ir := itemrepo.New(db)
	cr := cartrepo.New(db)
	lr := loanrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	cs := catalogsvc.New(ir, up, log)
	ls := loansvc.New(ir, lr, log)
	crt := cartsvc.New(cr, ir, ls)
	rs := reconcilesvc.New(lr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	itemC := &itemctrl.Controller{Svc: cs, V: v, Log: log}
	cartC := &cartctrl.Controller{Svc: crt, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, Views: rs, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth: authC,
		Item: itemC,
		Cart: cartC,
		Loan: loanC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "env", cfg.Env, "port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
