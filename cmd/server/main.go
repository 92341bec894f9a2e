package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/littlelemon/ordering-api/app/auth"
	"github.com/littlelemon/ordering-api/app/cart"
	"github.com/littlelemon/ordering-api/app/catalog"
	"github.com/littlelemon/ordering-api/app/categories"
	"github.com/littlelemon/ordering-api/app/config"
	"github.com/littlelemon/ordering-api/app/logging"
	"github.com/littlelemon/ordering-api/app/orders"
	"github.com/littlelemon/ordering-api/app/roles"
	"github.com/littlelemon/ordering-api/app/server"
	"github.com/littlelemon/ordering-api/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cf, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(cf.LogLevel, cf.LogFormat, os.Stdout)

	if err := run(cf, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cf *config.Config, logger zerolog.Logger) error {
	db, err := models.Open(cf.DSN())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := models.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info().Str("dsn", cf.RedactedDSN()).Msg("database ready")

	var throttle auth.Throttle = auth.NoThrottle{}
	if cf.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cf.RedisAddr,
			Password: cf.RedisPassword,
			DB:       cf.RedisDB,
		})
		defer client.Close()
		throttle = auth.NewRedisThrottle(client, cf.LoginMaxFailures, cf.LoginCooldown)
		logger.Info().Str("addr", cf.RedisAddr).Msg("login throttle enabled")
	}

	users := models.NewUsersRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)
	menuItems := models.NewMenuItemsRepository(db)

	authService := auth.NewService(users, throttle, logger)
	if cf.AdminUsername != "" {
		if err := authService.EnsureSuperuser(context.Background(), cf.AdminUsername, cf.AdminEmail, cf.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	dir := roles.NewDirectory(users, logger)
	orderService := orders.NewService(models.NewOrdersRepository(db), menuItems, dir)

	router := server.NewRouter(&server.Server{
		AuthHandler:       auth.NewAuthHandler(authService),
		CategoryHandler:   categories.NewCategoryHandler(categoriesRepo, dir),
		CatalogHandler:    catalog.NewCatalogHandler(menuItems, categoriesRepo, dir, cf.MenuItemsPerPage),
		CartHandler:       cart.NewCartHandler(cart.NewService(models.NewCartRepository(db), menuItems)),
		OrderHandler:      orders.NewOrderHandler(orderService, cf.OrdersPerPage),
		ManagerGroup:      roles.NewGroupHandler(dir, models.RoleManager),
		DeliveryCrewGroup: roles.NewGroupHandler(dir, models.RoleDeliveryCrew),
		Tokens:            users,
		DB:                sqlDB,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cf.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownDone := make(chan error, 1)
	go func() {
		<-sigChan
		logger.Info().Msg("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownDone <- srv.Shutdown(ctx)
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownDone; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("shutdown completed")
	return nil
}
