package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-exchange/auth"
	clientpg "github.com/jrsteele09/go-auth-exchange/clients/pgrepo"
	"github.com/jrsteele09/go-auth-exchange/internal/config"
	"github.com/jrsteele09/go-auth-exchange/internal/database"
	"github.com/jrsteele09/go-auth-exchange/internal/logging"
	"github.com/jrsteele09/go-auth-exchange/internal/scheduler"
	"github.com/jrsteele09/go-auth-exchange/server"
	tenantpg "github.com/jrsteele09/go-auth-exchange/tenants/pgrepo"
	"github.com/jrsteele09/go-auth-exchange/token"
	"github.com/jrsteele09/go-auth-exchange/token/refresh"
	userpg "github.com/jrsteele09/go-auth-exchange/users/pgrepo"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx := context.Background()

	pool, err := database.NewPool(ctx, c.GetDatabaseDSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	sched, err := scheduler.New()
	if err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Warn().Err(err).Msg("scheduler shutdown")
		}
	}()

	stores, err := newTokenStores(ctx, c, sched)
	if err != nil {
		return err
	}
	defer stores.close()

	tokens, err := token.New(token.NewHMACSigner([]byte(c.GetJWTSecret())), c.GetJWTIssuer(),
		token.WithRevokedTokenStore(stores.revoked),
	)
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}
	refreshTokens, err := refresh.NewManager(stores.refresh)
	if err != nil {
		return fmt.Errorf("refresh token manager: %w", err)
	}

	providers, err := newIdentityProviders(ctx, c)
	if err != nil {
		return err
	}

	options := []auth.ServiceOption{auth.WithIdentityProviders(providers...)}
	if c.GetAuthCodeSingleUse() {
		options = append(options, auth.WithUsedCodeGuard(stores.usedCodes))
	}

	authService, err := auth.NewService(auth.Repos{
		Users:   userpg.New(pool),
		Clients: clientpg.New(pool),
		Tenants: tenantpg.New(pool),
	}, tokens, refreshTokens, options...)
	if err != nil {
		return err
	}

	handler, err := server.New(c, authService,
		server.WithHealthCheck("postgres", pool.Ping),
		server.WithHealthCheck(stores.name, stores.ping),
	)
	if err != nil {
		return err
	}

	sched.Start()

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
