// console es la caja de la tienda: atiende al operador por terminal y habla con
// el backend REST configurado en POS_API_URL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/tienda-pos/internal/console/cart"
	"github.com/jhoicas/tienda-pos/internal/console/catalog"
	"github.com/jhoicas/tienda-pos/internal/console/terminal"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/posapi"
	"github.com/jhoicas/tienda-pos/pkg/config"
	"github.com/jhoicas/tienda-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	// Los logs van a stderr: stdout es la pantalla de la caja.
	log := logger.New(logger.Config{
		Env:    cfg.App.Env,
		Level:  cfg.App.LogLevel,
		Output: os.Stderr,
	}).Component("console")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := posapi.New(cfg.Console.APIURL, cfg.Console.HTTPTimeout)
	if _, err := client.Health(ctx); err != nil {
		log.Warn().Err(err).Str("api", cfg.Console.APIURL).Msg("backend no responde; se reintentará en cada operación")
	}

	cat := catalog.New(client)
	engine := cart.New(cat, client)
	console := terminal.New(client, cat, engine, terminal.Options{
		CurrencyPrefix:   cfg.Console.CurrencyPrefix,
		LowStock:         cfg.Console.LowStock,
		DashboardRefresh: cfg.Console.DashboardRefresh,
		ReceiptDir:       cfg.Console.ReceiptDir,
	}, log)

	log.Info().Str("api", cfg.Console.APIURL).Msg("consola de caja iniciada")
	if err := console.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("consola finalizada con error")
		os.Exit(1)
	}
}
