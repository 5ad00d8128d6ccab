// seed aplica las migraciones y carga el catálogo de ejemplo de un almacén de barrio.
//
// Uso: go run ./cmd/seed [-force] [-migrate-only]
// Sin -force no agrega productos si la tabla ya tiene datos.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/application/usecase"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-pos/pkg/config"
	"github.com/jhoicas/tienda-pos/pkg/logger"
)

type sample struct {
	name     string
	category string
	buying   int64
	selling  int64
	stock    int
}

var samples = []sample{
	{"Arroz basmati", "Arroz y granos", 80, 100, 50},
	{"Arroz ponni", "Arroz y granos", 50, 65, 60},
	{"Harina de trigo", "Arroz y granos", 35, 45, 40},
	{"Harina de arroz", "Arroz y granos", 30, 40, 30},

	{"Toor dal", "Legumbres", 100, 120, 35},
	{"Moong dal", "Legumbres", 90, 110, 30},
	{"Chana dal", "Legumbres", 70, 85, 25},
	{"Urad dal", "Legumbres", 95, 115, 28},

	{"Cúrcuma en polvo", "Especias", 120, 150, 20},
	{"Ají en polvo", "Especias", 150, 180, 18},
	{"Cilantro en polvo", "Especias", 80, 100, 22},
	{"Garam masala", "Especias", 200, 250, 15},
	{"Comino en grano", "Especias", 300, 350, 12},

	{"Aceite de girasol (1L)", "Aceites", 140, 170, 40},
	{"Aceite de maní (1L)", "Aceites", 180, 220, 30},
	{"Aceite de coco (500ml)", "Aceites", 100, 130, 25},

	{"Azúcar", "Azúcar y sal", 38, 50, 80},
	{"Sal de roca", "Azúcar y sal", 15, 20, 60},
	{"Panela", "Azúcar y sal", 60, 80, 35},

	{"Té en polvo (250g)", "Bebidas", 120, 150, 45},
	{"Café molido (200g)", "Bebidas", 180, 220, 30},

	{"Galletas Parle-G", "Snacks y galletas", 10, 12, 100},
	{"Galletas Good Day", "Snacks y galletas", 25, 30, 60},
	{"Mixtura (500g)", "Snacks y galletas", 80, 100, 40},

	{"Jabón de baño", "Cuidado personal", 25, 35, 70},
	{"Champú en sobre", "Cuidado personal", 5, 7, 150},
	{"Pasta dental", "Cuidado personal", 45, 60, 50},

	{"Detergente en polvo (1kg)", "Limpieza", 120, 150, 35},
	{"Jabón lavaplatos", "Limpieza", 15, 20, 60},

	{"Leche (500ml)", "Lácteos", 25, 30, 40},
	{"Yogur (500g)", "Lácteos", 30, 40, 25},

	{"Fideos instantáneos", "Comidas rápidas", 12, 15, 80},
	{"Poha (500g)", "Comidas rápidas", 35, 45, 40},

	{"Cebolla (kg)", "Verduras", 30, 40, 50},
	{"Papa (kg)", "Verduras", 25, 35, 60},
	{"Tomate (kg)", "Verduras", 35, 45, 40},
}

func main() {
	force := flag.Bool("force", false, "agregar productos aunque el catálogo no esté vacío")
	migrateOnly := flag.Bool("migrate-only", false, "solo aplicar migraciones")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, "up"); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Msg("migraciones aplicadas")
	if *migrateOnly {
		return
	}

	products := usecase.NewProductUseCase(postgres.NewProductRepository(pool))
	existing, err := products.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listar productos")
	}
	if len(existing) > 0 && !*force {
		log.Info().Int("productos", len(existing)).Msg("el catálogo ya tiene datos; use -force para agregar el ejemplo")
		return
	}

	created := 0
	for _, s := range samples {
		_, err := products.Create(ctx, dto.ProductRequest{
			Name:          s.name,
			Category:      s.category,
			BuyingPrice:   decimal.NewFromInt(s.buying),
			SellingPrice:  decimal.NewFromInt(s.selling),
			StockQuantity: s.stock,
		})
		if err != nil {
			log.Error().Err(err).Str("producto", s.name).Msg("crear producto")
			os.Exit(1)
		}
		created++
	}
	log.Info().Int("productos", created).Msg("catálogo de ejemplo cargado")
}
