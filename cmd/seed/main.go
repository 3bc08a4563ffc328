// seed crea la cuenta admin inicial e importa el catálogo de productos desde un CSV.
//
// Uso:
//
//	go run ./cmd/seed --admin-login admin --admin-password '...' [--catalog produits.csv --encoding latin1]
//
// Formato del catálogo: code;name;form;dosage;dd/mm/aaaa;price. Los códigos existentes se omiten.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/jhoicas/cadmeko-api/internal/application/auth"
	"github.com/jhoicas/cadmeko-api/internal/application/usecase"
	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
	"github.com/jhoicas/cadmeko-api/pkg/config"
	"github.com/jhoicas/cadmeko-api/pkg/logger"
)

type options struct {
	catalog       string
	encoding      string
	adminLogin    string
	adminPassword string
}

func main() {
	var opts options
	fs := pflag.NewFlagSet("seed", pflag.ExitOnError)
	fs.StringVar(&opts.catalog, "catalog", "", "CSV del catálogo (code;name;form;dosage;dd/mm/aaaa;price)")
	fs.StringVar(&opts.encoding, "encoding", "utf-8", "encoding del CSV: utf-8 | latin1")
	fs.StringVar(&opts.adminLogin, "admin-login", "admin", "login de la cuenta admin inicial")
	fs.StringVar(&opts.adminPassword, "admin-password", "", "contraseña de la cuenta admin inicial (mín. 8 caracteres)")
	_ = fs.Parse(os.Args[1:])

	if opts.adminPassword == "" {
		fmt.Fprintln(os.Stderr, "--admin-password es obligatorio")
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
	}, clock.Real(), log)
	productUC := usecase.NewProductUseCase(postgres.NewProductRepository(pool), clock.Real())

	if err := run(ctx, opts, authUC, productUC, log); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
}

// run crea el admin si no existe y, con --catalog, importa los productos en su nombre.
func run(ctx context.Context, opts options, authUC *auth.AuthUseCase, productUC *usecase.ProductUseCase, log *logger.Logger) error {
	created, err := authUC.BootstrapAdmin(ctx, opts.adminLogin, opts.adminPassword)
	if err != nil {
		return fmt.Errorf("crear admin: %w", err)
	}
	log.Info().Str("login", opts.adminLogin).Bool("created", created).Msg("cuenta admin")

	if opts.catalog == "" {
		return nil
	}
	admin, err := authUC.Authenticate(ctx, opts.adminLogin, opts.adminPassword)
	if err != nil {
		return fmt.Errorf("autenticar admin: %w", err)
	}

	f, err := os.Open(opts.catalog)
	if err != nil {
		return fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	r, err := catalogReader(f, opts.encoding)
	if err != nil {
		return err
	}
	rows, err := parseCatalog(r)
	if err != nil {
		return fmt.Errorf("leer catálogo: %w", err)
	}

	var imported, duplicates, invalid int
	for _, in := range rows {
		_, err := productUC.Create(ctx, admin, in)
		switch {
		case err == nil:
			imported++
		case errors.Is(err, domain.ErrDuplicate):
			duplicates++
		case errors.Is(err, domain.ErrInvalidInput):
			invalid++
			log.Warn().Str("code", in.Code).Str("expiry", in.ExpiryDate).Msg("producto inválido, omitido")
		default:
			return fmt.Errorf("importar %s: %w", in.Code, err)
		}
	}
	log.Info().Int("imported", imported).Int("duplicates", duplicates).Int("invalid", invalid).Msg("catálogo importado")
	return nil
}
