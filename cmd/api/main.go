package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/jaehoon-dev/commerce-api/internal/authz"
	"github.com/jaehoon-dev/commerce-api/internal/config"
	delivery "github.com/jaehoon-dev/commerce-api/internal/delivery/http"
	"github.com/jaehoon-dev/commerce-api/internal/domain"
	"github.com/jaehoon-dev/commerce-api/internal/repository"
	"github.com/jaehoon-dev/commerce-api/internal/usecase"
	"github.com/jaehoon-dev/commerce-api/pkg/security"

	_ "github.com/lib/pq" // Postgres driver
)

func main() {
	// 1. Load Configuration from Environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "change-me-in-production" {
		log.Println("WARNING: running with the default JWT secret; set JWT_SECRET")
	}

	// 2. Setup Framework
	e := echo.New()

	// 3. Initialize Infrastructure (Persistence)
	db, err := sql.Open("postgres", cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// 4. Initialize Repositories
	userRepo := repository.NewPostgresUserRepo(db)
	productRepo := repository.NewPostgresProductRepo(db)
	cache := repository.NewRedisCache(rdb)

	// 5. Initialize Business Logic (Usecases)
	codec := security.NewTokenCodec(cfg.JWTSecret, time.Duration(cfg.TokenTTL)*time.Second)
	authUsecase := usecase.NewAuthUsecase(userRepo, codec)
	productUsecase := usecase.NewProductUsecase(productRepo, cache, time.Duration(cfg.CacheTTL)*time.Second)
	userUsecase := usecase.NewUserUsecase(userRepo)

	// 6. Authorization Policy
	policy, err := buildPolicy(cfg.AuthzRulesPath)
	if err != nil {
		log.Fatalf("Failed to load authorization rules: %v", err)
	}

	// 7. Global Middlewares
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Secure())
	e.Use(delivery.Authenticate(codec))
	e.Use(delivery.Authorize(policy))

	// 8. Register Delivery Handlers (Routes)
	v1 := e.Group("/v1")
	delivery.NewAuthHandler(v1, authUsecase)
	delivery.NewMFAHandler(v1, authUsecase)
	delivery.NewProductHandler(v1, productUsecase)
	delivery.NewUserHandler(v1, userUsecase)

	// 9. Health Check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// 10. Start Server with Graceful Shutdown
	go func() {
		log.Printf("Starting Commerce API on port %s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Shutting down the server due to error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// buildPolicy returns the route authorization table: either the built-in
// default or, when rulesPath is set, a YAML-defined override. Order matters;
// specific rules come before catch-alls and anything unmatched requires
// authentication.
func buildPolicy(rulesPath string) (*authz.Policy, error) {
	if rulesPath != "" {
		rules, err := authz.LoadRules(rulesPath)
		if err != nil {
			return nil, err
		}
		return authz.NewPolicy(rules...), nil
	}

	return authz.NewPolicy(
		authz.Rule{Method: "GET", Pattern: "/health", Require: authz.Public()},

		authz.Rule{Method: "POST", Pattern: "/v1/auth/login", Require: authz.Public()},
		authz.Rule{Method: "POST", Pattern: "/v1/auth/register", Require: authz.Public()},
		authz.Rule{Method: "POST", Pattern: "/v1/auth/mfa/verify", Require: authz.Public()},
		authz.Rule{Method: "POST", Pattern: "/v1/auth/mfa/**", Require: authz.Authenticated()},

		authz.Rule{Method: "GET", Pattern: "/v1/products/**", Require: authz.Public()},
		authz.Rule{Method: "*", Pattern: "/v1/products/**", Require: authz.Role(domain.RoleAdmin)},

		authz.Rule{Method: "GET", Pattern: "/v1/users/me", Require: authz.Authenticated()},
		authz.Rule{Method: "*", Pattern: "/v1/users/**", Require: authz.Role(domain.RoleAdmin)},
	), nil
}
