package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Infraestrutura e utilitários
	"storemanager/config"
	"storemanager/internal/events"
	"storemanager/internal/pkg/cache"
	"storemanager/internal/pkg/database"
	"storemanager/internal/pkg/logger"

	// Camadas para Injeção de Dependências
	"storemanager/internal/api/product"
	"storemanager/internal/api/router"
	"storemanager/internal/api/sale"
	"storemanager/internal/domain"
	"storemanager/internal/repository/memory"
	"storemanager/internal/repository/productrepo"
	"storemanager/internal/repository/salerepo"
	"storemanager/internal/service/productservice"
	"storemanager/internal/service/saleservice"
	"storemanager/internal/service/stockservice"
)

// @title        Store Manager API
// @version      1.0
// @description  Cadastro de produtos e vendas com reconciliação de estoque.
// @BasePath     /
func main() {
	// 0. Variáveis de ambiente (.env é opcional: em Docker tudo vem do ambiente)
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	log := logger.NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatal("Configuração inválida.", err)
	}
	log = logger.NewLogger(cfg.LogLevel)
	if zl, ok := log.(*logger.ZapLogger); ok {
		defer zl.Sync()
	}
	if envErr != nil {
		log.Warn("Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.", nil)
	}
	log.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment, "port": cfg.Port})

	ctx := context.Background()

	// 1. Cache (Redis) ou NoopClient
	var cacheClient cache.Client = cache.NoopClient{}
	var limiterClient cache.Client
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("Redis indisponível; seguindo sem cache e sem rate limit.", map[string]interface{}{"error": err.Error()})
		} else {
			defer rc.Close()
			cacheClient, limiterClient = rc, rc
			log.Info("Conexão Redis estabelecida.", nil)
		}
	}

	// 2. Repositórios: PostgreSQL ou memória
	var productRepo domain.ProductRepository
	var saleRepo domain.SaleRepository
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, database.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: database.DefaultPool.ConnMaxLifetime,
			ConnMaxIdleTime: database.DefaultPool.ConnMaxIdleTime,
		})
		if err != nil {
			log.Fatal("Falha ao conectar ao banco de dados.", err)
		}
		defer db.Close()
		log.Info("Conexão PostgreSQL estabelecida.", nil)

		productRepo = productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout(), cfg.CacheTTL(), log)
		saleRepo = salerepo.NewSaleRepository(db, cfg.DBTimeout(), log)
	} else {
		log.Warn("DATABASE_URL não definida; usando repositórios em memória.", nil)
		store := memory.NewStore()
		productRepo, saleRepo = store.Products(), store.Sales()
	}

	// 3. Eventos de venda (Kafka) ou descarte
	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaSalesTopic, log)
		log.Info("Publicação de eventos no Kafka ativada.", map[string]interface{}{"topic": cfg.KafkaSalesTopic})
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Falha ao fechar o publisher de eventos.", err)
		}
	}()

	// 4. Serviços e Handlers (Repository -> Service -> Handler)
	stockSvc := stockservice.NewService(productRepo, saleRepo, log)
	productSvc := productservice.NewService(productRepo, log)
	saleSvc := saleservice.NewService(saleRepo, stockSvc, publisher, log)

	productHandler := product.NewHandler(productSvc, log)
	saleHandler := sale.NewHandler(saleSvc, log)

	r := router.NewRouter(productHandler, saleHandler, log, router.RateLimit{
		Client:      limiterClient,
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor Store Manager ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
