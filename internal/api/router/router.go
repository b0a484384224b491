package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "storemanager/docs"
	"storemanager/internal/api/product"
	"storemanager/internal/api/sale"
	"storemanager/internal/pkg/cache"
	"storemanager/internal/pkg/logger"
	"storemanager/internal/pkg/middleware"
)

// RateLimit configura o limitador global. Client nil desliga o limitador.
type RateLimit struct {
	Client      cache.Client
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(productHandler *product.Handler, saleHandler *sale.Handler, log logger.Logger, limit RateLimit) http.Handler {
	mux := http.NewServeMux()

	// --- Health check ---
	mux.HandleFunc("GET /{$}", RootHandler)
	mux.HandleFunc("GET /ping", PingHandler)

	// --- Produtos ---
	mux.HandleFunc("GET /products", productHandler.ListProductsHandler)
	mux.HandleFunc("POST /products", productHandler.CreateProductHandler)
	mux.HandleFunc("GET /products/{id}", productHandler.GetProductByIDHandler)
	mux.HandleFunc("PUT /products/{id}", productHandler.UpdateProductHandler)
	mux.HandleFunc("DELETE /products/{id}", productHandler.DeleteProductHandler)

	// --- Vendas ---
	mux.HandleFunc("GET /sales", saleHandler.ListSalesHandler)
	mux.HandleFunc("POST /sales", saleHandler.CreateSaleHandler)
	mux.HandleFunc("GET /sales/{id}", saleHandler.GetSaleByIDHandler)
	mux.HandleFunc("PUT /sales/{id}", saleHandler.UpdateSaleHandler)
	mux.HandleFunc("DELETE /sales/{id}", saleHandler.DeleteSaleHandler)

	// --- Documentação ---
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	mws := []func(http.Handler) http.Handler{
		middleware.RequestLogger(log),
		middleware.Recoverer(log),
	}
	if limit.Client != nil {
		mws = append(mws, middleware.RateLimiter(limit.Client, limit.MaxRequests, limit.Period, log))
	}
	return middleware.Chain(mux, mws...)
}

// RootHandler responde 200 sem corpo; usado por probes de disponibilidade.
func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
