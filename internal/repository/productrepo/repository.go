package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"storemanager/internal/domain"
	"storemanager/internal/errors"
	"storemanager/internal/pkg/cache"
	"storemanager/internal/pkg/database"
	"storemanager/internal/pkg/logger"
	"storemanager/internal/validation"
)

// Define a chave de cache para produtos.
const productCacheKey = "product:%d"

// ProductRepository implementa a interface domain.ProductRepository sobre PostgreSQL,
// com cache-aside no Redis para leituras por ID.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository cria e retorna uma nova instância do Repositório.
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *ProductRepository {
	if cacheClient == nil {
		cacheClient = cache.NoopClient{}
	}
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// Create insere um produto e retorna o ID gerado.
func (r *ProductRepository) Create(ctx context.Context, name string, quantity int) (int64, error) {
	if name == "" || quantity < 1 {
		return 0, errors.ErrMissingArgument
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var id int64
	err := r.DB.QueryRowContext(ctxTimeout,
		`INSERT INTO products (name, quantity) VALUES ($1, $2) RETURNING id`,
		name, quantity,
	).Scan(&id)
	if database.IsUniqueViolation(err) {
		return 0, errors.NewConflictError(validation.MsgProductExists)
	}
	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return 0, errors.NewDBError("Falha ao criar produto", err)
	}

	r.logger.Debug("Produto criado.", map[string]interface{}{"id": id, "name": name})
	return id, nil
}

// GetAll lista todos os produtos ordenados por ID.
func (r *ProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `SELECT id, name, quantity FROM products ORDER BY id`)
}

// GetByName retorna os produtos com o nome exato (vazio se nenhum).
func (r *ProductRepository) GetByName(ctx context.Context, name string) ([]domain.Product, error) {
	if name == "" {
		return nil, errors.ErrMissingArgument
	}
	return r.query(ctx, `SELECT id, name, quantity FROM products WHERE name = $1`, name)
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao consultar produtos.", err)
		return nil, errors.NewDBError("Falha ao buscar produtos", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity); err != nil {
			return nil, errors.NewDBError("Falha ao mapear produtos do DB", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de produtos", err)
	}
	return products, nil
}

// GetByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	if id < 1 {
		return domain.Product{}, errors.ErrMissingArgument
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// Cache HIT
	cached, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cached), &product) == nil {
			return product, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler produto do cache.", map[string]interface{}{"id": id, "error": err.Error()})
	}

	err = r.DB.QueryRowContext(ctxTimeout,
		`SELECT id, name, quantity FROM products WHERE id = $1`, id,
	).Scan(&product.ID, &product.Name, &product.Quantity)
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(validation.MsgProductNotFound)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto", err)
	}

	// Cache WRITE
	if payload, marshalErr := json.Marshal(product); marshalErr == nil {
		if setErr := r.Cache.Set(ctxTimeout, key, payload, r.CacheTTL); setErr != nil {
			r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"id": id, "error": setErr.Error()})
		}
	}

	return product, nil
}

// Update altera nome e quantidade. Retorna false quando nenhuma linha foi afetada.
func (r *ProductRepository) Update(ctx context.Context, id int64, name string, quantity int) (bool, error) {
	if id < 1 || name == "" || quantity < 1 {
		return false, errors.ErrMissingArgument
	}
	ok, err := r.exec(ctx, `UPDATE products SET name = $1, quantity = $2 WHERE id = $3`, name, quantity, id)
	if database.IsUniqueViolation(err) {
		return false, errors.NewConflictError(validation.MsgProductExists)
	}
	if ok {
		r.invalidate(ctx, id)
	}
	return ok, err
}

// DeleteByID remove um produto. Produtos referenciados por vendas não podem ser removidos.
func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	if id < 1 {
		return false, errors.ErrMissingArgument
	}
	ok, err := r.exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if database.IsForeignKeyViolation(err) {
		return false, errors.NewConflictError("Product is referenced by existing sales")
	}
	if ok {
		r.invalidate(ctx, id)
	}
	return ok, err
}

// GetQuantity lê a quantidade direto do banco, sem passar pelo cache.
func (r *ProductRepository) GetQuantity(ctx context.Context, id int64) (int, error) {
	if id < 1 {
		return 0, errors.ErrMissingArgument
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var quantity int
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT quantity FROM products WHERE id = $1`, id).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, errors.NewNotFoundError(validation.MsgProductNotFound)
	}
	if err != nil {
		r.logger.Error("Falha ao ler quantidade do produto.", err)
		return 0, errors.NewDBError("Falha ao ler quantidade", err)
	}
	return quantity, nil
}

// UpdateQuantity grava a nova quantidade. Zero linhas afetadas é falha (false).
func (r *ProductRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) (bool, error) {
	if id < 1 || quantity < 0 {
		return false, errors.ErrMissingArgument
	}
	ok, err := r.exec(ctx, `UPDATE products SET quantity = $1 WHERE id = $2`, quantity, id)
	if ok {
		r.invalidate(ctx, id)
	}
	return ok, err
}

// exec executa um comando e informa se alguma linha foi afetada.
func (r *ProductRepository) exec(ctx context.Context, query string, args ...interface{}) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) || database.IsForeignKeyViolation(err) {
			return false, err
		}
		r.logger.Error("Falha ao executar comando em products.", err)
		return false, errors.NewDBError("Falha ao alterar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	return rowsAffected > 0, nil
}

func (r *ProductRepository) invalidate(ctx context.Context, id int64) {
	if err := r.Cache.Delete(ctx, fmt.Sprintf(productCacheKey, id)); err != nil {
		r.logger.Warn("Falha ao invalidar produto no cache.", map[string]interface{}{"id": id, "error": err.Error()})
	}
}
