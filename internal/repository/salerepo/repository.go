package salerepo

import (
	"context"
	"database/sql"
	"time"

	"storemanager/internal/domain"
	"storemanager/internal/errors"
	"storemanager/internal/pkg/database"
	"storemanager/internal/pkg/logger"
	"storemanager/internal/validation"
)

// SaleRepository implementa domain.SaleRepository sobre as tabelas sales e sales_products.
type SaleRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

var _ domain.SaleRepository = (*SaleRepository)(nil)

// NewSaleRepository cria e retorna uma nova instância do Repositório de Vendas.
func NewSaleRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *SaleRepository {
	return &SaleRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

const insertLineSQL = `INSERT INTO sales_products (sale_id, product_id, quantity) VALUES ($1, $2, $3)`

// invalidLines reproduz a guarda local: conjunto vazio ou linha sem produto/quantidade.
func invalidLines(lines []domain.SaleLine) bool {
	if len(lines) == 0 {
		return true
	}
	for _, l := range lines {
		if l.ProductID < 1 || l.Quantity < 1 {
			return true
		}
	}
	return false
}

// Create persiste o cabeçalho e as linhas da venda em uma única transação.
func (r *SaleRepository) Create(ctx context.Context, lines []domain.SaleLine) (saleID int64, err error) {
	if invalidLines(lines) {
		return 0, errors.ErrMissingArgument
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return 0, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = tx.QueryRowContext(ctxTimeout, `INSERT INTO sales DEFAULT VALUES RETURNING id`).Scan(&saleID); err != nil {
		r.logger.Error("Falha ao inserir cabeçalho da venda.", err)
		return 0, errors.NewDBError("Falha ao criar venda", err)
	}

	if err = insertLines(ctxTimeout, tx, saleID, lines); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Debug("Venda criada no DB.", map[string]interface{}{"sale_id": saleID, "lines": len(lines)})
	return saleID, nil
}

func insertLines(ctx context.Context, tx *sql.Tx, saleID int64, lines []domain.SaleLine) error {
	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, insertLineSQL, saleID, l.ProductID, l.Quantity); err != nil {
			if database.IsForeignKeyViolation(err) {
				return errors.ErrUnknownProduct
			}
			return errors.NewDBError("Falha ao inserir linhas da venda", err)
		}
	}
	return nil
}

// GetAll retorna uma linha por item vendido, com a data do cabeçalho.
func (r *SaleRepository) GetAll(ctx context.Context) ([]domain.SaleRow, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `
		SELECT sp.sale_id, sp.product_id, sp.quantity, s.date
		FROM sales_products sp
		JOIN sales s ON sp.sale_id = s.id
		ORDER BY sp.sale_id, sp.product_id`)
	if err != nil {
		r.logger.Error("Falha ao listar vendas.", err)
		return nil, errors.NewDBError("Falha ao buscar vendas", err)
	}
	defer rows.Close()

	sales := make([]domain.SaleRow, 0)
	for rows.Next() {
		var s domain.SaleRow
		if err := rows.Scan(&s.SaleID, &s.ProductID, &s.Quantity, &s.Date); err != nil {
			return nil, errors.NewDBError("Falha ao mapear vendas do DB", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de vendas", err)
	}
	return sales, nil
}

// GetByID retorna as linhas de uma venda (vazio se a venda não existe).
func (r *SaleRepository) GetByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error) {
	if saleID < 1 {
		return nil, errors.ErrMissingArgument
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `
		SELECT sp.product_id, sp.quantity, s.date
		FROM sales_products sp
		JOIN sales s ON sp.sale_id = s.id
		WHERE sp.sale_id = $1
		ORDER BY sp.product_id`, saleID)
	if err != nil {
		r.logger.Error("Falha ao buscar venda.", err)
		return nil, errors.NewDBError("Falha ao buscar venda", err)
	}
	defer rows.Close()

	lines := make([]domain.SaleLineRow, 0)
	for rows.Next() {
		var l domain.SaleLineRow
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.Date); err != nil {
			return nil, errors.NewDBError("Falha ao mapear linhas da venda", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração das linhas da venda", err)
	}
	return lines, nil
}

// Update substitui todas as linhas da venda. Se nenhuma linha for removida
// (venda inexistente) retorna false sem inserir nada.
func (r *SaleRepository) Update(ctx context.Context, saleID int64, lines []domain.SaleLine) (ok bool, err error) {
	if saleID < 1 || invalidLines(lines) {
		return false, errors.ErrMissingArgument
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return false, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer func() {
		if err != nil || !ok {
			tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctxTimeout, `DELETE FROM sales_products WHERE sale_id = $1`, saleID)
	if err != nil {
		return false, errors.NewDBError("Falha ao remover linhas da venda", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if affected == 0 {
		r.logger.Info("Venda não encontrada para atualização.", map[string]interface{}{"sale_id": saleID})
		return false, nil
	}

	if err = insertLines(ctxTimeout, tx, saleID, lines); err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, errors.NewDBError("Falha ao commitar transação", err)
	}
	return true, nil
}

// DeleteByID lê as linhas (para devolvê-las) e remove linhas e cabeçalho.
func (r *SaleRepository) DeleteByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error) {
	lines, err := r.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.NewNotFoundError(validation.MsgSaleNotFound)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if _, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM sales_products WHERE sale_id = $1`, saleID); err != nil {
		r.logger.Error("Falha ao remover linhas da venda.", err)
		return nil, errors.NewDBError("Falha ao remover linhas da venda", err)
	}
	if _, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM sales WHERE id = $1`, saleID); err != nil {
		r.logger.Error("Falha ao remover cabeçalho da venda.", err)
		return nil, errors.NewDBError("Falha ao remover venda", err)
	}

	r.logger.Debug("Venda removida do DB.", map[string]interface{}{"sale_id": saleID})
	return lines, nil
}
