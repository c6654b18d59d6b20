package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
)

var _ billing.VoucherLocker = (*VoucherLock)(nil)

// VoucherLock serializa la asignación de números de comprobante usando advisory
// locks de PostgreSQL. La clave combina punto de venta y tipo de comprobante,
// así dos Generar del mismo par esperan entre sí pero pares distintos no se
// bloquean. El lock es transaccional: se libera al Commit/Rollback.
type VoucherLock struct {
	pool *pgxpool.Pool
}

// NewVoucherLock construye el locker con el pool.
func NewVoucherLock(pool *pgxpool.Pool) *VoucherLock {
	return &VoucherLock{pool: pool}
}

// WithLock toma pg_advisory_xact_lock para (ptoVta, tipoCbte), ejecuta fn y
// hace Commit o Rollback. fn recibe el ctx original; los repos que use adentro
// pueden seguir con el pool, el lock solo protege la ventana de numeración.
func (l *VoucherLock) WithLock(ctx context.Context, ptoVta, tipoCbte int, fn func(ctx context.Context) error) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	key := lockKey(ptoVta, tipoCbte)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
		return fmt.Errorf("advisory lock %d: %w", key, err)
	}

	if err := fn(ctx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// lockKey empaqueta (ptoVta, tipoCbte) en los 64 bits que espera pg_advisory_xact_lock.
func lockKey(ptoVta, tipoCbte int) int64 {
	return int64(ptoVta)<<32 | int64(uint32(tipoCbte))
}
