package pgsql

import (
	portsrepo "github.com/finbook/reconcore/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryContainer bundles all pgsql repositories over one pool.
type RepositoryContainer struct {
	Account        portsrepo.AccountRepositoryFacade
	Journal        portsrepo.JournalRepositoryWithTx
	Reconciliation *PgxReconciliationRepository
	Consistency    portsrepo.ConsistencyCheckRepositoryFacade
}

// NewRepositoryContainer creates all repositories sharing the given pool.
func NewRepositoryContainer(pool *pgxpool.Pool) *RepositoryContainer {
	account := newPgxAccountRepository(pool)
	return &RepositoryContainer{
		Account:        account,
		Journal:        newPgxJournalRepository(pool, account),
		Reconciliation: newPgxReconciliationRepository(pool),
		Consistency:    newPgxConsistencyCheckRepository(pool),
	}
}
