package services

import (
	"github.com/finbook/reconcore/internal/core/domain"
	portsrepo "github.com/finbook/reconcore/internal/core/ports/repositories"
	portssvc "github.com/finbook/reconcore/internal/core/ports/services"
)

// ServiceContainer wires the core services over one repository set.
type ServiceContainer struct {
	Account     portssvc.AccountSvcFacade
	Accounting  portssvc.AccountingSvcFacade
	Matching    portssvc.MatchingSvcFacade
	Consistency portssvc.ConsistencySvcFacade
}

// ContainerDeps are the repository ports the container needs.
type ContainerDeps struct {
	AccountRepo portsrepo.AccountRepositoryFacade
	JournalRepo portsrepo.JournalRepositoryFacade
	AtomicRepo  portsrepo.AtomicTransactionReader
	MatchRepo   portsrepo.MatchRepositoryFacade
	CheckRepo   portsrepo.ConsistencyCheckRepositoryFacade
}

// NewServiceContainer builds the full service graph.
func NewServiceContainer(deps ContainerDeps, cfg domain.MatchingConfig) *ServiceContainer {
	accountSvc := NewAccountService(deps.AccountRepo)
	return &ServiceContainer{
		Account:     accountSvc,
		Accounting:  NewAccountingService(deps.JournalRepo, accountSvc),
		Matching:    NewMatchingService(deps.MatchRepo),
		Consistency: NewConsistencyService(deps.AtomicRepo, deps.CheckRepo, cfg),
	}
}
