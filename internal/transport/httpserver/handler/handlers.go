package handler

import (
	ledgerdomain "occasion-ledger/internal/domain/ledger"
	userdomain "occasion-ledger/internal/domain/user"
	"occasion-ledger/pkg/logger"
)

type Handlers struct {
	Users  *userdomain.Service
	Ledger *ledgerdomain.Service
	log    logger.Logger
}

func New(users *userdomain.Service, ledger *ledgerdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Users:  users,
		Ledger: ledger,
		log:    log,
	}
}
