package postgres

import (
	"context"
	"database/sql"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

type sqlUnitOfWork struct {
	db *sql.DB
	tx *sql.Tx
}

func NewUnitOfWork(db *sql.DB) port.UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) querier() SQLQuerier {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *sqlUnitOfWork) SingleSessionRepo() port.SingleUploadSessionRepository {
	return NewSQLSingleSessionRepository(u.querier())
}

func (u *sqlUnitOfWork) MultipartSessionRepo() port.MultipartUploadSessionRepository {
	return NewSQLMultipartSessionRepository(u.querier())
}

func (u *sqlUnitOfWork) DownloadTaskRepo() port.DownloadTaskRepository {
	return NewSQLDownloadTaskRepository(u.querier())
}

func (u *sqlUnitOfWork) OutboxRepo() port.OutboxRepository {
	return NewSQLOutboxRepository(u.querier())
}

func (u *sqlUnitOfWork) IdempotencyRepo() port.IdempotencyRepository {
	return NewSQLIdempotencyRepository(u.querier())
}

func (u *sqlUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	uowWithTx := &sqlUnitOfWork{db: u.db, tx: tx}

	if err := fn(uowWithTx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
