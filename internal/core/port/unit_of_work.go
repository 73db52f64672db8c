package port

import "context"

// UnitOfWork is a pattern that allows to run transactions across different repositories
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(uow UnitOfWork) error) error
	SingleSessionRepo() SingleUploadSessionRepository
	MultipartSessionRepo() MultipartUploadSessionRepository
	DownloadTaskRepo() DownloadTaskRepository
	OutboxRepo() OutboxRepository
	IdempotencyRepo() IdempotencyRepository
}
