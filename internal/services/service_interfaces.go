package services

import (
	"context"
)

// QuotaStoreDB is the persistence contract for the quota ledger. The
// increment must be an atomic upsert on (user_id, date) at the storage
// layer, never a read-modify-write in application code.
type QuotaStoreDB interface {
	GetTier(userID string) (string, error)
	UpsertTier(userID, tier string) error
	GetUsageCount(userID, date string) (int, error)
	IncrementUsage(userID, date string) (int, error)
}

// QuotaManager is what the orchestrator needs from the quota ledger.
type QuotaManager interface {
	CheckQuota(userID, tier, date string) (QuotaStatus, error)
	ConsumeQuota(userID, date string) (QuotaStatus, error)
	GetTier(userID string) (string, error)
}

// GenerationAPI is the remote video-generation service: a single
// asynchronous submit plus a status query by opaque task id.
type GenerationAPI interface {
	SubmitJob(ctx context.Context, req SubmitRequest) (SubmitResult, error)
	JobStatus(ctx context.Context, taskID string) (TaskStatusInfo, error)
	GetUploadPolicy(ctx context.Context, model string) (UploadPolicy, error)
	Configured() bool
}

// StorageUploader turns a local image into a URL the remote generation
// service can fetch over plain HTTPS.
type StorageUploader interface {
	Upload(ctx context.Context, file UploadFile, userID, model string) (string, error)
}

// GenerationEvents receives session state transitions, fanned out to
// websocket subscribers.
type GenerationEvents interface {
	Publish(topic string, msg interface{})
}
