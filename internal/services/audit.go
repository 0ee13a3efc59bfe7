package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

// submitter is the part of worker.Pool the auditor needs.
type submitter interface {
	Submit(f func()) bool
}

// Auditor writes audit log rows after the business transaction committed.
// Writes are best effort: a failure is logged and never reaches the caller.
type Auditor struct {
	logs repo.AuditLogs
	pool submitter
	log  *slog.Logger
}

// NewAuditor returns an auditor writing through logs. With a nil pool every
// write happens synchronously.
func NewAuditor(logs repo.AuditLogs, pool submitter, log *slog.Logger) *Auditor {
	if log == nil {
		log = slog.Default()
	}
	return &Auditor{logs: logs, pool: pool, log: log}
}

func (a *Auditor) Record(actorID, entityType, entityID, action string, details map[string]any) {
	if a == nil {
		return
	}
	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   &entityID,
		Action:     action,
		Details:    details,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	write := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.logs.Create(ctx, entry); err != nil {
			a.log.Warn("audit write failed", "entity", entityType, "id", entityID, "action", action, "err", err)
		}
	}
	if a.pool == nil || !a.pool.Submit(write) {
		write()
	}
}
