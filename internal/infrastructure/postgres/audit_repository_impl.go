package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/entity"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/repository"
)

type AuditRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewAuditRepository(db DBTX, timeout time.Duration) *AuditRepository {
	return &AuditRepository{db: db, timeout: timeout}
}

func (r *AuditRepository) Record(ctx context.Context, e *entity.AuditEntry) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	md := []byte("{}")
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode audit metadata: %w", err)
		}
		md = b
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO auth_audit_logs (username, action, ip, user_agent, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, nullText(e.Username), e.Action, nullText(e.IP), nullText(e.UserAgent), md).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
