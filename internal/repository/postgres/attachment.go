package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dkovalev/deskflow-server/internal/model"
)

var _ model.AttachmentStore = (*AttachmentRepository)(nil)

type AttachmentRepository struct {
	db *Connection
}

func NewAttachmentRepository(db *Connection) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment model.Attachment) (model.Attachment, error) {
	const query = `
        INSERT INTO attachments (id, request_id, name, size, object_key, created_at)
        VALUES ($1,$2,$3,$4,$5,NOW())
        RETURNING id, request_id, name, size, object_key, created_at
    `
	if attachment.ID == uuid.Nil {
		attachment.ID = uuid.New()
	}

	var created model.Attachment
	err := r.db.QueryRow(ctx, query,
		attachment.ID, attachment.RequestID, attachment.Name, attachment.Size, attachment.ObjectKey,
	).Scan(&created.ID, &created.RequestID, &created.Name, &created.Size, &created.ObjectKey, &created.CreatedAt)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to create attachment: %w", err)
	}
	return created, nil
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Attachment, error) {
	const query = `
        SELECT id, request_id, name, size, object_key, created_at
        FROM attachments WHERE id = $1
    `
	var a model.Attachment
	err := r.db.QueryRow(ctx, query, id).
		Scan(&a.ID, &a.RequestID, &a.Name, &a.Size, &a.ObjectKey, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Attachment{}, model.ErrNotFound
		}
		return model.Attachment{}, fmt.Errorf("failed to get attachment by id: %w", err)
	}
	return a, nil
}

func (r *AttachmentRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Attachment, error) {
	const query = `
        SELECT id, request_id, name, size, object_key, created_at
        FROM attachments WHERE request_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []model.Attachment
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(&a.ID, &a.RequestID, &a.Name, &a.Size, &a.ObjectKey, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attachments: %w", err)
	}
	return attachments, nil
}
