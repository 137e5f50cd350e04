package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dkovalev/deskflow-server/internal/model"
)

var (
	_ model.RequestStore   = (*RequestRepository)(nil)
	_ model.OwnershipStore = (*RequestRepository)(nil)
)

type RequestRepository struct {
	db *Connection
}

func NewRequestRepository(db *Connection) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, title, body, status, requester_id, assignee_id, created_at, updated_at, deleted_at`

func (r *RequestRepository) Create(ctx context.Context, request model.ServiceRequest) (model.ServiceRequest, error) {
	const query = `
        INSERT INTO requests (id, title, body, status, requester_id, assignee_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
        RETURNING ` + requestColumns

	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}

	return scanRequest(r.db.QueryRow(ctx, query,
		request.ID, request.Title, request.Body, string(request.Status),
		request.RequesterID, request.AssigneeID,
	))
}

func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (model.ServiceRequest, error) {
	const query = `
        SELECT ` + requestColumns + `
        FROM requests WHERE id = $1 AND deleted_at IS NULL
    `
	return scanRequest(r.db.QueryRow(ctx, query, id))
}

func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]model.ServiceRequest, error) {
	const query = `
        SELECT ` + requestColumns + `
        FROM requests WHERE requester_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, requesterID)
}

func (r *RequestRepository) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]model.ServiceRequest, error) {
	const query = `
        SELECT ` + requestColumns + `
        FROM requests WHERE assignee_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, assigneeID)
}

func (r *RequestRepository) List(ctx context.Context) ([]model.ServiceRequest, error) {
	const query = `
        SELECT ` + requestColumns + `
        FROM requests WHERE deleted_at IS NULL
        ORDER BY created_at DESC
    `
	return r.list(ctx, query)
}

func (r *RequestRepository) Update(ctx context.Context, request model.ServiceRequest) (model.ServiceRequest, error) {
	const query = `
        UPDATE requests
        SET title = $2, body = $3, status = $4, assignee_id = $5, updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL
        RETURNING ` + requestColumns

	return scanRequest(r.db.QueryRow(ctx, query,
		request.ID, request.Title, request.Body, string(request.Status), request.AssigneeID,
	))
}

func (r *RequestRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE requests SET deleted_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to soft delete request: %w", err)
	}
	return nil
}

// LookupOwnership derives the access level a subject holds for one
// request instance: assignee outranks requester, and attachments share
// the level of their parent request.
func (r *RequestRepository) LookupOwnership(ctx context.Context, ref model.ResourceRef, subjectID string) (model.AccessLevel, error) {
	if ref.Type != model.ResourceTypeRequest {
		return model.AccessNone, fmt.Errorf("unsupported resource type %q", ref.Type)
	}

	requestID, err := uuid.Parse(ref.ID)
	if err != nil {
		return model.AccessNone, fmt.Errorf("malformed resource id: %w", err)
	}
	subject, err := uuid.Parse(subjectID)
	if err != nil {
		return model.AccessNone, fmt.Errorf("malformed subject id: %w", err)
	}

	const query = `
        SELECT requester_id, assignee_id
        FROM requests WHERE id = $1 AND deleted_at IS NULL
    `
	var requesterID uuid.UUID
	var assigneeID *uuid.UUID
	if err := r.db.QueryRow(ctx, query, requestID).Scan(&requesterID, &assigneeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AccessNone, nil
		}
		return model.AccessNone, fmt.Errorf("failed to look up request ownership: %w", err)
	}

	switch {
	case assigneeID != nil && *assigneeID == subject:
		return model.AccessAssigned, nil
	case requesterID == subject:
		return model.AccessOwn, nil
	default:
		return model.AccessNone, nil
	}
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...any) ([]model.ServiceRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []model.ServiceRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return requests, nil
}

func scanRequest(row pgx.Row) (model.ServiceRequest, error) {
	var req model.ServiceRequest
	var status string
	err := row.Scan(&req.ID, &req.Title, &req.Body, &status, &req.RequesterID,
		&req.AssigneeID, &req.CreatedAt, &req.UpdatedAt, &req.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ServiceRequest{}, model.ErrNotFound
		}
		return model.ServiceRequest{}, fmt.Errorf("failed to scan request: %w", err)
	}
	req.Status = model.RequestStatus(status)
	return req, nil
}
