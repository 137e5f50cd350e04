package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResourceTypeRequest is the resource type name used by access policies
// covering service requests and their attachments.
const ResourceTypeRequest = "request"

// RequestStatus is the workflow state of a service request.
type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "open"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusResolved   RequestStatus = "resolved"
	RequestStatusClosed     RequestStatus = "closed"
)

// ServiceRequest is a ticket opened by a client and optionally assigned
// to an employee. Ownership for access decisions derives from
// RequesterID (own) and AssigneeID (assigned).
type ServiceRequest struct {
	ID          uuid.UUID
	Title       string
	Body        string
	Status      RequestStatus
	RequesterID uuid.UUID
	AssigneeID  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// RequestStore defines persistence operations for service requests.
type RequestStore interface {
	Create(ctx context.Context, request ServiceRequest) (ServiceRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (ServiceRequest, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]ServiceRequest, error)
	ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]ServiceRequest, error)
	List(ctx context.Context) ([]ServiceRequest, error)
	Update(ctx context.Context, request ServiceRequest) (ServiceRequest, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Attachment is a file attached to a service request. The payload lives
// in object storage under ObjectKey; only metadata is kept relationally.
type Attachment struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	Name      string
	Size      int64
	ObjectKey string
	CreatedAt time.Time
}

// AttachmentStore defines persistence operations for attachment metadata.
type AttachmentStore interface {
	Create(ctx context.Context, attachment Attachment) (Attachment, error)
	GetByID(ctx context.Context, id uuid.UUID) (Attachment, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Attachment, error)
}
