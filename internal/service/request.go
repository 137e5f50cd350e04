package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
)

// Request manages service requests and their attachments. It performs no
// authorization itself: instance-level access is the pipeline's job, and
// list scoping is derived from the already verified principal.
type Request struct {
	requests    model.RequestStore
	attachments model.AttachmentStore
	storage     model.Storage
	logger      *logger.Logger
}

func NewRequest(requests model.RequestStore, attachments model.AttachmentStore, storage model.Storage, logger *logger.Logger) *Request {
	return &Request{
		requests:    requests,
		attachments: attachments,
		storage:     storage,
		logger:      logger,
	}
}

// Create opens a request on behalf of the principal.
func (s *Request) Create(ctx context.Context, principal model.Principal, title, body string) (model.ServiceRequest, error) {
	if title == "" {
		return model.ServiceRequest{}, fmt.Errorf("title is required")
	}

	request, err := s.requests.Create(ctx, model.ServiceRequest{
		ID:          uuid.New(),
		Title:       title,
		Body:        body,
		Status:      model.RequestStatusOpen,
		RequesterID: principal.SubjectID,
	})
	if err != nil {
		return model.ServiceRequest{}, fmt.Errorf("failed to create request: %w", err)
	}

	return request, nil
}

// Get returns one request by ID.
func (s *Request) Get(ctx context.Context, id uuid.UUID) (model.ServiceRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// List returns the requests visible to the principal: clients see their
// own, employees their assignments, admins everything.
func (s *Request) List(ctx context.Context, principal model.Principal) ([]model.ServiceRequest, error) {
	switch principal.Role {
	case model.RoleAdmin:
		return s.requests.List(ctx)
	case model.RoleEmployee:
		return s.requests.ListByAssignee(ctx, principal.SubjectID)
	default:
		return s.requests.ListByRequester(ctx, principal.SubjectID)
	}
}

// Assign hands a request to an employee and moves it in progress.
func (s *Request) Assign(ctx context.Context, id, assigneeID uuid.UUID) (model.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}

	request.AssigneeID = &assigneeID
	request.Status = model.RequestStatusInProgress

	return s.requests.Update(ctx, request)
}

// UpdateStatus moves a request through its workflow.
func (s *Request) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus) (model.ServiceRequest, error) {
	switch status {
	case model.RequestStatusOpen, model.RequestStatusInProgress, model.RequestStatusResolved, model.RequestStatusClosed:
	default:
		return model.ServiceRequest{}, fmt.Errorf("unknown status %q", status)
	}

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}

	request.Status = status

	return s.requests.Update(ctx, request)
}

// AttachFile stores the payload in object storage and records metadata.
func (s *Request) AttachFile(ctx context.Context, requestID uuid.UUID, name string, size int64, reader io.Reader) (model.Attachment, error) {
	if _, err := s.requests.GetByID(ctx, requestID); err != nil {
		return model.Attachment{}, err
	}

	attachment := model.Attachment{
		ID:        uuid.New(),
		RequestID: requestID,
		Name:      name,
		Size:      size,
	}
	attachment.ObjectKey = fmt.Sprintf("%s/%s", requestID, attachment.ID)

	if err := s.storage.Upload(ctx, attachment.ObjectKey, reader, size); err != nil {
		return model.Attachment{}, fmt.Errorf("failed to upload attachment: %w", err)
	}

	created, err := s.attachments.Create(ctx, attachment)
	if err != nil {
		// Do not leave an orphan object behind.
		if delErr := s.storage.Delete(ctx, attachment.ObjectKey); delErr != nil {
			s.logger.Error("failed to clean up orphan attachment object",
				"key", attachment.ObjectKey,
				"error", delErr.Error())
		}
		return model.Attachment{}, fmt.Errorf("failed to record attachment: %w", err)
	}

	return created, nil
}

// OpenAttachment returns attachment metadata and a reader over the payload.
func (s *Request) OpenAttachment(ctx context.Context, attachmentID uuid.UUID) (model.Attachment, io.ReadCloser, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return model.Attachment{}, nil, err
	}

	reader, err := s.storage.Download(ctx, attachment.ObjectKey)
	if err != nil {
		return model.Attachment{}, nil, fmt.Errorf("failed to open attachment payload: %w", err)
	}

	return attachment, reader, nil
}

// ListAttachments returns metadata for a request's attachments.
func (s *Request) ListAttachments(ctx context.Context, requestID uuid.UUID) ([]model.Attachment, error) {
	return s.attachments.ListByRequest(ctx, requestID)
}
