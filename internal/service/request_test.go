package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dkovalev/deskflow-server/internal/mocks"
	"github.com/dkovalev/deskflow-server/internal/model"
	"github.com/dkovalev/deskflow-server/internal/testutil"
)

func newRequestService(requests model.RequestStore, attachments model.AttachmentStore, storage model.Storage) *Request {
	return NewRequest(requests, attachments, storage, testutil.MakeNoopLogger())
}

func TestRequest_Create(t *testing.T) {
	ctx := context.Background()
	p := model.Principal{SubjectID: uuid.New(), Role: model.RoleClient}

	requests := &mocks.RequestStore{}
	requests.On("Create", ctx, mock.MatchedBy(func(r model.ServiceRequest) bool {
		return r.RequesterID == p.SubjectID && r.Status == model.RequestStatusOpen && r.Title == "printer on fire"
	})).Return(model.ServiceRequest{ID: uuid.New(), Title: "printer on fire"}, nil).Once()

	svc := newRequestService(requests, &mocks.AttachmentStore{}, &mocks.Storage{})

	created, err := svc.Create(ctx, p, "printer on fire", "third floor")
	require.NoError(t, err)
	assert.Equal(t, "printer on fire", created.Title)
	requests.AssertExpectations(t)
}

func TestRequest_Create_TitleRequired(t *testing.T) {
	svc := newRequestService(&mocks.RequestStore{}, &mocks.AttachmentStore{}, &mocks.Storage{})

	_, err := svc.Create(context.Background(), model.Principal{}, "", "body")
	require.Error(t, err)
}

func TestRequest_List_ScopedByRole(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.New()

	t.Run("admin sees everything", func(t *testing.T) {
		requests := &mocks.RequestStore{}
		requests.On("List", ctx).Return([]model.ServiceRequest{}, nil).Once()

		svc := newRequestService(requests, &mocks.AttachmentStore{}, &mocks.Storage{})
		_, err := svc.List(ctx, model.Principal{SubjectID: subjectID, Role: model.RoleAdmin})
		require.NoError(t, err)
		requests.AssertExpectations(t)
	})

	t.Run("employee sees assignments", func(t *testing.T) {
		requests := &mocks.RequestStore{}
		requests.On("ListByAssignee", ctx, subjectID).Return([]model.ServiceRequest{}, nil).Once()

		svc := newRequestService(requests, &mocks.AttachmentStore{}, &mocks.Storage{})
		_, err := svc.List(ctx, model.Principal{SubjectID: subjectID, Role: model.RoleEmployee})
		require.NoError(t, err)
		requests.AssertExpectations(t)
	})

	t.Run("client sees own", func(t *testing.T) {
		requests := &mocks.RequestStore{}
		requests.On("ListByRequester", ctx, subjectID).Return([]model.ServiceRequest{}, nil).Once()

		svc := newRequestService(requests, &mocks.AttachmentStore{}, &mocks.Storage{})
		_, err := svc.List(ctx, model.Principal{SubjectID: subjectID, Role: model.RoleClient})
		require.NoError(t, err)
		requests.AssertExpectations(t)
	})
}

func TestRequest_Assign(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	assigneeID := uuid.New()

	requests := &mocks.RequestStore{}
	requests.On("GetByID", ctx, requestID).
		Return(model.ServiceRequest{ID: requestID, Status: model.RequestStatusOpen}, nil).Once()
	requests.On("Update", ctx, mock.MatchedBy(func(r model.ServiceRequest) bool {
		return r.AssigneeID != nil && *r.AssigneeID == assigneeID && r.Status == model.RequestStatusInProgress
	})).Return(model.ServiceRequest{ID: requestID, Status: model.RequestStatusInProgress}, nil).Once()

	svc := newRequestService(requests, &mocks.AttachmentStore{}, &mocks.Storage{})

	updated, err := svc.Assign(ctx, requestID, assigneeID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusInProgress, updated.Status)
}

func TestRequest_UpdateStatus_Unknown(t *testing.T) {
	svc := newRequestService(&mocks.RequestStore{}, &mocks.AttachmentStore{}, &mocks.Storage{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), model.RequestStatus("burning"))
	require.Error(t, err)
}

func TestRequest_AttachFile(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	payload := strings.NewReader("attachment body")

	requests := &mocks.RequestStore{}
	attachments := &mocks.AttachmentStore{}
	storage := &mocks.Storage{}

	requests.On("GetByID", ctx, requestID).Return(model.ServiceRequest{ID: requestID}, nil).Once()
	storage.On("Upload", ctx, mock.Anything, payload, int64(15)).Return(nil).Once()
	attachments.On("Create", ctx, mock.MatchedBy(func(a model.Attachment) bool {
		return a.RequestID == requestID && a.Name == "log.txt" && a.ObjectKey != ""
	})).Return(model.Attachment{RequestID: requestID, Name: "log.txt"}, nil).Once()

	svc := newRequestService(requests, attachments, storage)

	created, err := svc.AttachFile(ctx, requestID, "log.txt", 15, payload)
	require.NoError(t, err)
	assert.Equal(t, "log.txt", created.Name)
	storage.AssertExpectations(t)
}

func TestRequest_AttachFile_CleansUpOnMetadataFailure(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()

	requests := &mocks.RequestStore{}
	attachments := &mocks.AttachmentStore{}
	storage := &mocks.Storage{}

	requests.On("GetByID", ctx, requestID).Return(model.ServiceRequest{ID: requestID}, nil).Once()
	storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	attachments.On("Create", ctx, mock.Anything).Return(model.Attachment{}, assert.AnError).Once()
	storage.On("Delete", ctx, mock.Anything).Return(nil).Once()

	svc := newRequestService(requests, attachments, storage)

	_, err := svc.AttachFile(ctx, requestID, "log.txt", 3, strings.NewReader("abc"))
	require.Error(t, err)
	storage.AssertExpectations(t)
}

func TestRequest_OpenAttachment(t *testing.T) {
	ctx := context.Background()
	attachmentID := uuid.New()

	attachments := &mocks.AttachmentStore{}
	storage := &mocks.Storage{}

	attachments.On("GetByID", ctx, attachmentID).
		Return(model.Attachment{ID: attachmentID, ObjectKey: "k", Name: "log.txt"}, nil).Once()
	storage.On("Download", ctx, "k").Return(io.NopCloser(strings.NewReader("body")), nil).Once()

	svc := newRequestService(&mocks.RequestStore{}, attachments, storage)

	meta, reader, err := svc.OpenAttachment(ctx, attachmentID)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "log.txt", meta.Name)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "body", string(body))
}
