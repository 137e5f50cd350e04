package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dkovalev/deskflow-server/internal/model"
)

const maxAttachmentSize = 32 << 20

type createRequestBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type assignRequestBody struct {
	AssigneeID string `json:"assignee_id"`
}

type statusRequestBody struct {
	Status string `json:"status"`
}

type requestResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Status      string    `json:"status"`
	RequesterID string    `json:"requester_id"`
	AssigneeID  *string   `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type attachmentResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func toRequestResponse(request model.ServiceRequest) requestResponse {
	resp := requestResponse{
		ID:          request.ID.String(),
		Title:       request.Title,
		Body:        request.Body,
		Status:      string(request.Status),
		RequesterID: request.RequesterID.String(),
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
	}
	if request.AssigneeID != nil {
		s := request.AssigneeID.String()
		resp.AssigneeID = &s
	}
	return resp
}

func toAttachmentResponse(attachment model.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:        attachment.ID.String(),
		RequestID: attachment.RequestID.String(),
		Name:      attachment.Name,
		Size:      attachment.Size,
		CreatedAt: attachment.CreatedAt,
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, errors.New(name + " must be a valid UUID")
	}
	return id, nil
}

func (a *API) handleRequestCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.cm.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	var req createRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}

	request, err := a.requests.Create(r.Context(), principal, req.Title, req.Body)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestResponse(request))
}

func (a *API) handleRequestList(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.cm.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	requests, err := a.requests.List(r.Context(), principal)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	items := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, toRequestResponse(request))
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": items})
}

func (a *API) handleRequestGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	request, err := a.requests.Get(r.Context(), id)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(request))
}

func (a *API) handleRequestAssign(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var req assignRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	assigneeID, err := uuid.Parse(req.AssigneeID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "assignee_id must be a valid UUID")
		return
	}

	request, err := a.requests.Assign(r.Context(), id, assigneeID)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(request))
}

func (a *API) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var req statusRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	request, err := a.requests.UpdateStatus(r.Context(), id, model.RequestStatus(req.Status))
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(request))
}

func (a *API) handleAttachmentUpload(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "multipart form is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "file field is required")
		return
	}
	defer file.Close()

	attachment, err := a.requests.AttachFile(r.Context(), id, header.Filename, header.Size, file)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAttachmentResponse(attachment))
}

func (a *API) handleAttachmentList(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	attachments, err := a.requests.ListAttachments(r.Context(), id)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	items := make([]attachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		items = append(items, toAttachmentResponse(attachment))
	}
	writeJSON(w, http.StatusOK, map[string]any{"attachments": items})
}

func (a *API) handleAttachmentDownload(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	attachmentID, err := pathUUID(r, "attachmentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	attachment, body, err := a.requests.OpenAttachment(r.Context(), attachmentID)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}
	defer body.Close()

	// The route carries the request ID the pipeline authorized; the
	// attachment must actually belong to it.
	if attachment.RequestID != requestID {
		writeError(w, http.StatusNotFound, "not_found", "not found")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachment.Name+`"`)
	if _, err := io.Copy(w, body); err != nil {
		a.logger.Error("attachment stream failed",
			"attachment_id", attachment.ID.String(),
			"error", err.Error())
	}
}
