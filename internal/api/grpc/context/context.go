package context

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"

	"github.com/dkovalev/deskflow-server/internal/model"
)

// Metadata keys used to carry the verified principal between
// the authentication interceptor and handlers.
const (
	subjectIDKey = "principal-subject-id"
	roleKey      = "principal-role"
	sessionIDKey = "principal-session-id"
	issuedAtKey  = "principal-issued-at"
	expiresAtKey = "principal-expires-at"
)

var _ model.ContextManager = (*Manager)(nil)

// Manager stores and retrieves the verified Principal in gRPC
// incoming metadata.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetPrincipal writes the principal fields into incoming metadata and
// returns the derived context.
func (m *Manager) SetPrincipal(ctx context.Context, principal model.Principal) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.MD{}
	} else {
		md = md.Copy()
	}

	md.Set(subjectIDKey, principal.SubjectID.String())
	md.Set(roleKey, string(principal.Role))
	md.Set(sessionIDKey, principal.SessionID.String())
	md.Set(issuedAtKey, strconv.FormatInt(principal.IssuedAt.Unix(), 10))
	md.Set(expiresAtKey, strconv.FormatInt(principal.ExpiresAt.Unix(), 10))

	return metadata.NewIncomingContext(ctx, md)
}

// GetPrincipal reads the principal back out of incoming metadata.
// It returns false when any required field is absent or malformed.
func (m *Manager) GetPrincipal(ctx context.Context) (model.Principal, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return model.Principal{}, false
	}

	subjectID, ok := parseUUID(md, subjectIDKey)
	if !ok {
		return model.Principal{}, false
	}
	sessionID, ok := parseUUID(md, sessionIDKey)
	if !ok {
		return model.Principal{}, false
	}

	roles := md.Get(roleKey)
	if len(roles) == 0 {
		return model.Principal{}, false
	}
	role, err := model.ParseRole(roles[0])
	if err != nil {
		return model.Principal{}, false
	}

	issuedAt, ok := parseUnix(md, issuedAtKey)
	if !ok {
		return model.Principal{}, false
	}
	expiresAt, ok := parseUnix(md, expiresAtKey)
	if !ok {
		return model.Principal{}, false
	}

	return model.Principal{
		SubjectID: subjectID,
		Role:      role,
		SessionID: sessionID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, true
}

func parseUUID(md metadata.MD, key string) (uuid.UUID, bool) {
	values := md.Get(key)
	if len(values) == 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(values[0])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseUnix(md metadata.MD, key string) (time.Time, bool) {
	values := md.Get(key)
	if len(values) == 0 {
		return time.Time{}, false
	}
	seconds, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(seconds, 0), true
}
