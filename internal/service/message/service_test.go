package message

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
	"github.com/mshekhar/portfolio-api/pkg/apperror"
	"github.com/mshekhar/portfolio-api/pkg/logger"
)

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*model.ContactMessage
	statuses map[uuid.UUID]model.MessageStatus
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[uuid.UUID]*model.ContactMessage),
		statuses: make(map[uuid.UUID]model.MessageStatus),
	}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *model.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.ID] = msg
	return nil
}

func (r *fakeMessageRepo) Get(_ context.Context, id uuid.UUID) (*model.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return msg, nil
}

func (r *fakeMessageRepo) List(_ context.Context, filter repository.ListMessagesFilter) ([]*model.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ContactMessage
	for _, msg := range r.messages {
		if filter.Status != "" && msg.Status != filter.Status {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (r *fakeMessageRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.MessageStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return repository.ErrNotFound
	}
	r.statuses[id] = status
	return nil
}

func (r *fakeMessageRepo) MarkReplied(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.messages, id)
	return nil
}

type fakeDeliverer struct {
	mu              sync.Mutex
	notifications   []uuid.UUID
	autoReplies     []uuid.UUID
	notificationErr error
}

func (d *fakeDeliverer) SendNotification(_ context.Context, messageID uuid.UUID, _ string) (*model.DeliveryResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications = append(d.notifications, messageID)
	if d.notificationErr != nil {
		return nil, d.notificationErr
	}
	return &model.DeliveryResult{EmailID: "provider-1"}, nil
}

func (d *fakeDeliverer) SendAutoReply(_ context.Context, messageID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.autoReplies = append(d.autoReplies, messageID)
}

func newTestService() (*Service, *fakeMessageRepo, *fakeDeliverer) {
	repo := newFakeMessageRepo()
	deliverer := &fakeDeliverer{}
	svc := NewService(repo, deliverer, logger.NewLogger(&logger.Config{
		Level:  logger.ErrorLevel,
		Output: io.Discard,
	}))
	return svc, repo, deliverer
}

func validRequest() *model.SubmitMessageRequest {
	return &model.SubmitMessageRequest{
		Name:    "Jamie Vu",
		Email:   "Jamie@Example.com",
		Subject: "Project inquiry",
		Message: "I would like to discuss a project with you.",
	}
}

func TestSubmitStoresAndDispatches(t *testing.T) {
	svc, repo, deliverer := newTestService()

	msg, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "jamie@example.com", msg.Email)
	assert.Equal(t, model.MessageStatusUnread, msg.Status)
	assert.Equal(t, model.MessagePriorityMedium, msg.Priority)
	assert.Equal(t, "general", msg.Category)

	stored, err := repo.Get(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, msg, stored)

	assert.Equal(t, []uuid.UUID{msg.ID}, deliverer.notifications)
	assert.Equal(t, []uuid.UUID{msg.ID}, deliverer.autoReplies)
}

func TestSubmitNotificationFailureDoesNotFailSubmission(t *testing.T) {
	svc, repo, deliverer := newTestService()
	deliverer.notificationErr = errors.New("provider down")

	msg, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	// Both deliveries still ran and the message is stored.
	assert.Len(t, deliverer.notifications, 1)
	assert.Len(t, deliverer.autoReplies, 1)
	_, err = repo.Get(context.Background(), msg.ID)
	assert.NoError(t, err)
}

func TestSubmitCollectsAllViolations(t *testing.T) {
	svc, _, deliverer := newTestService()

	_, err := svc.Submit(context.Background(), &model.SubmitMessageRequest{
		Name:    "   ",
		Email:   "not-an-email",
		Subject: "",
		Message: "short",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email must be a valid address")
	assert.Contains(t, err.Error(), "subject is required")
	assert.Contains(t, err.Error(), "message must be at least 10 characters")

	assert.Empty(t, deliverer.notifications)
	assert.Empty(t, deliverer.autoReplies)
}

func TestSubmitStripsScriptBlocks(t *testing.T) {
	svc, _, _ := newTestService()

	req := validRequest()
	req.Message = "Hello <script>alert(1)</script> this is a real inquiry."

	msg, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.NotContains(t, msg.Message, "<script>")
	assert.Contains(t, msg.Message, "real inquiry")
}

func TestGetNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListRejectsInvalidStatus(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.List(context.Background(), repository.ListMessagesFilter{Status: "bogus"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdateStatus(t *testing.T) {
	svc, repo, _ := newTestService()

	msg, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), msg.ID, model.MessageStatusRead))
	assert.Equal(t, model.MessageStatusRead, repo.statuses[msg.ID])

	err = svc.UpdateStatus(context.Background(), msg.ID, "bogus")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = svc.UpdateStatus(context.Background(), uuid.New(), model.MessageStatusArchived)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService()

	msg, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), msg.ID))

	err = svc.Delete(context.Background(), msg.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
