package message

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
	"github.com/mshekhar/portfolio-api/pkg/apperror"
	"github.com/mshekhar/portfolio-api/pkg/logger"
	"github.com/mshekhar/portfolio-api/pkg/sanitize"
)

// Deliverer is the slice of the delivery service the submission flow
// needs.
type Deliverer interface {
	SendNotification(ctx context.Context, messageID uuid.UUID, adminEmail string) (*model.DeliveryResult, error)
	SendAutoReply(ctx context.Context, messageID uuid.UUID)
}

type Service struct {
	messages  repository.MessageRepository
	deliverer Deliverer
	logger    *logger.Logger
}

func NewService(messages repository.MessageRepository, deliverer Deliverer, logger *logger.Logger) *Service {
	return &Service{
		messages:  messages,
		deliverer: deliverer,
		logger:    logger,
	}
}

// Submit stores a contact-form submission and triggers the admin
// notification and sender acknowledgment as two independent tasks.
// Either delivery failing never fails the submission: the message is
// already stored, and each task's outcome lands in the logs on its own.
func (s *Service) Submit(ctx context.Context, req *model.SubmitMessageRequest) (*model.ContactMessage, error) {
	name := sanitize.Text(req.Name)
	emailAddr := sanitize.Email(req.Email)
	subject := sanitize.Text(req.Subject)
	body := sanitize.Text(req.Message)

	var violations []string
	if name == "" {
		violations = append(violations, "name is required")
	}
	if !sanitize.ValidEmail(emailAddr) {
		violations = append(violations, "email must be a valid address")
	}
	if subject == "" {
		violations = append(violations, "subject is required")
	}
	if len(body) < 10 {
		violations = append(violations, "message must be at least 10 characters")
	}
	if len(violations) > 0 {
		return nil, apperror.Validation(strings.Join(violations, "; "))
	}

	msg := &model.ContactMessage{
		ID:       uuid.New(),
		Name:     name,
		Email:    emailAddr,
		Subject:  subject,
		Message:  body,
		Status:   model.MessageStatusUnread,
		Priority: model.MessagePriorityMedium,
		Category: "general",
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperror.Internal(err)
	}

	s.dispatchDeliveries(ctx, msg.ID)

	return msg, nil
}

// dispatchDeliveries runs both submission-time deliveries in parallel
// and joins them independently. Errors are captured per task; they are
// logged, never combined, and never propagated to the submitter.
func (s *Service) dispatchDeliveries(ctx context.Context, messageID uuid.UUID) {
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := s.deliverer.SendNotification(ctx, messageID, ""); err != nil {
			s.logger.Error(err, "admin notification failed", "message_id", messageID.String())
		}
	}()
	go func() {
		defer wg.Done()
		// SendAutoReply swallows its own errors
		s.deliverer.SendAutoReply(ctx, messageID)
	}()
	wg.Wait()
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ContactMessage, error) {
	msg, err := s.messages.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("message")
		}
		return nil, apperror.Internal(err)
	}
	return msg, nil
}

func (s *Service) List(ctx context.Context, filter repository.ListMessagesFilter) ([]*model.ContactMessage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("invalid status filter")
	}

	messages, err := s.messages.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return messages, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MessageStatus) error {
	if !status.Valid() {
		return apperror.Validation("invalid status")
	}

	if err := s.messages.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("message")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.messages.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("message")
		}
		return apperror.Internal(err)
	}
	return nil
}
