package delivery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mshekhar/portfolio-api/internal/email"
	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
	"github.com/mshekhar/portfolio-api/pkg/apperror"
	"github.com/mshekhar/portfolio-api/pkg/logger"
	"github.com/mshekhar/portfolio-api/pkg/messaging"
	"github.com/mshekhar/portfolio-api/pkg/metrics"
	"github.com/mshekhar/portfolio-api/pkg/ratelimit"
	"github.com/mshekhar/portfolio-api/pkg/render"
	"github.com/mshekhar/portfolio-api/pkg/retry"
	"github.com/mshekhar/portfolio-api/pkg/sanitize"
)

const eventsChannel = "delivery_events"

// Settings holds the fixed addresses and identity strings every
// rendered email draws from.
type Settings struct {
	FromAddress  string
	AdminEmail   string
	CompanyName  string
	CompanyEmail string
	AdminURL     string
	SendTimeout  time.Duration
}

// Service sequences one delivery: validate, rate-limit, fetch, render,
// send, then the best-effort audit tail. Everything before the provider
// call fails the delivery; everything after it only logs.
type Service struct {
	messages  repository.MessageRepository
	templates repository.TemplateRepository
	emailLogs repository.EmailLogRepository
	records   repository.NotificationRepository
	analytics repository.AnalyticsRepository
	provider  email.Provider
	limiter   *ratelimit.SlidingWindow
	retrier   *retry.Executor
	broker    messaging.Broker
	metrics   *metrics.Metrics
	logger    *logger.Logger
	settings  Settings
	now       func() time.Time
}

// Deps wires a Service. Broker is optional; a nil broker disables
// event publishing. Now defaults to time.Now.
type Deps struct {
	Messages  repository.MessageRepository
	Templates repository.TemplateRepository
	EmailLogs repository.EmailLogRepository
	Records   repository.NotificationRepository
	Analytics repository.AnalyticsRepository
	Provider  email.Provider
	Limiter   *ratelimit.SlidingWindow
	Retrier   *retry.Executor
	Broker    messaging.Broker
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	Settings  Settings
	Now       func() time.Time
}

func NewService(deps Deps) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		messages:  deps.Messages,
		templates: deps.Templates,
		emailLogs: deps.EmailLogs,
		records:   deps.Records,
		analytics: deps.Analytics,
		provider:  deps.Provider,
		limiter:   deps.Limiter,
		retrier:   deps.Retrier,
		broker:    deps.Broker,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		settings:  deps.Settings,
		now:       now,
	}
}

// SendNotification delivers the admin alert for a message. The
// recipient is adminEmail when given, otherwise the configured admin
// address. The contact message itself is not mutated.
func (s *Service) SendNotification(ctx context.Context, messageID uuid.UUID, adminEmail string) (*model.DeliveryResult, error) {
	start := s.now()

	recipient := sanitize.Email(adminEmail)
	if recipient == "" {
		recipient = sanitize.Email(s.settings.AdminEmail)
	}

	if err := s.checkLimit(model.TemplateTypeNotification, messageID); err != nil {
		return nil, err
	}

	msg, err := s.fetchMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	tpl, err := s.fetchTemplate(ctx, model.TemplateTypeNotification)
	if err != nil {
		return nil, err
	}

	vars := render.NotificationVars{
		SenderName:  sanitize.Text(msg.Name),
		SenderEmail: sanitize.Email(msg.Email),
		Subject:     sanitize.Text(msg.Subject),
		Message:     sanitize.Text(msg.Message),
		Priority:    string(msg.Priority),
		Category:    msg.Category,
		CreatedAt:   msg.CreatedAt.Format(time.RFC1123),
		AdminURL:    s.settings.AdminURL,
		MessageID:   msg.ID.String(),
		CompanyName: s.settings.CompanyName,
	}
	rendered := render.Render(render.Template{Subject: tpl.Subject, HTML: tpl.HTML, Text: tpl.Text}, vars.Vars())

	providerID, err := s.send(ctx, model.TemplateTypeNotification, msg.ID, recipient, rendered)
	if err != nil {
		return nil, err
	}

	// Email is out the door; everything below is best-effort.
	logID := s.logDelivery(ctx, model.TemplateTypeNotification, recipient, rendered, providerID)
	s.recordNotification(ctx, msg.ID, logID, model.TemplateTypeNotification)
	s.publishEvent(ctx, model.TemplateTypeNotification, msg.ID, providerID, nil)

	result := &model.DeliveryResult{EmailID: providerID, Duration: s.now().Sub(start)}
	s.logSuccess(model.TemplateTypeNotification, recipient, result)
	return result, nil
}

// SendReply delivers the admin's manual reply to the message sender,
// marks the message replied and upserts its response-time analytics.
func (s *Service) SendReply(ctx context.Context, messageID uuid.UUID, replyContent, adminName string) (*model.DeliveryResult, error) {
	start := s.now()

	replyContent = sanitize.Text(replyContent)
	if len(replyContent) < 10 {
		return nil, apperror.Validation("reply_content must be at least 10 characters")
	}

	if err := s.checkLimit(model.TemplateTypeReply, messageID); err != nil {
		return nil, err
	}

	msg, err := s.fetchMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	tpl, err := s.fetchTemplate(ctx, model.TemplateTypeReply)
	if err != nil {
		return nil, err
	}

	recipient := sanitize.Email(msg.Email)

	if adminName == "" {
		adminName = s.settings.CompanyName
	}
	vars := s.replyVars(msg, replyContent, adminName)
	rendered := render.Render(render.Template{Subject: tpl.Subject, HTML: tpl.HTML, Text: tpl.Text}, vars.Vars())

	providerID, err := s.send(ctx, model.TemplateTypeReply, msg.ID, recipient, rendered)
	if err != nil {
		return nil, err
	}

	repliedAt := s.now()
	hours, minutes := responseTime(msg.CreatedAt, repliedAt)

	logID := s.logDelivery(ctx, model.TemplateTypeReply, recipient, rendered, providerID)
	s.recordNotification(ctx, msg.ID, logID, model.TemplateTypeReply)
	s.markReplied(ctx, msg.ID, replyContent, repliedAt)
	s.upsertAnalytics(ctx, msg.ID, hours, minutes, repliedAt)
	s.publishEvent(ctx, model.TemplateTypeReply, msg.ID, providerID, nil)

	result := &model.DeliveryResult{
		EmailID:           providerID,
		Duration:          s.now().Sub(start),
		ResponseTimeHours: &hours,
	}
	s.logSuccess(model.TemplateTypeReply, recipient, result)
	return result, nil
}

// SendAutoReply delivers the acknowledgment email back to the sender.
// Fire-and-forget: every failure is logged and swallowed so a broken
// acknowledgment can never block the submission flow.
func (s *Service) SendAutoReply(ctx context.Context, messageID uuid.UUID) {
	start := s.now()

	if err := s.checkLimit(model.TemplateTypeAutoReply, messageID); err != nil {
		s.logger.Warn("auto-reply skipped", "message_id", messageID.String(), "reason", err.Error())
		return
	}

	msg, err := s.fetchMessage(ctx, messageID)
	if err != nil {
		s.logger.Error(err, "auto-reply failed", "message_id", messageID.String())
		return
	}

	tpl, err := s.fetchTemplate(ctx, model.TemplateTypeAutoReply)
	if err != nil {
		s.logger.Error(err, "auto-reply failed", "message_id", messageID.String())
		return
	}

	recipient := sanitize.Email(msg.Email)
	vars := s.replyVars(msg, "", s.settings.CompanyName)
	rendered := render.Render(render.Template{Subject: tpl.Subject, HTML: tpl.HTML, Text: tpl.Text}, vars.Vars())

	providerID, err := s.send(ctx, model.TemplateTypeAutoReply, msg.ID, recipient, rendered)
	if err != nil {
		s.logger.Error(err, "auto-reply failed", "message_id", messageID.String())
		return
	}

	s.logDelivery(ctx, model.TemplateTypeAutoReply, recipient, rendered, providerID)
	s.publishEvent(ctx, model.TemplateTypeAutoReply, msg.ID, providerID, nil)

	s.logger.Info("auto-reply sent",
		"message_id", messageID.String(),
		"email_id", providerID,
		"duration", s.now().Sub(start).String())
}

func (s *Service) replyVars(msg *model.ContactMessage, replyContent, adminName string) render.ReplyVars {
	return render.ReplyVars{
		SenderName:      sanitize.Text(msg.Name),
		ReplyContent:    replyContent,
		OriginalMessage: sanitize.Text(msg.Message),
		OriginalSubject: sanitize.Text(msg.Subject),
		AdminName:       adminName,
		CompanyName:     s.settings.CompanyName,
		CompanyEmail:    s.settings.CompanyEmail,
	}
}

func (s *Service) checkLimit(deliveryType model.TemplateType, messageID uuid.UUID) error {
	key := fmt.Sprintf("%s:%s", deliveryType, messageID)
	if s.limiter.Allow(key) {
		return nil
	}
	s.metrics.RateLimitRejections.WithLabelValues(string(deliveryType)).Inc()
	return apperror.RateLimited(s.limiter.ResetAt(key))
}

func (s *Service) fetchMessage(ctx context.Context, id uuid.UUID) (*model.ContactMessage, error) {
	msg, err := s.messages.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("message")
		}
		return nil, apperror.Internal(err)
	}
	return msg, nil
}

func (s *Service) fetchTemplate(ctx context.Context, templateType model.TemplateType) (*model.EmailTemplate, error) {
	tpl, err := s.templates.GetActiveByType(ctx, templateType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("active %s template", templateType))
		}
		return nil, apperror.Internal(err)
	}
	return tpl, nil
}

// send validates the final payload and pushes it through the provider
// inside the retry budget. Retry exhaustion surfaces as a provider
// error; a failed attempt row is still written to the audit trail.
func (s *Service) send(ctx context.Context, deliveryType model.TemplateType, messageID uuid.UUID, recipient string, rendered render.Rendered) (string, error) {
	violations := sanitize.ValidateSendParams(sanitize.SendParams{
		Recipient: recipient,
		Sender:    s.settings.FromAddress,
		Subject:   rendered.Subject,
		Message:   rendered.Text,
	})
	if len(violations) > 0 {
		return "", apperror.Validation(strings.Join(violations, "; "))
	}

	var providerID string
	err := s.retrier.Do(ctx, fmt.Sprintf("send %s email", deliveryType), func(ctx context.Context) error {
		sendCtx := ctx
		if s.settings.SendTimeout > 0 {
			var cancel context.CancelFunc
			sendCtx, cancel = context.WithTimeout(ctx, s.settings.SendTimeout)
			defer cancel()
		}

		id, sendErr := s.provider.Send(sendCtx, email.Email{
			From:    s.settings.FromAddress,
			To:      recipient,
			Subject: rendered.Subject,
			HTML:    rendered.HTML,
			Text:    rendered.Text,
		})
		if sendErr != nil {
			s.metrics.ProviderAttempts.WithLabelValues("error").Inc()
			return sendErr
		}

		s.metrics.ProviderAttempts.WithLabelValues("success").Inc()
		providerID = id
		return nil
	})
	if err != nil {
		s.metrics.DeliveriesTotal.WithLabelValues(string(deliveryType), "failed").Inc()
		s.logFailedDelivery(ctx, deliveryType, recipient, rendered, err)
		s.publishEvent(ctx, deliveryType, messageID, "", err)
		return "", apperror.Provider("delivery failed", err)
	}

	s.metrics.DeliveriesTotal.WithLabelValues(string(deliveryType), "sent").Inc()
	return providerID, nil
}

// logDelivery writes the sent email's audit row. Best-effort: the row
// matters less than the response the caller is waiting on.
func (s *Service) logDelivery(ctx context.Context, deliveryType model.TemplateType, recipient string, rendered render.Rendered, providerID string) uuid.UUID {
	entry := &model.EmailLog{
		ID:         uuid.New(),
		Type:       deliveryType,
		Recipient:  recipient,
		Subject:    rendered.Subject,
		HTML:       rendered.HTML,
		Text:       rendered.Text,
		ProviderID: providerID,
		Status:     model.EmailLogStatusSent,
	}
	if err := s.emailLogs.Create(ctx, entry); err != nil {
		s.secondaryFailure("email log insert", err)
	}
	return entry.ID
}

func (s *Service) logFailedDelivery(ctx context.Context, deliveryType model.TemplateType, recipient string, rendered render.Rendered, sendErr error) {
	entry := &model.EmailLog{
		ID:           uuid.New(),
		Type:         deliveryType,
		Recipient:    recipient,
		Subject:      rendered.Subject,
		HTML:         rendered.HTML,
		Text:         rendered.Text,
		Status:       model.EmailLogStatusFailed,
		ErrorMessage: sendErr.Error(),
	}
	if err := s.emailLogs.Create(ctx, entry); err != nil {
		s.secondaryFailure("failed email log insert", err)
	}
}

func (s *Service) recordNotification(ctx context.Context, messageID, emailLogID uuid.UUID, deliveryType model.TemplateType) {
	record := &model.NotificationRecord{
		ID:         uuid.New(),
		MessageID:  messageID,
		EmailLogID: emailLogID,
		Type:       deliveryType,
	}
	if err := s.records.Create(ctx, record); err != nil {
		s.secondaryFailure("notification record insert", err)
	}
}

func (s *Service) markReplied(ctx context.Context, messageID uuid.UUID, replyContent string, repliedAt time.Time) {
	if err := s.messages.MarkReplied(ctx, messageID, replyContent, repliedAt); err != nil {
		s.secondaryFailure("message reply update", err)
	}
}

func (s *Service) upsertAnalytics(ctx context.Context, messageID uuid.UUID, hours, minutes float64, repliedAt time.Time) {
	entry := &model.MessageAnalytics{
		ID:                  uuid.New(),
		MessageID:           messageID,
		ResponseTimeHours:   hours,
		ResponseTimeMinutes: minutes,
		RepliedAt:           repliedAt,
	}
	if err := s.analytics.Upsert(ctx, entry); err != nil {
		s.secondaryFailure("analytics upsert", err)
	}
}

func (s *Service) publishEvent(ctx context.Context, deliveryType model.TemplateType, messageID uuid.UUID, emailID string, sendErr error) {
	if s.broker == nil {
		return
	}

	event := messaging.DeliveryEvent{
		Type:      string(deliveryType),
		MessageID: messageID.String(),
		EmailID:   emailID,
		Status:    "sent",
	}
	if sendErr != nil {
		event.Status = "failed"
		event.Error = sendErr.Error()
	}

	if err := s.broker.Publish(ctx, eventsChannel, event); err != nil {
		s.secondaryFailure("event publish", err)
	}
}

// secondaryFailure handles any write failing after a successful send:
// the user-facing goal already succeeded, so it is logged and counted,
// never surfaced.
func (s *Service) secondaryFailure(operation string, err error) {
	s.metrics.SecondaryWriteFailures.WithLabelValues(operation).Inc()
	s.logger.Error(apperror.Secondary(operation, err), "secondary write failed", "operation", operation)
}

func (s *Service) logSuccess(deliveryType model.TemplateType, recipient string, result *model.DeliveryResult) {
	s.metrics.DeliveryDuration.WithLabelValues(string(deliveryType)).Observe(result.Duration.Seconds())
	s.logger.Info("delivery complete",
		"type", string(deliveryType),
		"recipient", recipient,
		"email_id", result.EmailID,
		"duration", result.Duration.String())
}

// responseTime computes the analytics figures from submission to
// reply. Both values round half away from zero: a reply 90 minutes
// after submission records 2 hours and 90 minutes.
func responseTime(createdAt, repliedAt time.Time) (hours, minutes float64) {
	delta := repliedAt.Sub(createdAt)
	return math.Round(delta.Hours()), math.Round(delta.Minutes())
}
