package delivery

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

	"github.com/mshekhar/portfolio-api/internal/email"
	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
	"github.com/mshekhar/portfolio-api/pkg/apperror"
	"github.com/mshekhar/portfolio-api/pkg/logger"
	"github.com/mshekhar/portfolio-api/pkg/metrics"
	"github.com/mshekhar/portfolio-api/pkg/ratelimit"
	"github.com/mshekhar/portfolio-api/pkg/retry"
)

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*model.ContactMessage
	replies  []repliedCall
	replyErr error
}

type repliedCall struct {
	id           uuid.UUID
	replyContent string
	repliedAt    time.Time
}

func newFakeMessageRepo(msgs ...*model.ContactMessage) *fakeMessageRepo {
	repo := &fakeMessageRepo{messages: make(map[uuid.UUID]*model.ContactMessage)}
	for _, m := range msgs {
		repo.messages[m.ID] = m
	}
	return repo
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

func (r *fakeMessageRepo) List(_ context.Context, _ repository.ListMessagesFilter) ([]*model.ContactMessage, error) {
	return nil, nil
}

func (r *fakeMessageRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.MessageStatus) error {
	return nil
}

func (r *fakeMessageRepo) MarkReplied(_ context.Context, id uuid.UUID, replyContent string, repliedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replyErr != nil {
		return r.replyErr
	}
	r.replies = append(r.replies, repliedCall{id: id, replyContent: replyContent, repliedAt: repliedAt})
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

type fakeTemplateRepo struct {
	templates map[model.TemplateType]*model.EmailTemplate
}

func (r *fakeTemplateRepo) GetActiveByType(_ context.Context, templateType model.TemplateType) (*model.EmailTemplate, error) {
	tpl, ok := r.templates[templateType]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return tpl, nil
}

type fakeEmailLogRepo struct {
	mu      sync.Mutex
	entries []*model.EmailLog
	err     error
}

func (r *fakeEmailLogRepo) Create(_ context.Context, entry *model.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	records []*model.NotificationRecord
	err     error
}

func (r *fakeNotificationRepo) Create(_ context.Context, record *model.NotificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

type fakeAnalyticsRepo struct {
	mu      sync.Mutex
	entries []*model.MessageAnalytics
	err     error
}

func (r *fakeAnalyticsRepo) Upsert(_ context.Context, entry *model.MessageAnalytics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

type fakeProvider struct {
	mu     sync.Mutex
	calls  int
	emails []email.Email
	send   func(attempt int) (string, error)
}

func (p *fakeProvider) Send(_ context.Context, e email.Email) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.emails = append(p.emails, e)
	if p.send != nil {
		return p.send(p.calls)
	}
	return "provider-1", nil
}

type fixture struct {
	svc       *Service
	messages  *fakeMessageRepo
	templates *fakeTemplateRepo
	emailLogs *fakeEmailLogRepo
	records   *fakeNotificationRepo
	analytics *fakeAnalyticsRepo
	provider  *fakeProvider
	now       time.Time
}

func testSettings() Settings {
	return Settings{
		FromAddress:  "noreply@example.com",
		AdminEmail:   "admin@example.com",
		CompanyName:  "Example Portfolio",
		CompanyEmail: "hello@example.com",
		AdminURL:     "https://admin.example.com",
	}
}

func testTemplates() map[model.TemplateType]*model.EmailTemplate {
	return map[model.TemplateType]*model.EmailTemplate{
		model.TemplateTypeNotification: {
			ID:      uuid.New(),
			Type:    model.TemplateTypeNotification,
			Subject: "New message from {{senderName}}",
			HTML:    "<p>{{message}}</p>",
			Text:    "From {{senderEmail}}: {{message}}",
		},
		model.TemplateTypeReply: {
			ID:      uuid.New(),
			Type:    model.TemplateTypeReply,
			Subject: "Re: {{original_subject}}",
			HTML:    "<p>{{reply_content}}</p>",
			Text:    "Hi {{sender_name}}, {{reply_content}}",
		},
		model.TemplateTypeAutoReply: {
			ID:      uuid.New(),
			Type:    model.TemplateTypeAutoReply,
			Subject: "We received your message",
			HTML:    "<p>Thanks {{sender_name}}</p>",
			Text:    "Thanks {{sender_name}}, we will reply soon.",
		},
	}
}

func testMessage(createdAt time.Time) *model.ContactMessage {
	return &model.ContactMessage{
		ID:        uuid.New(),
		Name:      "Jamie Vu",
		Email:     "jamie@example.com",
		Subject:   "Project inquiry",
		Message:   "I would like to discuss a project with you.",
		Status:    model.MessageStatusUnread,
		Priority:  model.MessagePriorityMedium,
		Category:  "general",
		CreatedAt: createdAt,
	}
}

type fixtureOption func(*Deps)

func withLimiter(limiter *ratelimit.SlidingWindow) fixtureOption {
	return func(deps *Deps) { deps.Limiter = limiter }
}

func newFixture(t *testing.T, msgs []*model.ContactMessage, opts ...fixtureOption) *fixture {
	t.Helper()

	f := &fixture{
		messages:  newFakeMessageRepo(msgs...),
		templates: &fakeTemplateRepo{templates: testTemplates()},
		emailLogs: &fakeEmailLogRepo{},
		records:   &fakeNotificationRepo{},
		analytics: &fakeAnalyticsRepo{},
		provider:  &fakeProvider{},
		now:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	noSleep := func(context.Context, time.Duration) error { return nil }
	deps := Deps{
		Messages:  f.messages,
		Templates: f.templates,
		EmailLogs: f.emailLogs,
		Records:   f.records,
		Analytics: f.analytics,
		Provider:  f.provider,
		Limiter:   ratelimit.New(10, time.Minute),
		Retrier:   retry.New(3, time.Millisecond, retry.WithSleep(noSleep)),
		Metrics:   metrics.NewTestMetrics(),
		Logger:    logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard}),
		Settings:  testSettings(),
		Now:       func() time.Time { return f.now },
	}
	for _, opt := range opts {
		opt(&deps)
	}

	f.svc = NewService(deps)
	return f
}

func TestSendNotificationWritesAuditTrail(t *testing.T) {
	msg := testMessage(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	f := newFixture(t, []*model.ContactMessage{msg})

	result, err := f.svc.SendNotification(context.Background(), msg.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "provider-1", result.EmailID)

	require.Len(t, f.provider.emails, 1)
	sent := f.provider.emails[0]
	assert.Equal(t, "noreply@example.com", sent.From)
	assert.Equal(t, "admin@example.com", sent.To)
	assert.Equal(t, "New message from Jamie Vu", sent.Subject)
	assert.Equal(t, "From jamie@example.com: I would like to discuss a project with you.", sent.Text)

	require.Len(t, f.emailLogs.entries, 1)
	entry := f.emailLogs.entries[0]
	assert.Equal(t, model.TemplateTypeNotification, entry.Type)
	assert.Equal(t, model.EmailLogStatusSent, entry.Status)
	assert.Equal(t, "provider-1", entry.ProviderID)

	require.Len(t, f.records.records, 1)
	assert.Equal(t, msg.ID, f.records.records[0].MessageID)
	assert.Equal(t, entry.ID, f.records.records[0].EmailLogID)

	// Notification never mutates the message.
	assert.False(t, msg.IsReplied)
	assert.Empty(t, f.messages.replies)
}

func TestSendNotificationExplicitRecipient(t *testing.T) {
	msg := testMessage(time.Now())
	f := newFixture(t, []*model.ContactMessage{msg})

	_, err := f.svc.SendNotification(context.Background(), msg.ID, "  Ops@Example.COM ")
	require.NoError(t, err)

	require.Len(t, f.provider.emails, 1)
	assert.Equal(t, "ops@example.com", f.provider.emails[0].To)
}

func TestSendNotificationMessageNotFound(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.SendNotification(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Zero(t, f.provider.calls)
}

func TestSendNotificationTemplateMissing(t *testing.T) {
	msg := testMessage(time.Now())
	f := newFixture(t, []*model.ContactMessage{msg})
	delete(f.templates.templates, model.TemplateTypeNotification)

	_, err := f.svc.SendNotification(context.Background(), msg.ID, "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Zero(t, f.provider.calls)
}

func TestSendNotificationRateLimited(t *testing.T) {
	msg := testMessage(time.Now())
	f := newFixture(t, []*model.ContactMessage{msg},
		withLimiter(ratelimit.New(1, time.Minute)))

	_, err := f.svc.SendNotification(context.Background(), msg.ID, "")
	require.NoError(t, err)

	_, err = f.svc.SendNotification(context.Background(), msg.ID, "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindRateLimited, apperror.KindOf(err))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.False(t, appErr.ResetAt.IsZero())

	assert.Equal(t, 1, f.provider.calls)
}

func TestSendNotificationRetriesThenSucceeds(t *testing.T) {
	msg := testMessage(time.Now())
	f := newFixture(t, []*model.ContactMessage{msg})
	f.provider.send = func(attempt int) (string, error) {
		if attempt < 3 {
			return "", errors.New("connection reset")
		}
		return "provider-3", nil
	}

	result, err := f.svc.SendNotification(context.Background(), msg.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "provider-3", result.EmailID)
	assert.Equal(t, 3, f.provider.calls)
}

func TestSendNotificationProviderExhausted(t *testing.T) {
	msg := testMessage(time.Now())
	f := newFixture(t, []*model.ContactMessage{msg})
	f.provider.send = func(int) (string, error) {
		return "", errors.New("550 mailbox unavailable")
	}

	_, err := f.svc.SendNotification(context.Background(), msg.ID, "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindProvider, apperror.KindOf(err))
	assert.Equal(t, 3, f.provider.calls)

	// Failed attempt still lands in the audit trail.
	require.Len(t, f.emailLogs.entries, 1)
	assert.Equal(t, model.EmailLogStatusFailed, f.emailLogs.entries[0].Status)
	assert.Contains(t, f.emailLogs.entries[0].ErrorMessage, "550")

	assert.Empty(t, f.records.records)
}

func TestSendNotificationSecondaryWriteFailureStillSucceeds(t *testing.T) {
	msg := testMessage(time.Now())
	f := newFixture(t, []*model.ContactMessage{msg})
	f.emailLogs.err = errors.New("disk full")
	f.records.err = errors.New("disk full")

	result, err := f.svc.SendNotification(context.Background(), msg.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "provider-1", result.EmailID)
}

func TestSendReplyMutatesMessageAndAnalytics(t *testing.T) {
	repliedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := testMessage(repliedAt.Add(-90 * time.Minute))
	f := newFixture(t, []*model.ContactMessage{msg})

	result, err := f.svc.SendReply(context.Background(), msg.ID, "Thanks for reaching out, let's talk next week.", "Maya")
	require.NoError(t, err)

	require.Len(t, f.provider.emails, 1)
	sent := f.provider.emails[0]
	assert.Equal(t, "jamie@example.com", sent.To)
	assert.Equal(t, "Re: Project inquiry", sent.Subject)
	assert.Contains(t, sent.Text, "Thanks for reaching out")

	require.Len(t, f.messages.replies, 1)
	assert.Equal(t, msg.ID, f.messages.replies[0].id)
	assert.Equal(t, "Thanks for reaching out, let's talk next week.", f.messages.replies[0].replyContent)
	assert.Equal(t, repliedAt, f.messages.replies[0].repliedAt)

	// 90 minutes rounds half away from zero on both axes.
	require.Len(t, f.analytics.entries, 1)
	assert.Equal(t, 2.0, f.analytics.entries[0].ResponseTimeHours)
	assert.Equal(t, 90.0, f.analytics.entries[0].ResponseTimeMinutes)

	require.NotNil(t, result.ResponseTimeHours)
	assert.Equal(t, 2.0, *result.ResponseTimeHours)
}

func TestSendReplyContentTooShort(t *testing.T) {
	msg := testMessage(time.Now())
	f := newFixture(t, []*model.ContactMessage{msg})

	_, err := f.svc.SendReply(context.Background(), msg.ID, "  short  ", "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Zero(t, f.provider.calls)
	assert.Empty(t, f.messages.replies)
}

func TestSendReplySecondaryFailuresStillSucceed(t *testing.T) {
	msg := testMessage(time.Now().Add(-time.Hour))
	f := newFixture(t, []*model.ContactMessage{msg})
	f.messages.replyErr = errors.New("deadlock detected")
	f.analytics.err = errors.New("deadlock detected")

	result, err := f.svc.SendReply(context.Background(), msg.ID, "Appreciate the detailed writeup, replying inline.", "")
	require.NoError(t, err)
	assert.Equal(t, "provider-1", result.EmailID)
}

func TestSendAutoReplySends(t *testing.T) {
	msg := testMessage(time.Now())
	f := newFixture(t, []*model.ContactMessage{msg})

	f.svc.SendAutoReply(context.Background(), msg.ID)

	require.Len(t, f.provider.emails, 1)
	assert.Equal(t, "jamie@example.com", f.provider.emails[0].To)
	assert.Contains(t, f.provider.emails[0].Text, "Thanks Jamie Vu")

	require.Len(t, f.emailLogs.entries, 1)
	assert.Equal(t, model.TemplateTypeAutoReply, f.emailLogs.entries[0].Type)

	// Acknowledgments never mutate the message or the record table.
	assert.Empty(t, f.messages.replies)
	assert.Empty(t, f.records.records)
}

func TestSendAutoReplySwallowsFailures(t *testing.T) {
	f := newFixture(t, nil)

	// Unknown message: nothing to send, nothing to surface.
	f.svc.SendAutoReply(context.Background(), uuid.New())
	assert.Zero(t, f.provider.calls)

	msg := testMessage(time.Now())
	require.NoError(t, f.messages.Create(context.Background(), msg))
	f.provider.send = func(int) (string, error) {
		return "", errors.New("timeout")
	}

	f.svc.SendAutoReply(context.Background(), msg.ID)
	assert.Equal(t, 3, f.provider.calls)
}
