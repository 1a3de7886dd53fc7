package whatsapp

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userRepo "hustlr/database/repository/user"
	"hustlr/models"
	"hustlr/services/booking"
	"hustlr/utils"
)

// --- Fakes ---

type fakeConversationRepo struct {
	mu      sync.Mutex
	records map[string]*models.Conversation // keyed by source|message_id
	byID    map[string]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		records: make(map[string]*models.Conversation),
		byID:    make(map[string]*models.Conversation),
	}
}

func dedupKey(source, messageID string) string { return source + "|" + messageID }

func (f *fakeConversationRepo) EnsureIndexes() error { return nil }

func (f *fakeConversationRepo) InsertIfAbsent(_ context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := dedupKey(conv.Source, conv.MessageID)
	if existing, ok := f.records[key]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *conv
	f.records[key] = &cp
	f.byID[cp.ID] = &cp
	return conv, true, nil
}

func (f *fakeConversationRepo) MarkCompleted(_ context.Context, id, response string, agentSuccess bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return errors.New("conversation not found")
	}
	rec.Response = response
	rec.AgentSuccess = agentSuccess
	rec.ProcessingStatus = models.ProcessingCompleted
	return nil
}

func (f *fakeConversationRepo) MarkFailed(_ context.Context, id, response, processingError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return errors.New("conversation not found")
	}
	rec.Response = response
	rec.ProcessingError = processingError
	rec.ProcessingStatus = models.ProcessingFailed
	return nil
}

func (f *fakeConversationRepo) get(source, messageID string) *models.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[dedupKey(source, messageID)]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

type mockResponder struct {
	mu       sync.Mutex
	calls    int
	lastText string
	lastKey  string
	reply    *Reply
	err      error
}

func (m *mockResponder) Respond(_ context.Context, text, sessionKey string) (*Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastText = text
	m.lastKey = sessionKey
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}

func (m *mockResponder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakePhoneDirectory struct {
	users map[string]models.User // keyed by phone number
}

func (f *fakePhoneDirectory) EnsureIndexes() error { return nil }
func (f *fakePhoneDirectory) Create(_ context.Context, u *models.User) error {
	f.users[u.PhoneNumber] = *u
	return nil
}
func (f *fakePhoneDirectory) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, userRepo.ErrNotFound
}
func (f *fakePhoneDirectory) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	u, ok := f.users[phone]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	cp := u
	return &cp, nil
}
func (f *fakePhoneDirectory) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type mockBookingService struct {
	createFn             func(ctx context.Context, actor booking.Actor, req booking.CreateBookingRequest) (*models.Booking, error)
	cancelOrRescheduleFn func(ctx context.Context, actor booking.Actor, bookingID string, req booking.CancelRescheduleRequest) (*models.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, actor booking.Actor, req booking.CreateBookingRequest) (*models.Booking, error) {
	if m.createFn != nil {
		return m.createFn(ctx, actor, req)
	}
	return nil, errors.New("unexpected Create call")
}

func (m *mockBookingService) SetStatus(_ context.Context, _ booking.Actor, _, _ string) (*models.Booking, error) {
	return nil, errors.New("unexpected SetStatus call")
}

func (m *mockBookingService) CancelOrReschedule(ctx context.Context, actor booking.Actor, bookingID string, req booking.CancelRescheduleRequest) (*models.Booking, error) {
	if m.cancelOrRescheduleFn != nil {
		return m.cancelOrRescheduleFn(ctx, actor, bookingID, req)
	}
	return nil, errors.New("unexpected CancelOrReschedule call")
}

func (m *mockBookingService) List(_ context.Context, _ booking.Actor) ([]models.Booking, error) {
	return nil, errors.New("unexpected List call")
}

// --- Helpers ---

func newMessageService(responder *mockResponder) (*DefaultMessageService, *fakeConversationRepo) {
	repo := newFakeConversationRepo()
	svc := &DefaultMessageService{
		Repo:      repo,
		UserRepo:  &fakePhoneDirectory{users: make(map[string]models.User)},
		Responder: responder,
	}
	return svc, repo
}

func inbound(messageID, message string) Inbound {
	return Inbound{
		Sender:    "+15551110001@s.whatsapp.net",
		Message:   message,
		MessageID: messageID,
		Timestamp: "2026-02-01T12:00:00Z",
	}
}

// --- Tests ---

func TestHandleStoresCompletedRecord(t *testing.T) {
	responder := &mockResponder{reply: &Reply{Success: true, Text: "Hello! How can I help?"}}
	svc, repo := newMessageService(responder)

	out, err := svc.Handle(context.Background(), inbound("msg-1", "hi"))
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.False(t, out.Deduplicated)
	assert.Equal(t, "Hello! How can I help?", out.ReplyText)
	assert.Equal(t, "msg-1", out.MessageID)
	assert.NotEmpty(t, out.ConversationID)

	rec := repo.get("whatsapp", "msg-1")
	require.NotNil(t, rec)
	assert.Equal(t, models.ProcessingCompleted, rec.ProcessingStatus)
	assert.Equal(t, "Hello! How can I help?", rec.Response)
	assert.True(t, rec.AgentSuccess)
	assert.Equal(t, "+15551110001", rec.UserID)
	assert.Equal(t, 1, responder.callCount())
	assert.Equal(t, "whatsapp_+15551110001", responder.lastKey)
}

func TestHandleReplayReturnsStoredReply(t *testing.T) {
	responder := &mockResponder{reply: &Reply{Success: true, Text: "first answer"}}
	svc, _ := newMessageService(responder)

	first, err := svc.Handle(context.Background(), inbound("msg-1", "hi"))
	require.NoError(t, err)

	second, err := svc.Handle(context.Background(), inbound("msg-1", "hi"))
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.ReplyText, second.ReplyText)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	// The responder must not run again for a replayed delivery.
	assert.Equal(t, 1, responder.callCount())
}

func TestHandleSameMessageIDDifferentSource(t *testing.T) {
	responder := &mockResponder{reply: &Reply{Success: true, Text: "ok"}}
	svc, _ := newMessageService(responder)

	msg := inbound("msg-1", "hi")
	_, err := svc.Handle(context.Background(), msg)
	require.NoError(t, err)

	msg.Source = "telegram"
	out, err := svc.Handle(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, out.Deduplicated)
	assert.Equal(t, 2, responder.callCount())
}

func TestHandleRejectsBlankMessage(t *testing.T) {
	responder := &mockResponder{reply: &Reply{Success: true, Text: "ok"}}
	svc, repo := newMessageService(responder)

	for _, message := range []string{"", "   ", "\n\t"} {
		_, err := svc.Handle(context.Background(), inbound("msg-blank", message))
		var svcErr *utils.ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, utils.CodeInvalidInput, svcErr.Code)
	}

	// A rejected delivery leaves no record and a retry with real text works.
	assert.Nil(t, repo.get("whatsapp", "msg-blank"))
	out, err := svc.Handle(context.Background(), inbound("msg-blank", "hello"))
	require.NoError(t, err)
	assert.False(t, out.Deduplicated)
}

func TestHandleUnwrapsJSONEnvelope(t *testing.T) {
	responder := &mockResponder{reply: &Reply{
		Success: true,
		Text:    `{"message": "Your booking is confirmed for tomorrow at 10:00."}`,
	}}
	svc, _ := newMessageService(responder)

	out, err := svc.Handle(context.Background(), inbound("msg-1", "confirm my booking"))
	require.NoError(t, err)
	assert.Equal(t, "Your booking is confirmed for tomorrow at 10:00.", out.ReplyText)
}

func TestHandlePassesThroughNonEnvelopeJSON(t *testing.T) {
	raw := `{"status": "ok"}`
	responder := &mockResponder{reply: &Reply{Success: true, Text: raw}}
	svc, _ := newMessageService(responder)

	out, err := svc.Handle(context.Background(), inbound("msg-1", "hi"))
	require.NoError(t, err)
	assert.Equal(t, raw, out.ReplyText)
}

func TestHandleEmptyReplyText(t *testing.T) {
	responder := &mockResponder{reply: &Reply{Success: true, Text: "   "}}
	svc, _ := newMessageService(responder)

	out, err := svc.Handle(context.Background(), inbound("msg-1", "hi"))
	require.NoError(t, err)
	assert.Equal(t, emptyReply, out.ReplyText)
}

func TestHandleResponderFailure(t *testing.T) {
	responder := &mockResponder{err: errors.New("upstream timeout")}
	svc, repo := newMessageService(responder)

	out, err := svc.Handle(context.Background(), inbound("msg-1", "hi"))
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, DefaultErrorReply, out.ReplyText)
	assert.Equal(t, "internal_error", out.Error)

	rec := repo.get("whatsapp", "msg-1")
	require.NotNil(t, rec)
	assert.Equal(t, models.ProcessingFailed, rec.ProcessingStatus)
	assert.Equal(t, DefaultErrorReply, rec.Response)
	assert.Equal(t, "upstream timeout", rec.ProcessingError)
}

func TestHandleReplayAfterFailureReturnsCachedFallback(t *testing.T) {
	responder := &mockResponder{err: errors.New("upstream timeout")}
	svc, _ := newMessageService(responder)

	_, err := svc.Handle(context.Background(), inbound("msg-1", "hi"))
	require.NoError(t, err)

	// Even if the responder has recovered, the delivery stays resolved
	// to the cached fallback.
	responder.mu.Lock()
	responder.err = nil
	responder.reply = &Reply{Success: true, Text: "recovered"}
	responder.mu.Unlock()

	out, err := svc.Handle(context.Background(), inbound("msg-1", "hi"))
	require.NoError(t, err)
	assert.True(t, out.Deduplicated)
	assert.Equal(t, DefaultErrorReply, out.ReplyText)
	assert.Equal(t, 1, responder.callCount())
}

func TestHandleDispatchesCreateBookingAction(t *testing.T) {
	responder := &mockResponder{reply: &Reply{
		Success: true,
		Text:    "Booked you in for Friday at 14:00.",
		Action: &BookingAction{
			Type:          ActionCreateBooking,
			ProviderID:    "prov-1",
			ServiceType:   "plumbing",
			Date:          "2026-03-06",
			Time:          "14:00",
			DurationHours: 2,
		},
	}}
	svc, _ := newMessageService(responder)

	var gotActor booking.Actor
	var gotReq booking.CreateBookingRequest
	svc.BookingSvc = &mockBookingService{
		createFn: func(_ context.Context, actor booking.Actor, req booking.CreateBookingRequest) (*models.Booking, error) {
			gotActor = actor
			gotReq = req
			return &models.Booking{ID: "bkg-1", Status: models.BookingPending}, nil
		},
	}
	svc.UserRepo = &fakePhoneDirectory{users: map[string]models.User{
		"+15551110001": {ID: "user-1", PhoneNumber: "+15551110001", Role: models.RoleCustomer},
	}}

	out, err := svc.Handle(context.Background(), inbound("msg-1", "book a plumber for friday 2pm"))
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "Booked you in for Friday at 14:00.", out.ReplyText)

	assert.Equal(t, booking.Actor{ID: "user-1", Role: models.RoleCustomer}, gotActor)
	assert.Equal(t, "prov-1", gotReq.ProviderID)
	assert.Equal(t, "2026-03-06", gotReq.Date)
	assert.Equal(t, "14:00", gotReq.Time)
	assert.Equal(t, 2.0, gotReq.DurationHours)
}

func TestHandleDispatchesCancelBookingAction(t *testing.T) {
	responder := &mockResponder{reply: &Reply{
		Success: true,
		Text:    "Cancelled.",
		Action: &BookingAction{
			Type:      ActionCancelBooking,
			BookingID: "bkg-1",
			Reason:    "customer request",
		},
	}}
	svc, _ := newMessageService(responder)

	var gotBookingID string
	var gotReq booking.CancelRescheduleRequest
	svc.BookingSvc = &mockBookingService{
		cancelOrRescheduleFn: func(_ context.Context, _ booking.Actor, bookingID string, req booking.CancelRescheduleRequest) (*models.Booking, error) {
			gotBookingID = bookingID
			gotReq = req
			return &models.Booking{ID: bookingID, Status: models.BookingCancelled}, nil
		},
	}
	svc.UserRepo = &fakePhoneDirectory{users: map[string]models.User{
		"+15551110001": {ID: "user-1", PhoneNumber: "+15551110001", Role: models.RoleCustomer},
	}}

	_, err := svc.Handle(context.Background(), inbound("msg-1", "cancel my booking"))
	require.NoError(t, err)
	assert.Equal(t, "bkg-1", gotBookingID)
	assert.Equal(t, booking.ActionCancel, gotReq.Action)
	assert.Equal(t, "customer request", gotReq.Reason)
}

func TestHandleActionFailureDoesNotFailPipeline(t *testing.T) {
	responder := &mockResponder{reply: &Reply{
		Success: true,
		Text:    "Trying to book that for you.",
		Action:  &BookingAction{Type: ActionCreateBooking, ProviderID: "prov-1"},
	}}
	svc, repo := newMessageService(responder)
	svc.BookingSvc = &mockBookingService{
		createFn: func(_ context.Context, _ booking.Actor, _ booking.CreateBookingRequest) (*models.Booking, error) {
			return nil, utils.ConflictError("slot already booked")
		},
	}
	svc.UserRepo = &fakePhoneDirectory{users: map[string]models.User{
		"+15551110001": {ID: "user-1", PhoneNumber: "+15551110001", Role: models.RoleCustomer},
	}}

	out, err := svc.Handle(context.Background(), inbound("msg-1", "book it"))
	require.NoError(t, err)
	assert.True(t, out.Success)

	rec := repo.get("whatsapp", "msg-1")
	require.NotNil(t, rec)
	assert.Equal(t, models.ProcessingCompleted, rec.ProcessingStatus)
}

func TestHandleActionFromUnknownSenderIsSkipped(t *testing.T) {
	responder := &mockResponder{reply: &Reply{
		Success: true,
		Text:    "Sure.",
		Action:  &BookingAction{Type: ActionCreateBooking, ProviderID: "prov-1"},
	}}
	svc, _ := newMessageService(responder)
	created := false
	svc.BookingSvc = &mockBookingService{
		createFn: func(_ context.Context, _ booking.Actor, _ booking.CreateBookingRequest) (*models.Booking, error) {
			created = true
			return nil, nil
		},
	}

	out, err := svc.Handle(context.Background(), inbound("msg-1", "book it"))
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.False(t, created)
}

func TestExtractSubject(t *testing.T) {
	assert.Equal(t, "+15551110001", extractSubject("+15551110001@s.whatsapp.net"))
	assert.Equal(t, "+15551110001", extractSubject("+15551110001"))
}
