package export

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/MikeMC777/customtees/internal/order"
)

type fakeRasterizer struct {
	calls   atomic.Int32
	started chan struct{}
	block   chan struct{}
	err     error
}

func (r *fakeRasterizer) Capture(ctx context.Context, _ order.Order) ([]byte, error) {
	r.calls.Add(1)
	if r.started != nil {
		close(r.started)
	}
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png"), nil
}

type fakeDocumenter struct {
	calls atomic.Int32
	err   error
}

func (d *fakeDocumenter) Document(_ context.Context, png []byte) ([]byte, error) {
	d.calls.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	return append([]byte("%PDF-"), png...), nil
}

type fakeUploader struct {
	calls atomic.Int32
	err   error
}

func (u *fakeUploader) ExportDocument(_ context.Context, orderID string, _ []byte) (string, error) {
	u.calls.Add(1)
	if u.err != nil {
		return "", u.err
	}
	return "https://storage.example.com/exports/" + orderID + ".pdf", nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fixture struct {
	r *fakeRasterizer
	d *fakeDocumenter
	u *fakeUploader
	m *fakeMailer
}

func newFlow(t *testing.T, fx *fixture, locker Locker) *Flow {
	t.Helper()
	return New(Deps{
		Rasterizer: fx.r,
		Documenter: fx.d,
		Uploader:   fx.u,
		Mailer:     fx.m,
		Locker:     locker,
		FromName:   "CustomTees",
		Log:        zaptest.NewLogger(t),
	})
}

func newFixture() *fixture {
	return &fixture{r: &fakeRasterizer{}, d: &fakeDocumenter{}, u: &fakeUploader{}, m: &fakeMailer{}}
}

func sampleOrder() order.Order {
	return order.Order{
		ID:          "ord-1",
		OrderDate:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		OrderStatus: order.StatusConfirmed,
		CartItems: []order.CartItem{
			{ProductID: "p1", Title: "Tee", Quantity: 2, Price: decimal.RequireFromString("19.99")},
		},
		TotalAmount: decimal.RequireFromString("39.98"),
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) add(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) stages() []Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stage, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Stage)
	}
	return out
}

func TestRunSuccess(t *testing.T) {
	fx := newFixture()
	f := newFlow(t, fx, nil)
	rec := &recorder{}
	f.Observe(rec.add)

	link, err := f.Run(context.Background(), sampleOrder(), "  buyer@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/exports/ord-1.pdf", link)

	assert.Equal(t, []Stage{StageCapturing, StageDocumenting, StageUploading, StageEmailing, StageDone}, rec.stages())
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, link, last.Link)
	assert.Nil(t, last.Err)

	require.Equal(t, 1, fx.m.count())
	assert.Equal(t, Message{To: "buyer@example.com", FromName: "CustomTees", Link: link}, fx.m.sent[0])
	assert.Equal(t, StageIdle, f.Stage())
	assert.False(t, f.Busy())
}

func TestRunRejectsInvalidRecipient(t *testing.T) {
	fx := newFixture()
	f := newFlow(t, fx, nil)

	for _, to := range []string{"", "not-an-email", "a@b"} {
		_, err := f.Run(context.Background(), sampleOrder(), to)
		assert.ErrorIs(t, err, ErrInvalidRecipient, to)
	}
	assert.Zero(t, fx.r.calls.Load())
	assert.Zero(t, fx.m.count())
}

func TestRunStageFailures(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name    string
		setup   func(fx *fixture)
		stage   Stage
		message string
		mails   int
	}{
		{"capture", func(fx *fixture) { fx.r.err = boom }, StageCapturing, "could not capture order view", 0},
		{"document", func(fx *fixture) { fx.d.err = boom }, StageDocumenting, "could not generate document", 0},
		{"upload", func(fx *fixture) { fx.u.err = boom }, StageUploading, "could not upload document", 0},
		{"email", func(fx *fixture) { fx.m.err = boom }, StageEmailing, "could not send email", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture()
			tc.setup(fx)
			f := newFlow(t, fx, nil)
			rec := &recorder{}
			f.Observe(rec.add)

			link, err := f.Run(context.Background(), sampleOrder(), "buyer@example.com")
			assert.Empty(t, link)

			var serr *StageError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tc.stage, serr.Stage)
			assert.Equal(t, tc.message, serr.UserMessage())
			assert.ErrorIs(t, err, boom)

			stages := rec.stages()
			require.NotEmpty(t, stages)
			assert.Equal(t, tc.stage, stages[len(stages)-1])
			assert.NotNil(t, rec.events[len(rec.events)-1].Err)
			assert.NotContains(t, stages, StageDone)

			assert.Equal(t, tc.mails, fx.m.count())
			assert.Equal(t, StageIdle, f.Stage())
		})
	}
}

func TestUploadFailureNeverMails(t *testing.T) {
	fx := newFixture()
	fx.u.err = errors.New("s3 down")
	f := newFlow(t, fx, nil)

	_, err := f.Run(context.Background(), sampleOrder(), "buyer@example.com")
	require.Error(t, err)
	assert.Equal(t, int32(1), fx.d.calls.Load())
	assert.Zero(t, fx.m.count())
}

func TestRunWhileBusy(t *testing.T) {
	fx := newFixture()
	fx.r.started = make(chan struct{})
	fx.r.block = make(chan struct{})
	f := newFlow(t, fx, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.Run(context.Background(), sampleOrder(), "buyer@example.com")
		done <- err
	}()
	<-fx.r.started
	assert.True(t, f.Busy())

	_, err := f.Run(context.Background(), sampleOrder(), "other@example.com")
	assert.ErrorIs(t, err, ErrBusy)

	close(fx.r.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), fx.r.calls.Load())
	assert.Equal(t, int32(1), fx.d.calls.Load())
	assert.Equal(t, 1, fx.m.count())

	// idle again, so a new run is accepted
	fx.r.started = nil
	fx.r.block = nil
	_, err = f.Run(context.Background(), sampleOrder(), "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, fx.m.count())
}

func TestCloseAbandonsRun(t *testing.T) {
	fx := newFixture()
	fx.r.started = make(chan struct{})
	fx.r.block = make(chan struct{})
	f := newFlow(t, fx, nil)
	rec := &recorder{}
	f.Observe(rec.add)

	done := make(chan error, 1)
	go func() {
		_, err := f.Run(context.Background(), sampleOrder(), "buyer@example.com")
		done <- err
	}()
	<-fx.r.started
	f.Close()

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, []Stage{StageCapturing}, rec.stages())
	assert.Zero(t, fx.d.calls.Load())
	assert.Zero(t, fx.u.calls.Load())
	assert.Zero(t, fx.m.count())

	_, err := f.Run(context.Background(), sampleOrder(), "buyer@example.com")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestObserveUnsubscribe(t *testing.T) {
	fx := newFixture()
	f := newFlow(t, fx, nil)
	rec := &recorder{}
	stop := f.Observe(rec.add)
	stop()
	stop()

	_, err := f.Run(context.Background(), sampleOrder(), "buyer@example.com")
	require.NoError(t, err)
	assert.Empty(t, rec.stages())
}

type deniedLocker struct{ err error }

func (l deniedLocker) Acquire(context.Context, string) (func(), bool, error) {
	return nil, false, l.err
}

func TestRunLockerDenied(t *testing.T) {
	fx := newFixture()
	f := newFlow(t, fx, deniedLocker{})

	_, err := f.Run(context.Background(), sampleOrder(), "buyer@example.com")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Zero(t, fx.r.calls.Load())
	assert.Equal(t, StageIdle, f.Stage())

	lockErr := errors.New("redis unreachable")
	f = newFlow(t, fx, deniedLocker{err: lockErr})
	_, err = f.Run(context.Background(), sampleOrder(), "buyer@example.com")
	assert.ErrorIs(t, err, lockErr)
}

func TestRunReleasesLock(t *testing.T) {
	fx := newFixture()
	locker := NewLocalLocker()
	f := newFlow(t, fx, locker)

	_, err := f.Run(context.Background(), sampleOrder(), "buyer@example.com")
	require.NoError(t, err)

	release, ok, err := locker.Acquire(context.Background(), "export:ord-1")
	require.NoError(t, err)
	assert.True(t, ok)
	release()
}
