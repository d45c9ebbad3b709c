// Package export turns a loaded order into an emailed bill: the order view
// is captured as an image, wrapped in a PDF, uploaded for a durable link and
// the link is mailed to the customer.
package export

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/validation"
)

type Stage string

const (
	StageIdle        Stage = "idle"
	StageCapturing   Stage = "capturing"
	StageDocumenting Stage = "documenting"
	StageUploading   Stage = "uploading"
	StageEmailing    Stage = "emailing"
	StageDone        Stage = "done"
)

var (
	ErrBusy             = errors.New("an export is already running")
	ErrClosed           = errors.New("export flow is closed")
	ErrInvalidRecipient = errors.New("recipient email is not valid")
)

// StageError tags a failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.UserMessage() + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// UserMessage is the one-line notice shown to the operator.
func (e *StageError) UserMessage() string {
	switch e.Stage {
	case StageCapturing:
		return "could not capture order view"
	case StageDocumenting:
		return "could not generate document"
	case StageUploading:
		return "could not upload document"
	case StageEmailing:
		return "could not send email"
	}
	return "export failed"
}

// Rasterizer captures the rendered order view as a PNG.
type Rasterizer interface {
	Capture(ctx context.Context, o order.Order) ([]byte, error)
}

// Documenter wraps a captured image into a single-page PDF.
type Documenter interface {
	Document(ctx context.Context, png []byte) ([]byte, error)
}

// Uploader stores the PDF and returns its durable link (apiclient.Client).
type Uploader interface {
	ExportDocument(ctx context.Context, orderID string, pdf []byte) (string, error)
}

type Message struct {
	To       string
	FromName string
	Link     string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Locker serialises exports of the same order across processes.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// Event is delivered to observers on every stage change. Err is set when
// the run failed; Link once the bill is uploaded.
type Event struct {
	Stage   Stage
	OrderID string
	Link    string
	Err     *StageError
}

type Deps struct {
	Rasterizer Rasterizer
	Documenter Documenter
	Uploader   Uploader
	Mailer     Mailer
	Locker     Locker // optional
	FromName   string
	Log        *zap.Logger
}

// Flow runs one export at a time. A Run while another is in flight is
// rejected with ErrBusy; nothing is queued.
type Flow struct {
	deps Deps
	log  *zap.Logger

	mu        sync.Mutex
	stage     Stage
	closed    bool
	cancelRun context.CancelFunc
	observers []observer
	nextObs   int
}

type observer struct {
	id int
	fn func(Event)
}

func New(deps Deps) *Flow {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{deps: deps, log: log, stage: StageIdle}
}

func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

func (f *Flow) Busy() bool { return f.Stage() != StageIdle }

// Observe registers fn for stage events and returns its removal func.
func (f *Flow) Observe(fn func(Event)) func() {
	f.mu.Lock()
	f.nextObs++
	id := f.nextObs
	f.observers = append(f.observers, observer{id: id, fn: fn})
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.observers = slices.DeleteFunc(f.observers, func(o observer) bool { return o.id == id })
	}
}

// Close tears the flow down. An in-flight run is abandoned: its context is
// cancelled, no later stage runs and observers hear nothing more.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.observers = nil
	if f.cancelRun != nil {
		f.cancelRun()
	}
}

// Run exports o and mails the link to recipient. It returns the link, or a
// *StageError naming the failed stage; the flow is idle again either way.
func (f *Flow) Run(ctx context.Context, o order.Order, recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if !validation.IsEmail(recipient) {
		return "", ErrInvalidRecipient
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return "", ErrClosed
	case f.stage != StageIdle:
		f.mu.Unlock()
		return "", ErrBusy
	}
	f.stage = StageCapturing
	f.cancelRun = cancel
	f.mu.Unlock()
	defer f.finish()

	if f.deps.Locker != nil {
		release, ok, err := f.deps.Locker.Acquire(runCtx, "export:"+o.ID)
		if err != nil {
			return "", fmt.Errorf("acquire export lock: %w", err)
		}
		if !ok {
			return "", ErrBusy
		}
		defer release()
	}

	log := f.log.With(zap.String("order_id", o.ID))
	if !f.enter(StageCapturing, o.ID) {
		return "", ErrClosed
	}
	png, err := f.deps.Rasterizer.Capture(runCtx, o)
	if err != nil {
		return "", f.fail(log, StageCapturing, o.ID, err)
	}

	if !f.enter(StageDocumenting, o.ID) {
		return "", ErrClosed
	}
	pdf, err := f.deps.Documenter.Document(runCtx, png)
	if err != nil {
		return "", f.fail(log, StageDocumenting, o.ID, err)
	}

	if !f.enter(StageUploading, o.ID) {
		return "", ErrClosed
	}
	link, err := f.deps.Uploader.ExportDocument(runCtx, o.ID, pdf)
	if err != nil {
		return "", f.fail(log, StageUploading, o.ID, err)
	}

	if !f.enter(StageEmailing, o.ID) {
		return "", ErrClosed
	}
	msg := Message{To: recipient, FromName: f.deps.FromName, Link: link}
	if err := f.deps.Mailer.Send(runCtx, msg); err != nil {
		return "", f.fail(log, StageEmailing, o.ID, err)
	}

	if !f.emit(StageDone, Event{Stage: StageDone, OrderID: o.ID, Link: link}) {
		return "", ErrClosed
	}
	log.Info("bill exported", zap.String("link", link), zap.Int("pdf_bytes", len(pdf)))
	return link, nil
}

// enter moves to s and notifies. It reports false when the flow was closed
// meanwhile.
func (f *Flow) enter(s Stage, orderID string) bool {
	return f.emit(s, Event{Stage: s, OrderID: orderID})
}

func (f *Flow) emit(s Stage, ev Event) bool {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return false
	}
	f.stage = s
	obs := slices.Clone(f.observers)
	f.mu.Unlock()

	for _, o := range obs {
		o.fn(ev)
	}
	return true
}

func (f *Flow) fail(log *zap.Logger, s Stage, orderID string, err error) error {
	serr := &StageError{Stage: s, Err: err}
	if !f.emit(s, Event{Stage: s, OrderID: orderID, Err: serr}) {
		return ErrClosed
	}
	log.Warn("export failed", zap.String("stage", string(s)), zap.Error(err))
	return serr
}

func (f *Flow) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stage = StageIdle
	f.cancelRun = nil
}
