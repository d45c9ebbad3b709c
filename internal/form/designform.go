package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/validation"
)

// DesignFields are the raw inputs of the public intake dialog. ImagePath is
// a local file that gets uploaded on submit.
type DesignFields struct {
	Title       string
	Description string
	Name        string
	Email       string
	Phone       string
	Margin      string
	ImagePath   string
}

var DesignFieldNames = []string{"title", "description", "name", "email", "phone", "margin", "image"}

// DesignIntents is what the dialog submits to (state.Designs).
type DesignIntents interface {
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
	Submit(ctx context.Context, in design.Input) (bool, error)
}

type DesignForm struct {
	Open   bool
	Fields DesignFields
	// OpenFile reads the image; os.Open when nil.
	OpenFile func(name string) (io.ReadCloser, error)
}

func NewDesignForm() *DesignForm { return &DesignForm{} }

// Reset clears the fields and closes the panel.
func (f *DesignForm) Reset() {
	f.Fields = DesignFields{}
	f.Open = false
}

// OpenIntake shows an empty intake panel.
func (f *DesignForm) OpenIntake() {
	f.Reset()
	f.Open = true
}

func (f *DesignForm) Set(field, value string) error {
	p, ok := f.field(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	*p = value
	return nil
}

func (f *DesignForm) Get(field string) string {
	if p, ok := f.field(field); ok {
		return *p
	}
	return ""
}

func (f *DesignForm) field(name string) (*string, bool) {
	switch name {
	case "title":
		return &f.Fields.Title, true
	case "description":
		return &f.Fields.Description, true
	case "name":
		return &f.Fields.Name, true
	case "email":
		return &f.Fields.Email, true
	case "phone":
		return &f.Fields.Phone, true
	case "margin":
		return &f.Fields.Margin, true
	case "image":
		return &f.Fields.ImagePath, true
	}
	return nil, false
}

// Errors returns inline messages keyed by field name.
func (f *DesignForm) Errors() map[string]string {
	in, marginErr := f.input(strings.TrimSpace(f.Fields.ImagePath))
	out := map[string]string{}
	if err := in.Validate(); err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			for k, v := range fe {
				out[k] = v
			}
		}
	}
	if marginErr != "" {
		out["margin"] = marginErr
	}
	return out
}

func (f *DesignForm) Valid() bool { return len(f.Errors()) == 0 }

func (f *DesignForm) input(image string) (design.Input, string) {
	in := design.Input{
		Title:       strings.TrimSpace(f.Fields.Title),
		Description: strings.TrimSpace(f.Fields.Description),
		Name:        strings.TrimSpace(f.Fields.Name),
		Email:       strings.TrimSpace(f.Fields.Email),
		Phone:       strings.TrimSpace(f.Fields.Phone),
		Image:       image,
	}
	raw := strings.TrimSpace(f.Fields.Margin)
	if raw == "" {
		return in, "is required"
	}
	m, err := strconv.Atoi(raw)
	if err != nil {
		return in, "must be a whole number"
	}
	in.Margin = &m
	if !validation.IsMargin(m) {
		return in, fmt.Sprintf("must be between %d and %d", validation.MarginMin, validation.MarginMax)
	}
	return in, ""
}

// Submit uploads the image, then submits the design with the returned URL.
// The form resets and closes only when both steps succeed.
func (f *DesignForm) Submit(ctx context.Context, intents DesignIntents) (bool, error) {
	if !f.Open {
		return false, ErrNotOpen
	}
	if errs := f.Errors(); len(errs) > 0 {
		return false, fmt.Errorf("%w: %v", ErrInvalid, validation.FieldErrors(errs))
	}
	open := f.OpenFile
	if open == nil {
		open = func(name string) (io.ReadCloser, error) { return os.Open(name) }
	}
	path := strings.TrimSpace(f.Fields.ImagePath)
	r, err := open(path)
	if err != nil {
		return false, fmt.Errorf("open image: %w", err)
	}
	url, err := intents.UploadImage(ctx, filepath.Base(path), r)
	_ = r.Close()
	if err != nil {
		return false, fmt.Errorf("upload image: %w", err)
	}

	in, _ := f.input(url)
	ok, err := intents.Submit(ctx, in)
	if err != nil || !ok {
		return false, err
	}
	f.Reset()
	return true, nil
}
