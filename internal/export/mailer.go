package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MikeMC777/customtees/internal/config"
)

const billMessagePrefix = "Here is the link to your bill: "

// EmailJS sends mail through the EmailJS REST API.
type EmailJS struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	HTTP       *http.Client
}

var _ Mailer = (*EmailJS)(nil)

func NewEmailJS(cfg config.EmailConfig) *EmailJS {
	return &EmailJS{
		Endpoint:   cfg.Endpoint,
		ServiceID:  cfg.ServiceID,
		TemplateID: cfg.TemplateID,
		PublicKey:  cfg.PublicKey,
		PrivateKey: cfg.PrivateKey,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// TemplateParams are the variables the bill template expects.
func TemplateParams(msg Message) map[string]string {
	return map[string]string{
		"email":     msg.To,
		"from_name": msg.FromName,
		"message":   billMessagePrefix + msg.Link,
	}
}

func (m *EmailJS) Send(ctx context.Context, msg Message) error {
	if m.ServiceID == "" || m.TemplateID == "" || m.PublicKey == "" {
		return errors.New("emailjs: service id, template id and public key are required")
	}
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      m.ServiceID,
		TemplateID:     m.TemplateID,
		UserID:         m.PublicKey,
		AccessToken:    m.PrivateKey,
		TemplateParams: TemplateParams(msg),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := m.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("emailjs: %s: %s", res.Status, strings.TrimSpace(string(text)))
	}
	return nil
}
