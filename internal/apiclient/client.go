// Package apiclient is the typed HTTP client of the storefront API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/httpx"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
)

var ErrNotFound = errors.New("not found")

// APIError is a failed envelope (or a non-JSON error reply).
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: %s: %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 replies.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && (e.Status == http.StatusNotFound || e.Code == httpx.CodeNotFound)
}

type Client struct {
	HTTP    *http.Client
	BaseURL string // e.g. http://localhost:8080/api
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *httpx.ErrorInfo `json:"error"`
}

// send performs the request and decodes the envelope. Failed envelopes come
// back as *APIError alongside the decoded envelope.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &APIError{Status: res.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if !env.Success {
		apiErr := &APIError{Status: res.StatusCode, Message: res.Status}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return &env, apiErr
	}
	return &env, nil
}

func call[T any](ctx context.Context, c *Client, method, path string, body io.Reader, contentType string) (T, error) {
	var out T
	env, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return out, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return out, nil
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// ack handles the idempotent delete contract: success:false with
// ERR_NOT_FOUND is not an error, only "nothing removed".
func (c *Client) ack(ctx context.Context, path string) (bool, error) {
	_, err := c.send(ctx, http.MethodDelete, path, nil, "")
	if err == nil {
		return true, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusOK && apiErr.Code == httpx.CodeNotFound {
		return false, nil
	}
	return false, err
}

func esc(id string) string { return url.PathEscape(id) }

// Products

func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	return call[[]product.Product](ctx, c, http.MethodGet, "/admin/products", nil, "")
}

func (c *Client) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return call[*product.Product](ctx, c, http.MethodGet, "/admin/products/"+esc(id), nil, "")
}

func (c *Client) CreateProduct(ctx context.Context, in product.Input) (*product.Product, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	return call[*product.Product](ctx, c, http.MethodPost, "/admin/products", body, "application/json")
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in product.Input) (*product.Product, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	return call[*product.Product](ctx, c, http.MethodPut, "/admin/products/"+esc(id), body, "application/json")
}

func (c *Client) DeleteProduct(ctx context.Context, id string) (bool, error) {
	return c.ack(ctx, "/admin/products/"+esc(id))
}

// UploadImage sends an image in the my_file field and returns its URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	body, ct, err := multipartBody("my_file", filename, r, nil)
	if err != nil {
		return "", err
	}
	res, err := call[order.ImageUploadResponse](ctx, c, http.MethodPost, "/admin/products/upload-image", body, ct)
	return res.URL, err
}

// Design submissions

func (c *Client) ListDesigns(ctx context.Context) ([]design.Submission, error) {
	return call[[]design.Submission](ctx, c, http.MethodGet, "/design-submissions", nil, "")
}

func (c *Client) SubmitDesign(ctx context.Context, in design.Input) (*design.Submission, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	return call[*design.Submission](ctx, c, http.MethodPost, "/design-submissions", body, "application/json")
}

func (c *Client) DeleteDesign(ctx context.Context, id string) (bool, error) {
	return c.ack(ctx, "/design-submissions/"+esc(id))
}

func (c *Client) PromoteDesign(ctx context.Context, id string, extra design.PromoteInput) (*product.Product, error) {
	body, err := jsonBody(extra)
	if err != nil {
		return nil, err
	}
	return call[*product.Product](ctx, c, http.MethodPost, "/design-submissions/"+esc(id)+"/promote", body, "application/json")
}

// Orders

func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	return call[[]order.Order](ctx, c, http.MethodGet, "/orders", nil, "")
}

func (c *Client) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return call[*order.Order](ctx, c, http.MethodGet, "/orders/"+esc(id), nil, "")
}

func (c *Client) Analytics(ctx context.Context) (*order.Summary, error) {
	return call[*order.Summary](ctx, c, http.MethodGet, "/admin/analytics", nil, "")
}

// ExportDocument uploads a bill PDF and returns its durable link.
func (c *Client) ExportDocument(ctx context.Context, orderID string, pdf []byte) (string, error) {
	fields := map[string]string{}
	if orderID != "" {
		fields["orderId"] = orderID
	}
	body, ct, err := multipartBody("file", "bill.pdf", bytes.NewReader(pdf), fields)
	if err != nil {
		return "", err
	}
	res, err := call[order.ExportResponse](ctx, c, http.MethodPost, "/orders/export", body, ct)
	if err != nil {
		return "", err
	}
	if res.PDFLink == "" {
		return "", errors.New("export reply carries no pdfLink")
	}
	return res.PDFLink, nil
}

func multipartBody(field, filename string, r io.Reader, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
