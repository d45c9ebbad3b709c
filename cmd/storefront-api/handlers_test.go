package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MikeMC777/customtees/internal/assets"
	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/docstore"
	"github.com/MikeMC777/customtees/internal/httpx"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
)

type testEnv struct {
	router *gin.Engine
	app    *app
	stub   *assets.Stub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	products := product.NewRepo(docstore.NewMemory[product.Product]())
	designs := design.NewRepo(docstore.NewMemory[design.Submission]())
	stub := assets.NewStub("http://cdn.test")
	a := &app{
		products: products,
		designs:  designs,
		promoter: &design.Promoter{Designs: designs, Products: products, BasePrice: decimal.NewFromInt(20)},
		orders:   order.NewRepo(docstore.NewMemory[order.Order]()),
		assets:   stub,
		maxBytes: 1024,
		log:      zap.NewNop(),
	}
	return &testEnv{router: newRouter(a, nil, zap.NewNop()), app: a, stub: stub}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(path, field, filename string, data []byte, extra map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range extra {
		_ = mw.WriteField(k, v)
	}
	if field != "" {
		fw, _ := mw.CreateFormFile(field, filename)
		_, _ = fw.Write(data)
	}
	_ = mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	e.router.ServeHTTP(w, req)
	return w
}

type envelope[T any] struct {
	Success bool             `json:"success"`
	Data    T                `json:"data"`
	Error   *httpx.ErrorInfo `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, w.Body.String())
	}
	return env
}

const validProduct = `{"title":"Logo Tee","description":"Cotton","category":"men","brand":"ct","price":"35","salePrice":"30","totalStock":10,"averageReview":0,"image":"http://cdn.test/products/a.png"}`

func TestCreateProduct_Valid_And_Invalid(t *testing.T) {
	e := newTestEnv(t)

	{
		w := e.do(http.MethodPost, "/api/admin/products", validProduct)
		if w.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		got := decode[product.Product](t, w)
		if !got.Success || got.Data.ID == "" || got.Data.Title != "Logo Tee" {
			t.Fatalf("unexpected product: %+v", got)
		}
		if !got.Data.Price.Equal(decimal.NewFromInt(35)) {
			t.Fatalf("price=%s", got.Data.Price)
		}
	}

	for name, body := range map[string]string{
		"negative stock": `{"title":"Bad","price":"1","salePrice":"1","totalStock":-1}`,
		"negative price": `{"title":"Bad","price":"-1","salePrice":"1","totalStock":1}`,
		"empty title":    `{"title":"  ","price":"1","salePrice":"1","totalStock":1}`,
		"broken json":    `{"title":`,
	} {
		w := e.do(http.MethodPost, "/api/admin/products", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", name, w.Code, w.Body.String())
		}
		if got := decode[any](t, w); got.Success || got.Error == nil {
			t.Fatalf("%s: expected failed envelope, got %s", name, w.Body.String())
		}
	}

	list := decode[[]product.Product](t, e.do(http.MethodGet, "/api/admin/products", ""))
	if len(list.Data) != 1 {
		t.Fatalf("len=%d, expected 1", len(list.Data))
	}
}

func TestGetProduct_OK_And_NotFound(t *testing.T) {
	e := newTestEnv(t)
	created := decode[product.Product](t, e.do(http.MethodPost, "/api/admin/products", validProduct))

	if w := e.do(http.MethodGet, "/api/admin/products/"+created.Data.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w := e.do(http.MethodGet, "/api/admin/products/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if got := decode[any](t, w); got.Error == nil || got.Error.Code != httpx.CodeNotFound {
		t.Fatalf("unexpected error: %s", w.Body.String())
	}
}

// PUT replaces every writable field; omitted fields end up zero.
func TestUpdateProduct_Overwrites(t *testing.T) {
	e := newTestEnv(t)
	created := decode[product.Product](t, e.do(http.MethodPost, "/api/admin/products", validProduct))
	id := created.Data.ID

	{
		w := e.do(http.MethodPut, "/api/admin/products/"+id, `{"title":"Logo Tee v2","price":"40","salePrice":"40","totalStock":3}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		got, _ := e.app.products.GetByID(context.Background(), id)
		if got.Title != "Logo Tee v2" || got.TotalStock != 3 || !got.Price.Equal(decimal.NewFromInt(40)) {
			t.Fatalf("update not applied: %+v", got)
		}
		if got.Description != "" || got.Image != "" || got.Category != "" {
			t.Fatalf("update merged old fields: %+v", got)
		}
	}

	if w := e.do(http.MethodPut, "/api/admin/products/"+id, `{"title":"x","totalStock":-3}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative stock, got %d", w.Code)
	}
	if w := e.do(http.MethodPut, "/api/admin/products/nope", validProduct); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteProduct_IsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	created := decode[product.Product](t, e.do(http.MethodPost, "/api/admin/products", validProduct))

	{
		w := e.do(http.MethodDelete, "/api/admin/products/"+created.Data.ID, "")
		if w.Code != http.StatusOK || !decode[any](t, w).Success {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}
	{
		w := e.do(http.MethodDelete, "/api/admin/products/"+created.Data.ID, "")
		if w.Code != http.StatusOK {
			t.Fatalf("second delete: status=%d", w.Code)
		}
		got := decode[any](t, w)
		if got.Success || got.Error == nil || got.Error.Code != httpx.CodeNotFound {
			t.Fatalf("second delete should report nothing removed: %s", w.Body.String())
		}
	}

	list := decode[[]product.Product](t, e.do(http.MethodGet, "/api/admin/products", ""))
	if len(list.Data) != 0 {
		t.Fatalf("deleted product still listed: %+v", list.Data)
	}
}

func TestUploadImage(t *testing.T) {
	e := newTestEnv(t)

	{
		w := e.upload("/api/admin/products/upload-image", "my_file", "Shirt.PNG", []byte("\x89PNG"), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		got := decode[order.ImageUploadResponse](t, w)
		if !strings.HasPrefix(got.Data.URL, "http://cdn.test/products/") || !strings.HasSuffix(got.Data.URL, ".png") {
			t.Fatalf("url=%q", got.Data.URL)
		}
		key := strings.TrimPrefix(got.Data.URL, "http://cdn.test/")
		if obj, ok := e.stub.Get(key); !ok || obj.ContentType != "image/png" {
			t.Fatalf("object not stored: %v %+v", ok, obj)
		}
	}

	if w := e.upload("/api/admin/products/upload-image", "my_file", "doc.pdf", []byte("%PDF-"), nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for pdf, got %d", w.Code)
	}
	if w := e.upload("/api/admin/products/upload-image", "image", "a.png", []byte("x"), nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong field, got %d", w.Code)
	}
	if w := e.upload("/api/admin/products/upload-image", "my_file", "big.png", bytes.Repeat([]byte("x"), 2048), nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized file, got %d", w.Code)
	}
	if e.stub.Len() != 1 {
		t.Fatalf("rejected uploads were stored: %d objects", e.stub.Len())
	}
}

const validDesign = `{"title":"Logo Tee","name":"A","email":"a@test.com","phone":"1234567890","margin":15,"image":"http://cdn.test/products/logo.png"}`

func TestSubmitDesign_ListPromoteReject(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/design-submissions", validDesign)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	sub := decode[design.Submission](t, w).Data

	list := decode[[]design.Submission](t, e.do(http.MethodGet, "/api/design-submissions", ""))
	if len(list.Data) != 1 || list.Data[0].Margin != 15 {
		t.Fatalf("unexpected list: %+v", list.Data)
	}

	{
		w := e.do(http.MethodPost, "/api/design-submissions/"+sub.ID+"/promote", "")
		if w.Code != http.StatusCreated {
			t.Fatalf("promote status=%d body=%s", w.Code, w.Body.String())
		}
		p := decode[product.Product](t, w).Data
		if !p.Price.Equal(decimal.NewFromInt(35)) || p.SourceDesignID != sub.ID || p.Image != sub.Image {
			t.Fatalf("unexpected promoted product: %+v", p)
		}
	}
	{
		w := e.do(http.MethodPost, "/api/design-submissions/"+sub.ID+"/promote", `{"category":"women","salePrice":"30","totalStock":4}`)
		p := decode[product.Product](t, w).Data
		if w.Code != http.StatusCreated || p.Category != "women" || !p.SalePrice.Equal(decimal.NewFromInt(30)) {
			t.Fatalf("promote with fields: status=%d %+v", w.Code, p)
		}
	}
	if w := e.do(http.MethodPost, "/api/design-submissions/nope/promote", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	if w := e.do(http.MethodDelete, "/api/design-submissions/"+sub.ID, ""); !decode[any](t, w).Success {
		t.Fatalf("delete failed: %s", w.Body.String())
	}
	if w := e.do(http.MethodDelete, "/api/design-submissions/"+sub.ID, ""); w.Code != http.StatusOK || decode[any](t, w).Success {
		t.Fatalf("second delete: status=%d body=%s", w.Code, w.Body.String())
	}
	if list := decode[[]design.Submission](t, e.do(http.MethodGet, "/api/design-submissions", "")); len(list.Data) != 0 {
		t.Fatalf("rejected submission still listed")
	}
}

func TestSubmitDesign_Invalid(t *testing.T) {
	e := newTestEnv(t)
	for name, body := range map[string]string{
		"margin 41":   strings.Replace(validDesign, `"margin":15`, `"margin":41`, 1),
		"margin -1":   strings.Replace(validDesign, `"margin":15`, `"margin":-1`, 1),
		"phone 9":     strings.Replace(validDesign, `1234567890`, `123456789`, 1),
		"email a@b":   strings.Replace(validDesign, `a@test.com`, `a@b`, 1),
		"no title":    strings.Replace(validDesign, `"title":"Logo Tee",`, ``, 1),
		"no margin":   strings.Replace(validDesign, `"margin":15,`, ``, 1),
		"null margin": strings.Replace(validDesign, `"margin":15`, `"margin":null`, 1),
	} {
		w := e.do(http.MethodPost, "/api/design-submissions", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", name, w.Code, w.Body.String())
		}
		if got := decode[any](t, w); got.Error == nil || got.Error.Code != httpx.CodeValidation {
			t.Fatalf("%s: unexpected error %s", name, w.Body.String())
		}
	}
	for _, m := range []string{"0", "40"} {
		body := strings.Replace(validDesign, `"margin":15`, `"margin":`+m, 1)
		if w := e.do(http.MethodPost, "/api/design-submissions", body); w.Code != http.StatusCreated {
			t.Fatalf("margin %s: expected 201, got %d", m, w.Code)
		}
	}
}

func seedOrder(t *testing.T, e *testEnv) *order.Order {
	t.Helper()
	o := &order.Order{
		UserID:        "u1",
		CartItems:     []order.CartItem{{ProductID: "p1", Title: "Logo Tee", Quantity: 2, Price: decimal.NewFromInt(35)}},
		PaymentMethod: "paypal",
		PaymentStatus: order.PaymentPaid,
		OrderStatus:   order.StatusConfirmed,
	}
	if err := e.app.orders.Create(context.Background(), o); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}

func TestOrders_GetAndList(t *testing.T) {
	e := newTestEnv(t)
	o := seedOrder(t, e)

	got := decode[order.Order](t, e.do(http.MethodGet, "/api/orders/"+o.ID, ""))
	if got.Data.ID != o.ID || !got.Data.TotalAmount.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected order: %+v", got.Data)
	}
	if w := e.do(http.MethodGet, "/api/orders/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if list := decode[[]order.Order](t, e.do(http.MethodGet, "/api/orders", "")); len(list.Data) != 1 {
		t.Fatalf("len=%d", len(list.Data))
	}
}

func TestExportOrder(t *testing.T) {
	e := newTestEnv(t)
	o := seedOrder(t, e)
	pdf := []byte("%PDF-1.4 bill")

	{
		w := e.upload("/api/orders/export", "file", "bill.pdf", pdf, map[string]string{"orderId": o.ID})
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		got := decode[order.ExportResponse](t, w).Data
		if !strings.HasPrefix(got.PDFLink, "http://cdn.test/exports/"+o.ID+"-") || got.OrderID != o.ID {
			t.Fatalf("unexpected export: %+v", got)
		}
	}
	{
		w := e.upload("/api/orders/export", "file", "bill.pdf", pdf, nil)
		if w.Code != http.StatusOK || decode[order.ExportResponse](t, w).Data.PDFLink == "" {
			t.Fatalf("export without order id: status=%d body=%s", w.Code, w.Body.String())
		}
	}

	if w := e.upload("/api/orders/export", "file", "bill.pdf", []byte("not a pdf"), nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-pdf, got %d", w.Code)
	}
	if w := e.upload("/api/orders/export", "file", "bill.pdf", pdf, map[string]string{"orderId": "nope"}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", w.Code)
	}
	if w := e.upload("/api/orders/export", "", "", nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", w.Code)
	}
	if e.stub.Len() != 2 {
		t.Fatalf("expected 2 stored exports, got %d", e.stub.Len())
	}
}

func TestAnalytics(t *testing.T) {
	e := newTestEnv(t)
	seedOrder(t, e)
	e.do(http.MethodPost, "/api/admin/products", validProduct)

	got := decode[order.Summary](t, e.do(http.MethodGet, "/api/admin/analytics", "")).Data
	if got.TotalOrders != 1 || got.TotalProducts != 1 || !got.TotalSales.Equal(decimal.NewFromInt(70)) || len(got.Sales) != 1 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

type failingProducts struct{ product.Repository }

func (failingProducts) List(context.Context) ([]product.Product, error) {
	return nil, errors.New("pq: connection refused")
}

func TestStoreErrorIsGeneric500(t *testing.T) {
	e := newTestEnv(t)
	e.app.products = failingProducts{}
	r := newRouter(e.app, nil, zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/products", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("store error leaked: %s", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	if w := e.do(http.MethodGet, "/healthz", ""); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestPanickingRequestIsAccessLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	e := newTestEnv(t)
	r := newRouter(e.app, nil, zap.New(core))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if n := logs.FilterMessage("panic recovered").Len(); n != 1 {
		t.Fatalf("expected one recovery entry, got %d", n)
	}
	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(http.StatusInternalServerError) {
		t.Fatalf("access log status = %v", got)
	}
}
