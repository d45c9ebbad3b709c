package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/customtees/internal/httpx"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
)

func newServer(t *testing.T, register func(r *gin.Engine)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", time.Second)
}

func TestListProducts(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.GET("/api/admin/products", func(ctx *gin.Context) {
			httpx.JSON(ctx, http.StatusOK, []product.Product{{ID: "p1", Title: "Logo Tee", Price: decimal.NewFromInt(35)}})
		})
	})

	items, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Logo Tee", items[0].Title)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(35)))
}

func TestCreateProduct_SendsBodyAndReportsValidation(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.POST("/api/admin/products", func(ctx *gin.Context) {
			var in product.Input
			_ = ctx.ShouldBindJSON(&in)
			if in.TotalStock < 0 {
				httpx.Error(ctx, httpx.CodeValidation, product.ErrNegativeStock)
				return
			}
			httpx.JSON(ctx, http.StatusCreated, product.Product{ID: "new", Title: in.Title})
		})
	})

	p, err := c.CreateProduct(context.Background(), product.Input{Title: "Logo Tee", TotalStock: 1})
	require.NoError(t, err)
	assert.Equal(t, "new", p.ID)

	_, err = c.CreateProduct(context.Background(), product.Input{Title: "Bad", TotalStock: -1})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, httpx.CodeValidation, apiErr.Code)
	assert.Contains(t, apiErr.Message, "non-negative")
}

func TestDeleteAck(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.DELETE("/api/admin/products/:id", func(ctx *gin.Context) {
			httpx.Ack(ctx, ctx.Param("id") == "exists", "product not found")
		})
		r.DELETE("/api/design-submissions/:id", func(ctx *gin.Context) {
			httpx.Error(ctx, httpx.CodeInternal, errors.New("db down"))
		})
	})

	ok, err := c.DeleteProduct(context.Background(), "exists")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.DeleteProduct(context.Background(), "gone")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.DeleteDesign(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestGetOrder_NotFound(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.GET("/api/orders/:id", func(ctx *gin.Context) {
			httpx.Error(ctx, httpx.CodeNotFound, order.ErrNotFound)
		})
	})
	_, err := c.GetOrder(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadImage(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.POST("/api/admin/products/upload-image", func(ctx *gin.Context) {
			fh, err := ctx.FormFile("my_file")
			if err != nil {
				httpx.Error(ctx, httpx.CodeBadRequest, err)
				return
			}
			httpx.JSON(ctx, http.StatusOK, order.ImageUploadResponse{URL: "http://cdn.test/products/" + fh.Filename})
		})
	})
	url, err := c.UploadImage(context.Background(), "logo.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/products/logo.png", url)
}

func TestExportDocument(t *testing.T) {
	var gotOrder, gotBody string
	c := newServer(t, func(r *gin.Engine) {
		r.POST("/api/orders/export", func(ctx *gin.Context) {
			gotOrder = ctx.PostForm("orderId")
			fh, err := ctx.FormFile("file")
			require.NoError(t, err)
			f, _ := fh.Open()
			b, _ := io.ReadAll(f)
			gotBody = string(b)
			httpx.JSON(ctx, http.StatusOK, order.ExportResponse{PDFLink: "http://cdn.test/exports/o1.pdf", OrderID: gotOrder})
		})
	})

	link, err := c.ExportDocument(context.Background(), "o1", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/exports/o1.pdf", link)
	assert.Equal(t, "o1", gotOrder)
	assert.Equal(t, "%PDF-1.4", gotBody)
}

func TestExportDocument_MissingLink(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.POST("/api/orders/export", func(ctx *gin.Context) {
			httpx.JSON(ctx, http.StatusOK, order.ExportResponse{})
		})
	})
	_, err := c.ExportDocument(context.Background(), "", []byte("%PDF-"))
	assert.Error(t, err)
}

func TestNonJSONReply(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.GET("/api/orders", func(ctx *gin.Context) {
			ctx.String(http.StatusBadGateway, "upstream down")
		})
	})
	_, err := c.ListOrders(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}
