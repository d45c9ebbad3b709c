package main

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/customtees/internal/assets"
	"github.com/MikeMC777/customtees/internal/httpx"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
)

var errNotPDF = errors.New("file must be a PDF document")

// @Summary		List orders
// @Tags			orders
// @Produce		json
// @Success		200	{object}	httpx.Response{data=[]order.Order}
// @Router			/orders [get]
func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.JSON(c, http.StatusOK, items)
	}
}

// @Summary		Get order
// @Tags			orders
// @Produce		json
// @Param			id	path		string	true	"Order ID"
// @Success		200	{object}	httpx.Response{data=order.Order}
// @Failure		404	{object}	httpx.Response
// @Router			/orders/{id} [get]
func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				httpx.Error(c, httpx.CodeNotFound, err)
				return
			}
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.JSON(c, http.StatusOK, o)
	}
}

// @Summary		Upload an order bill
// @Tags			orders
// @Accept			multipart/form-data
// @Produce		json
// @Param			file	formData	file	true	"PDF document"
// @Param			orderId	formData	string	false	"Order ID"
// @Success		200		{object}	httpx.Response{data=order.ExportResponse}
// @Failure		400		{object}	httpx.Response
// @Failure		404		{object}	httpx.Response
// @Router			/orders/export [post]
func exportOrderHandler(store assets.Storage, orders order.Repository, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, _, ok := readUpload(c, "file", maxBytes)
		if !ok {
			return
		}
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			httpx.Error(c, httpx.CodeValidation, errNotPDF)
			return
		}
		orderID := c.PostForm("orderId")
		if orderID != "" {
			if _, err := orders.GetByID(c.Request.Context(), orderID); err != nil {
				if errors.Is(err, order.ErrNotFound) {
					httpx.Error(c, httpx.CodeNotFound, err)
					return
				}
				httpx.Error(c, httpx.CodeInternal, err)
				return
			}
		}
		link, err := store.Put(c.Request.Context(), assets.ExportKey(orderID), data, "application/pdf")
		if err != nil {
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.JSON(c, http.StatusOK, order.ExportResponse{PDFLink: link, OrderID: orderID})
	}
}

// @Summary		Sales analytics
// @Tags			admin-analytics
// @Produce		json
// @Success		200	{object}	httpx.Response{data=order.Summary}
// @Router			/admin/analytics [get]
func analyticsHandler(orders order.Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		ps, err := products.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.JSON(c, http.StatusOK, order.Summarize(list, len(ps)))
	}
}
