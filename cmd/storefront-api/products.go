package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/customtees/internal/assets"
	"github.com/MikeMC777/customtees/internal/httpx"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
)

// @Summary		List products
// @Tags			admin-products
// @Produce		json
// @Success		200	{object}	httpx.Response{data=[]product.Product}
// @Router			/admin/products [get]
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.JSON(c, http.StatusOK, items)
	}
}

// @Summary		Get product
// @Tags			admin-products
// @Produce		json
// @Param			id	path		string	true	"Product ID"
// @Success		200	{object}	httpx.Response{data=product.Product}
// @Failure		404	{object}	httpx.Response
// @Router			/admin/products/{id} [get]
func getProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			productError(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, p)
	}
}

// @Summary		Create product
// @Tags			admin-products
// @Accept			json
// @Produce		json
// @Param			input	body		product.Input	true	"Product"
// @Success		201		{object}	httpx.Response{data=product.Product}
// @Failure		400		{object}	httpx.Response
// @Router			/admin/products [post]
func createProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Error(c, httpx.CodeBadRequest, errors.New("invalid json"))
			return
		}
		p, err := repo.Create(c.Request.Context(), in)
		if err != nil {
			productError(c, err)
			return
		}
		httpx.JSON(c, http.StatusCreated, p)
	}
}

// @Summary		Replace product fields
// @Description	Every writable field is overwritten with the request body.
// @Tags			admin-products
// @Accept			json
// @Produce		json
// @Param			id		path		string			true	"Product ID"
// @Param			input	body		product.Input	true	"Product"
// @Success		200		{object}	httpx.Response{data=product.Product}
// @Failure		400		{object}	httpx.Response
// @Failure		404		{object}	httpx.Response
// @Router			/admin/products/{id} [put]
func updateProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Error(c, httpx.CodeBadRequest, errors.New("invalid json"))
			return
		}
		p, err := repo.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			productError(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, p)
	}
}

// @Summary		Delete product
// @Description	Always 200. success is false when nothing was deleted.
// @Tags			admin-products
// @Produce		json
// @Param			id	path		string	true	"Product ID"
// @Success		200	{object}	httpx.Response
// @Router			/admin/products/{id} [delete]
func deleteProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.Ack(c, ok, product.ErrNotFound.Error())
	}
}

// @Summary		Upload product image
// @Tags			admin-products
// @Accept			multipart/form-data
// @Produce		json
// @Param			my_file	formData	file	true	"Image (.jpg .jpeg .png .gif)"
// @Success		200		{object}	httpx.Response{data=order.ImageUploadResponse}
// @Failure		400		{object}	httpx.Response
// @Router			/admin/products/upload-image [post]
func uploadImageHandler(store assets.Storage, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, name, ok := readUpload(c, "my_file", maxBytes)
		if !ok {
			return
		}
		key, contentType, err := assets.ImageKey(name)
		if err != nil {
			httpx.Error(c, httpx.CodeValidation, err)
			return
		}
		url, err := store.Put(c.Request.Context(), key, data, contentType)
		if err != nil {
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.JSON(c, http.StatusOK, order.ImageUploadResponse{URL: url})
	}
}

func productError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound):
		httpx.Error(c, httpx.CodeNotFound, err)
	case product.IsValidation(err):
		httpx.Error(c, httpx.CodeValidation, err)
	default:
		httpx.Error(c, httpx.CodeInternal, err)
	}
}

// readUpload reads a multipart file field capped at maxBytes. It writes the
// error reply itself and reports ok=false when the upload is unusable.
func readUpload(c *gin.Context, field string, maxBytes int64) (data []byte, filename string, ok bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20)
	fh, err := c.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httpx.Error(c, httpx.CodeValidation, errors.New("file too large"))
			return nil, "", false
		}
		httpx.Error(c, httpx.CodeBadRequest, errors.New("file is required in field "+field))
		return nil, "", false
	}
	if fh.Size > maxBytes {
		httpx.Error(c, httpx.CodeValidation, errors.New("file too large"))
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		httpx.Error(c, httpx.CodeInternal, err)
		return nil, "", false
	}
	defer f.Close()
	data, err = io.ReadAll(f)
	if err != nil {
		httpx.Error(c, httpx.CodeInternal, err)
		return nil, "", false
	}
	return data, fh.Filename, true
}
