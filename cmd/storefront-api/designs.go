package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/httpx"
	"github.com/MikeMC777/customtees/internal/product"
	"github.com/MikeMC777/customtees/internal/validation"
)

// @Summary		List design submissions
// @Tags			designs
// @Produce		json
// @Success		200	{object}	httpx.Response{data=[]design.Submission}
// @Router			/design-submissions [get]
func listDesignsHandler(repo design.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.JSON(c, http.StatusOK, items)
	}
}

// @Summary		Submit a design
// @Tags			designs
// @Accept			json
// @Produce		json
// @Param			input	body		design.Input	true	"Design"
// @Success		201		{object}	httpx.Response{data=design.Submission}
// @Failure		400		{object}	httpx.Response
// @Router			/design-submissions [post]
func submitDesignHandler(repo design.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in design.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Error(c, httpx.CodeBadRequest, errors.New("invalid json"))
			return
		}
		s, err := repo.Create(c.Request.Context(), in)
		if err != nil {
			var fe validation.FieldErrors
			if errors.As(err, &fe) {
				httpx.Error(c, httpx.CodeValidation, fe)
				return
			}
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.JSON(c, http.StatusCreated, s)
	}
}

// @Summary		Reject a design submission
// @Description	Hard delete. Always 200; success is false when nothing was deleted.
// @Tags			designs
// @Produce		json
// @Param			id	path		string	true	"Submission ID"
// @Success		200	{object}	httpx.Response
// @Router			/design-submissions/{id} [delete]
func deleteDesignHandler(repo design.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Error(c, httpx.CodeInternal, err)
			return
		}
		httpx.Ack(c, ok, design.ErrNotFound.Error())
	}
}

// @Summary		Promote a design into a product
// @Tags			designs
// @Accept			json
// @Produce		json
// @Param			id		path		string				true	"Submission ID"
// @Param			input	body		design.PromoteInput	false	"Product fields"
// @Success		201		{object}	httpx.Response{data=product.Product}
// @Failure		404		{object}	httpx.Response
// @Router			/design-submissions/{id}/promote [post]
func promoteDesignHandler(p *design.Promoter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var extra design.PromoteInput
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&extra); err != nil {
				httpx.Error(c, httpx.CodeBadRequest, errors.New("invalid json"))
				return
			}
		}
		prod, err := p.Promote(c.Request.Context(), c.Param("id"), extra)
		if err != nil {
			switch {
			case errors.Is(err, design.ErrNotFound):
				httpx.Error(c, httpx.CodeNotFound, err)
			case product.IsValidation(err):
				httpx.Error(c, httpx.CodeValidation, err)
			default:
				httpx.Error(c, httpx.CodeInternal, err)
			}
			return
		}
		httpx.JSON(c, http.StatusCreated, prod)
	}
}
