// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/model"
)

const (
	paramToken        = "token"
	paramAssignmentID = "assignmentId"

	queryPage    = "page"
	queryPerPage = "per_page"

	defaultPerPage int64 = 100
	maxPerPage     int64 = 500
)

// ManagementController contains management end-points
type ManagementController struct {
	app    app.App
	broker *StateChangeBroker
}

// NewManagementController returns a new ManagementController
func NewManagementController(
	app app.App,
	broker *StateChangeBroker,
) *ManagementController {
	return &ManagementController{app: app, broker: broker}
}

// SubmitOperation responds to POST /operations. The operation is accepted
// for asynchronous expansion and execution; the response only confirms
// intake. An operation with a caller-supplied token that exists already is
// a conflict.
func (h ManagementController) SubmitOperation(c *gin.Context) {
	ctx := c.Request.Context()

	var operation model.BatchOperation
	if err := c.ShouldBindJSON(&operation); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": errors.Wrap(err,
				"invalid batch operation").Error(),
		})
		return
	}

	err := h.app.SubmitBatchOperation(ctx, &operation)
	if errors.Is(err, app.ErrOperationExists) {
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
		return
	} else if err != nil {
		status := http.StatusInternalServerError
		var verr validation.Errors
		if errors.As(err, &verr) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.Header("Location", APIURLManagementOperations+"/"+operation.Token)
	c.JSON(http.StatusCreated, gin.H{
		"token": operation.Token,
	})
}

// GetOperation responds to GET /operations/:token
func (h ManagementController) GetOperation(c *gin.Context) {
	ctx := c.Request.Context()

	operation, err := h.app.GetBatchOperation(ctx, c.Param(paramToken))
	if errors.Is(err, app.ErrOperationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, operation)
}

// GetOperationStatus responds to GET /operations/:token/status
func (h ManagementController) GetOperationStatus(c *gin.Context) {
	ctx := c.Request.Context()

	status, err := h.app.GetBatchOperationStatus(ctx, c.Param(paramToken))
	if errors.Is(err, app.ErrOperationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListElements responds to GET /operations/:token/elements
func (h ManagementController) ListElements(c *gin.Context) {
	ctx := c.Request.Context()

	page, perPage, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	elements, err := h.app.ListBatchElements(ctx, c.Param(paramToken),
		(page-1)*perPage, perPage)
	if errors.Is(err, app.ErrOperationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, elements)
}

// GetDeviceState responds to GET /assignments/:assignmentId/state
func (h ManagementController) GetDeviceState(c *gin.Context) {
	ctx := c.Request.Context()

	assignmentID, err := uuid.Parse(c.Param(paramAssignmentID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": errors.Wrap(err,
				"invalid assignment ID").Error(),
		})
		return
	}

	state, err := h.app.GetDeviceState(ctx, assignmentID)
	if errors.Is(err, app.ErrDeviceStateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, state)
}

func parsePagination(c *gin.Context) (page, perPage int64, err error) {
	page = 1
	perPage = defaultPerPage
	if value := c.Query(queryPage); value != "" {
		page, err = strconv.ParseInt(value, 10, 64)
		if err != nil || page < 1 {
			return 0, 0, errors.New("invalid page query parameter")
		}
	}
	if value := c.Query(queryPerPage); value != "" {
		perPage, err = strconv.ParseInt(value, 10, 64)
		if err != nil || perPage < 1 {
			return 0, 0, errors.New(
				"invalid per_page query parameter")
		}
		if perPage > maxPerPage {
			perPage = maxPerPage
		}
	}
	return page, perPage, nil
}
