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

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/model"
)

// InternalController contains internal end-points
type InternalController struct {
	app app.App
}

// NewInternalController returns a new InternalController
func NewInternalController(app app.App) *InternalController {
	return &InternalController{app: app}
}

// RegisterDevice responds to POST /devices. Registration is idempotent:
// repeating a request for an already-registered token returns the existing
// assignment.
func (h InternalController) RegisterDevice(c *gin.Context) {
	ctx := c.Request.Context()

	var request model.DeviceRegistrationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": errors.Wrap(err,
				"invalid registration request").Error(),
		})
		return
	}

	assignment, err := h.app.RegisterDevice(ctx, request)
	if errors.Is(err, app.ErrRegistrationRejected) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, assignment)
}
