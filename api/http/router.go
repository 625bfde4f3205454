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
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mendersoftware/go-lib-micro/accesslog"
	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/requestid"

	"github.com/mendersoftware/devicehub/app"
)

// API URL used by the HTTP router
const (
	APIURLInternal   = "/api/internal/v1/devicehub"
	APIURLManagement = "/api/management/v1/devicehub"

	APIURLInternalAlive   = APIURLInternal + "/alive"
	APIURLInternalHealth  = APIURLInternal + "/health"
	APIURLInternalDevices = APIURLInternal + "/devices"

	APIURLManagementOperations = APIURLManagement + "/operations"
	APIURLManagementOperationsToken = APIURLManagement +
		"/operations/:token"
	APIURLManagementOperationsTokenStatus = APIURLManagement +
		"/operations/:token/status"
	APIURLManagementOperationsTokenElements = APIURLManagement +
		"/operations/:token/elements"
	APIURLManagementAssignmentState = APIURLManagement +
		"/assignments/:assignmentId/state"
	APIURLManagementStateChangesWatch = APIURLManagement +
		"/state-changes/watch"
)

// NewRouter returns the gin router
func NewRouter(
	app app.App,
	broker *StateChangeBroker,
) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	gin.DisableConsoleColor()

	router := gin.New()
	router.Use(accesslog.Middleware())
	router.Use(gin.Recovery())
	router.Use(identity.Middleware(
		identity.NewMiddlewareOptions().
			SetPathRegex(`^/api/management/v[0-9]/`),
	))
	router.Use(requestid.Middleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowCredentials: true,
		AllowHeaders: []string{
			"Accept",
			"Allow",
			"Content-Type",
			"Origin",
			"Authorization",
			"Accept-Encoding",
			"Access-Control-Request-Headers",
			"Header-Access-Control-Request",
		},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowWebSockets: true,
		ExposeHeaders: []string{
			"Location",
			"Link",
		},
		MaxAge: time.Hour * 12,
	}))

	status := NewStatusController(app)
	router.GET(APIURLInternalAlive, status.Alive)
	router.GET(APIURLInternalHealth, status.Health)

	internal := NewInternalController(app)
	router.POST(APIURLInternalDevices, internal.RegisterDevice)

	management := NewManagementController(app, broker)
	router.POST(APIURLManagementOperations, management.SubmitOperation)
	router.GET(APIURLManagementOperationsToken, management.GetOperation)
	router.GET(APIURLManagementOperationsTokenStatus,
		management.GetOperationStatus)
	router.GET(APIURLManagementOperationsTokenElements,
		management.ListElements)
	router.GET(APIURLManagementAssignmentState, management.GetDeviceState)
	router.GET(APIURLManagementStateChangesWatch, management.Watch)

	return router, nil
}
