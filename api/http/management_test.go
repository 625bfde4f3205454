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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/app/mocks"
	"github.com/mendersoftware/devicehub/model"
)

const JWTUser = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
	"eyJzdWIiOiIxMjM0NTY3ODkwIiwibWVuZGVyLnVzZXIiOnRydWUsIm1lbmRlci5wbGFuI" +
	"joiZW50ZXJwcmlzZSIsIm1lbmRlci50ZW5hbnQiOiJhYmNkIn0." +
	"sn10_eTex-otOTJ7WCp_7NUwiz9lBT0KiPOdZF9Jt4w"

const headerAuthorization = "Authorization"

func TestSubmitOperation(t *testing.T) {
	testCases := []struct {
		Name string

		Body     interface{}
		AppError error

		HTTPStatus int
	}{{
		Name: "accepted",

		Body: model.BatchOperation{
			OperationType: "InvokeCommand",
			Parameters:    map[string]string{"command": "reboot"},
			DeviceTokens:  []string{"d1", "d2"},
		},

		HTTPStatus: http.StatusCreated,
	}, {
		Name: "empty device token list",

		Body: model.BatchOperation{
			OperationType: "InvokeCommand",
		},
		AppError: validation.Errors{
			"device_tokens": errors.New("cannot be blank"),
		},

		HTTPStatus: http.StatusBadRequest,
	}, {
		Name: "token conflict",

		Body: model.BatchOperation{
			Token:         "op-1",
			OperationType: "InvokeCommand",
			DeviceTokens:  []string{"d1"},
		},
		AppError: app.ErrOperationExists,

		HTTPStatus: http.StatusConflict,
	}, {
		Name: "internal error",

		Body: model.BatchOperation{
			OperationType: "InvokeCommand",
			DeviceTokens:  []string{"d1"},
		},
		AppError: errors.New("store unavailable"),

		HTTPStatus: http.StatusInternalServerError,
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			devicehubApp := &mocks.App{}
			defer devicehubApp.AssertExpectations(t)
			devicehubApp.On("SubmitBatchOperation", mock.Anything,
				mock.AnythingOfType("*model.BatchOperation")).
				Run(func(args mock.Arguments) {
					op := args.Get(1).(*model.BatchOperation)
					if op.Token == "" {
						op.Token = uuid.New().String()
					}
				}).
				Return(tc.AppError)

			router, _ := NewRouter(
				devicehubApp, NewStateChangeBroker())
			body, _ := json.Marshal(tc.Body)
			req, _ := http.NewRequest(http.MethodPost,
				APIURLManagementOperations,
				bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(headerAuthorization, "Bearer "+JWTUser)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.HTTPStatus, w.Code)
			if tc.HTTPStatus == http.StatusCreated {
				assert.NotEmpty(t,
					w.Header().Get("Location"))
				assert.Contains(t, w.Body.String(), "token")
			}
		})
	}
}

func TestGetOperationStatus(t *testing.T) {
	status := &model.BatchOperationStatus{
		Token:       "op-1",
		Total:       3,
		Unprocessed: 1,
		Succeeded:   1,
		Failed:      1,
		Complete:    false,
	}

	testCases := []struct {
		Name string

		Token      string
		AppReturns []interface{}

		HTTPStatus int
	}{{
		Name: "ok",

		Token:      "op-1",
		AppReturns: []interface{}{status, nil},

		HTTPStatus: http.StatusOK,
	}, {
		Name: "not found",

		Token:      "nope",
		AppReturns: []interface{}{nil, app.ErrOperationNotFound},

		HTTPStatus: http.StatusNotFound,
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			devicehubApp := &mocks.App{}
			defer devicehubApp.AssertExpectations(t)
			devicehubApp.On("GetBatchOperationStatus",
				mock.Anything, tc.Token).
				Return(tc.AppReturns...)

			router, _ := NewRouter(
				devicehubApp, NewStateChangeBroker())
			req, _ := http.NewRequest(http.MethodGet,
				strings.Replace(
					APIURLManagementOperationsTokenStatus,
					":token", tc.Token, 1), nil)
			req.Header.Set(headerAuthorization, "Bearer "+JWTUser)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.HTTPStatus, w.Code)
			if tc.HTTPStatus == http.StatusOK {
				var out model.BatchOperationStatus
				err := json.Unmarshal(w.Body.Bytes(), &out)
				assert.NoError(t, err)
				assert.Equal(t, *status, out)
			}
		})
	}
}

func TestListElements(t *testing.T) {
	elements := []model.BatchElement{{
		OperationToken: "op-1",
		DeviceToken:    "d1",
		Index:          0,
		Status:         model.ElementStatusSucceeded,
	}, {
		OperationToken: "op-1",
		DeviceToken:    "d2",
		Index:          1,
		Status:         model.ElementStatusUnprocessed,
	}}

	devicehubApp := &mocks.App{}
	defer devicehubApp.AssertExpectations(t)
	devicehubApp.On("ListBatchElements", mock.Anything, "op-1",
		int64(20), int64(20)).Return(elements, nil)

	router, _ := NewRouter(devicehubApp, NewStateChangeBroker())
	req, _ := http.NewRequest(http.MethodGet,
		strings.Replace(APIURLManagementOperationsTokenElements,
			":token", "op-1", 1)+"?page=2&per_page=20", nil)
	req.Header.Set(headerAuthorization, "Bearer "+JWTUser)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var out []model.BatchElement
	err := json.Unmarshal(w.Body.Bytes(), &out)
	assert.NoError(t, err)
	assert.Equal(t, elements, out)
}

func TestGetDeviceState(t *testing.T) {
	assignmentID := uuid.New()
	state := &model.DeviceState{
		ID:              uuid.New(),
		DeviceToken:     "d1",
		DeviceID:        uuid.New(),
		DeviceTypeID:    uuid.New(),
		AssignmentID:    assignmentID,
		LastInteraction: time.Now().UTC().Truncate(time.Second),
	}

	testCases := []struct {
		Name string

		AssignmentID string
		AppReturns   []interface{}

		HTTPStatus int
	}{{
		Name: "ok",

		AssignmentID: assignmentID.String(),
		AppReturns:   []interface{}{state, nil},

		HTTPStatus: http.StatusOK,
	}, {
		Name: "no state recorded",

		AssignmentID: uuid.NewString(),
		AppReturns:   []interface{}{nil, app.ErrDeviceStateNotFound},

		HTTPStatus: http.StatusNotFound,
	}, {
		Name: "malformed assignment ID",

		AssignmentID: "not-a-uuid",

		HTTPStatus: http.StatusBadRequest,
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			devicehubApp := &mocks.App{}
			defer devicehubApp.AssertExpectations(t)
			if tc.AppReturns != nil {
				devicehubApp.On("GetDeviceState", mock.Anything,
					uuid.MustParse(tc.AssignmentID)).
					Return(tc.AppReturns...)
			}

			router, _ := NewRouter(
				devicehubApp, NewStateChangeBroker())
			req, _ := http.NewRequest(http.MethodGet,
				strings.Replace(
					APIURLManagementAssignmentState,
					":assignmentId", tc.AssignmentID, 1),
				nil)
			req.Header.Set(headerAuthorization,
				"Bearer "+JWTUser)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.HTTPStatus, w.Code)
			if tc.HTTPStatus == http.StatusOK {
				assert.Contains(t,
					w.Body.String(), "d1")
			}
		})
	}
}
