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
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mendersoftware/devicehub/app/mocks"
)

func TestAlive(t *testing.T) {
	router, _ := NewRouter(&mocks.App{}, NewStateChangeBroker())

	req, _ := http.NewRequest(http.MethodGet, APIURLInternalAlive, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHealth(t *testing.T) {
	testCases := []struct {
		Name string

		Error error

		HTTPStatus int
	}{{
		Name: "ok",

		HTTPStatus: http.StatusNoContent,
	}, {
		Name: "collaborator down",

		Error: errors.New("error reaching MongoDB"),

		HTTPStatus: http.StatusServiceUnavailable,
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			devicehubApp := &mocks.App{}
			defer devicehubApp.AssertExpectations(t)
			devicehubApp.On("HealthCheck", mock.Anything).
				Return(tc.Error)

			router, _ := NewRouter(
				devicehubApp, NewStateChangeBroker())
			req, _ := http.NewRequest(
				http.MethodGet, APIURLInternalHealth, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.HTTPStatus, w.Code)
			if tc.Error != nil {
				assert.Contains(t,
					w.Body.String(), tc.Error.Error())
			}
		})
	}
}
