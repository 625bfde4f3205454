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

package deviceman

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendersoftware/go-lib-micro/requestid"
)

// newTestServer creates a mock server that responds with the responses
// pushed onto rspChan and pushes received requests onto reqChan if the
// requests are consumed in the other end.
func newTestServer(
	rspChan <-chan *http.Response,
	reqChan chan<- *http.Request,
) *httptest.Server {
	handler := func(w http.ResponseWriter, r *http.Request) {
		var rsp *http.Response
		select {
		case rsp = <-rspChan:
		default:
			panic("[PROG ERR] I don't know what to respond!")
		}
		if reqChan != nil {
			bodyClone := bytes.NewBuffer(nil)
			_, _ = io.Copy(bodyClone, r.Body)
			req := r.Clone(context.TODO())
			req.Body = io.NopCloser(bodyClone)
			select {
			case reqChan <- req:
			default:
			}
		}
		w.WriteHeader(rsp.StatusCode)
		if rsp.Body != nil {
			_, _ = io.Copy(w, rsp.Body)
		}
	}
	return httptest.NewServer(http.HandlerFunc(handler))
}

func TestGetDeviceByToken(t *testing.T) {
	t.Parallel()

	rspChan := make(chan *http.Response, 1)
	reqChan := make(chan *http.Request, 1)
	srv := newTestServer(rspChan, reqChan)
	defer srv.Close()
	client := NewClient(srv.URL)

	ctx := requestid.WithContext(context.Background(), "test-request-id")

	rspChan <- &http.Response{
		StatusCode: http.StatusOK,
		Body: io.NopCloser(bytes.NewReader([]byte(
			`{"id":"` + uuid.NewString() + `","token":"d1"}`,
		))),
	}
	device, err := client.GetDeviceByToken(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, "d1", device.Token)

	// the request ID of the triggering call rides along
	req := <-reqChan
	assert.Equal(t, "test-request-id",
		req.Header.Get(requestid.RequestIdHeader))

	rspChan <- &http.Response{StatusCode: http.StatusNotFound}
	device, err = client.GetDeviceByToken(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, device)
}

func TestCreateDeviceConflict(t *testing.T) {
	t.Parallel()

	rspChan := make(chan *http.Response, 1)
	reqChan := make(chan *http.Request, 1)
	srv := newTestServer(rspChan, reqChan)
	defer srv.Close()
	client := NewClient(srv.URL)

	ctx := requestid.WithContext(context.Background(), "create-request-id")

	rspChan <- &http.Response{StatusCode: http.StatusConflict}
	_, err := client.CreateDevice(ctx, DeviceCreateRequest{
		Token:        "d1",
		DeviceTypeID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrDeviceExists)

	req := <-reqChan
	assert.Equal(t, "create-request-id",
		req.Header.Get(requestid.RequestIdHeader))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}
