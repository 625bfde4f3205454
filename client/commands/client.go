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

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/requestid"
)

const (
	healthURI = "/api/internal/v1/commanddelivery/health"
	invokeURI = "/api/internal/v1/commanddelivery/invocations"
)

const defaultTimeout = time.Duration(30) * time.Second

// ErrDeviceUnreachable is returned when the delivery subsystem cannot reach
// the target device.
var ErrDeviceUnreachable = errors.New("commands: device unreachable")

// InvocationRequest asks the command-delivery subsystem to invoke a command
// on one device.
type InvocationRequest struct {
	DeviceToken string            `json:"device_token"`
	Command     string            `json:"command"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

// Client is the remote command-delivery collaborator client, invoked by
// batch operation handlers.
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	CheckHealth(ctx context.Context) error
	Invoke(ctx context.Context, req InvocationRequest) error
}

type ClientOptions struct {
	Client *http.Client
}

// NewClient returns a new command-delivery client
func NewClient(urlBase string, opts ...ClientOptions) Client {
	var clientOpts = ClientOptions{
		Client: &http.Client{},
	}
	for _, opt := range opts {
		if opt.Client != nil {
			clientOpts.Client = opt.Client
		}
	}
	return &client{
		urlBase: strings.TrimSuffix(urlBase, "/"),
		client:  *clientOpts.Client,
	}
}

type client struct {
	urlBase string
	client  http.Client
}

func (c *client) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	req, _ := http.NewRequestWithContext(
		ctx, http.MethodGet, c.urlBase+healthURI, nil,
	)
	rsp, err := c.client.Do(withRequestID(ctx, req))
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode < http.StatusOK || rsp.StatusCode >= 300 {
		return errors.Errorf("health check HTTP error: %s", rsp.Status)
	}
	return nil
}

func (c *client) Invoke(ctx context.Context, invocation InvocationRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	payload, _ := json.Marshal(invocation)
	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost, c.urlBase+invokeURI, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	rsp, err := c.client.Do(withRequestID(ctx, req))
	if err != nil {
		return errors.Wrap(err, "invoke command request failed")
	}
	defer rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return ErrDeviceUnreachable
	default:
		return errors.Errorf(
			"invoke command request failed with unexpected status %v",
			rsp.StatusCode)
	}
}

// withRequestID forwards the request ID of the call that triggered the
// outbound request, tying the collaborator's logs to ours.
func withRequestID(ctx context.Context, req *http.Request) *http.Request {
	if rid := requestid.FromContext(ctx); rid != "" {
		req.Header.Set(requestid.RequestIdHeader, rid)
	}
	return req
}
