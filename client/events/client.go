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

package events

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/requestid"

	"github.com/mendersoftware/devicehub/model"
)

const (
	healthURI = "/api/internal/v1/eventstore/health"
	eventsURI = "/api/internal/v1/eventstore/events"
	eventURI  = "/api/internal/v1/eventstore/events/:id"
)

const defaultTimeout = time.Duration(10) * time.Second

// Client is the durable event store collaborator client. Appends are
// expected to be idempotent on the event ID so that redelivered pipeline
// messages do not duplicate events.
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	CheckHealth(ctx context.Context) error
	AppendEvent(ctx context.Context, event *model.EnrichedDeviceEvent) error
	// GetEvent returns nil without error when the event does not exist.
	GetEvent(ctx context.Context, id uuid.UUID) (*model.EnrichedDeviceEvent, error)
}

type ClientOptions struct {
	Client *http.Client
}

// NewClient returns a new event store client
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

func (c *client) AppendEvent(
	ctx context.Context,
	event *model.EnrichedDeviceEvent,
) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	payload, _ := json.Marshal(event)
	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost, c.urlBase+eventsURI, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	rsp, err := c.client.Do(withRequestID(ctx, req))
	if err != nil {
		return errors.Wrap(err, "append event request failed")
	}
	defer rsp.Body.Close()

	switch rsp.StatusCode {
	// Conflict means the event ID was appended by an earlier delivery.
	case http.StatusCreated, http.StatusOK, http.StatusConflict:
		return nil
	default:
		return errors.Errorf(
			"append event request failed with unexpected status %v",
			rsp.StatusCode)
	}
}

func (c *client) GetEvent(
	ctx context.Context,
	id uuid.UUID,
) (*model.EnrichedDeviceEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	repl := strings.NewReplacer(":id", id.String())
	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet, c.urlBase+repl.Replace(eventURI), nil)
	if err != nil {
		return nil, err
	}

	rsp, err := c.client.Do(withRequestID(ctx, req))
	if err != nil {
		return nil, errors.Wrap(err, "get event request failed")
	}
	defer rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, errors.Errorf(
			"get event request failed with unexpected status %v",
			rsp.StatusCode)
	}

	event := &model.EnrichedDeviceEvent{}
	if err := json.NewDecoder(rsp.Body).Decode(event); err != nil {
		return nil, errors.Wrap(err, "error parsing get event response")
	}
	return event, nil
}

// withRequestID forwards the request ID of the call that triggered the
// outbound request, tying the collaborator's logs to ours.
func withRequestID(ctx context.Context, req *http.Request) *http.Request {
	if rid := requestid.FromContext(ctx); rid != "" {
		req.Header.Set(requestid.RequestIdHeader, rid)
	}
	return req
}
