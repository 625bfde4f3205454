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
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/requestid"

	"github.com/mendersoftware/devicehub/model"
)

const (
	healthURI      = "/api/internal/v1/devicemanagement/health"
	devicesURI     = "/api/internal/v1/devicemanagement/devices"
	deviceURI      = "/api/internal/v1/devicemanagement/devices/token/:token"
	deviceTypeURI  = "/api/internal/v1/devicemanagement/devicetypes/token/:token"
	customerURI    = "/api/internal/v1/devicemanagement/customers/token/:token"
	areaURI        = "/api/internal/v1/devicemanagement/areas/token/:token"
	assetURI       = "/api/internal/v1/devicemanagement/assets/token/:token"
	assignmentsURI = "/api/internal/v1/devicemanagement/assignments"
	assignmentURI  = "/api/internal/v1/devicemanagement/assignments/:id"
)

const defaultTimeout = time.Duration(10) * time.Second

// ErrDeviceExists is returned by CreateDevice when the token is already
// taken. The uniqueness check lives in the device-management service; the
// conflict is what makes concurrent first-contact registration idempotent.
var ErrDeviceExists = errors.New("deviceman: device token already exists")

// Client is the device-management collaborator client.
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	CheckHealth(ctx context.Context) error
	// GetDeviceByToken returns nil without error when the token is
	// unknown.
	GetDeviceByToken(ctx context.Context, token string) (*model.Device, error)
	// CreateDevice creates a device, failing with ErrDeviceExists when
	// another caller created the same token first.
	CreateDevice(ctx context.Context, req DeviceCreateRequest) (*model.Device, error)
	GetDeviceTypeByToken(ctx context.Context, token string) (*EntityRef, error)
	GetCustomerByToken(ctx context.Context, token string) (*EntityRef, error)
	GetAreaByToken(ctx context.Context, token string) (*EntityRef, error)
	GetAssetByToken(ctx context.Context, token string) (*EntityRef, error)
	CreateDeviceAssignment(
		ctx context.Context,
		req AssignmentCreateRequest,
	) (*model.DeviceAssignment, error)
	GetDeviceAssignment(
		ctx context.Context,
		id uuid.UUID,
	) (*model.DeviceAssignment, error)
}

type ClientOptions struct {
	Client *http.Client
}

// NewClient returns a new device-management client
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
	ctx, cancel := clientContext(ctx)
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

func (c *client) GetDeviceByToken(
	ctx context.Context,
	token string,
) (*model.Device, error) {
	device := &model.Device{}
	found, err := c.getByToken(ctx, deviceURI, token, device)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get device")
	} else if !found {
		return nil, nil
	}
	return device, nil
}

func (c *client) CreateDevice(
	ctx context.Context,
	createReq DeviceCreateRequest,
) (*model.Device, error) {
	ctx, cancel := clientContext(ctx)
	defer cancel()

	payload, _ := json.Marshal(createReq)
	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost, c.urlBase+devicesURI, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	rsp, err := c.client.Do(withRequestID(ctx, req))
	if err != nil {
		return nil, errors.Wrap(err, "create device request failed")
	}
	defer rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusCreated, http.StatusOK:
	case http.StatusConflict:
		return nil, ErrDeviceExists
	default:
		return nil, errors.Errorf(
			"create device request failed with unexpected status %v",
			rsp.StatusCode)
	}

	device := &model.Device{}
	if err := json.NewDecoder(rsp.Body).Decode(device); err != nil {
		return nil, errors.Wrap(err, "error parsing create device response")
	}
	return device, nil
}

func (c *client) GetDeviceTypeByToken(
	ctx context.Context,
	token string,
) (*EntityRef, error) {
	return c.getEntityRef(ctx, deviceTypeURI, token, "device type")
}

func (c *client) GetCustomerByToken(
	ctx context.Context,
	token string,
) (*EntityRef, error) {
	return c.getEntityRef(ctx, customerURI, token, "customer")
}

func (c *client) GetAreaByToken(
	ctx context.Context,
	token string,
) (*EntityRef, error) {
	return c.getEntityRef(ctx, areaURI, token, "area")
}

func (c *client) GetAssetByToken(
	ctx context.Context,
	token string,
) (*EntityRef, error) {
	return c.getEntityRef(ctx, assetURI, token, "asset")
}

func (c *client) CreateDeviceAssignment(
	ctx context.Context,
	createReq AssignmentCreateRequest,
) (*model.DeviceAssignment, error) {
	ctx, cancel := clientContext(ctx)
	defer cancel()

	payload, _ := json.Marshal(createReq)
	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost, c.urlBase+assignmentsURI, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	rsp, err := c.client.Do(withRequestID(ctx, req))
	if err != nil {
		return nil, errors.Wrap(err, "create assignment request failed")
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusCreated && rsp.StatusCode != http.StatusOK {
		return nil, errors.Errorf(
			"create assignment request failed with unexpected status %v",
			rsp.StatusCode)
	}

	assignment := &model.DeviceAssignment{}
	if err := json.NewDecoder(rsp.Body).Decode(assignment); err != nil {
		return nil, errors.Wrap(err,
			"error parsing create assignment response")
	}
	return assignment, nil
}

func (c *client) GetDeviceAssignment(
	ctx context.Context,
	id uuid.UUID,
) (*model.DeviceAssignment, error) {
	ctx, cancel := clientContext(ctx)
	defer cancel()

	repl := strings.NewReplacer(":id", id.String())
	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet, c.urlBase+repl.Replace(assignmentURI), nil)
	if err != nil {
		return nil, err
	}

	rsp, err := c.client.Do(withRequestID(ctx, req))
	if err != nil {
		return nil, errors.Wrap(err, "get assignment request failed")
	}
	defer rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, errors.Errorf(
			"get assignment request failed with unexpected status %v",
			rsp.StatusCode)
	}

	assignment := &model.DeviceAssignment{}
	if err := json.NewDecoder(rsp.Body).Decode(assignment); err != nil {
		return nil, errors.Wrap(err, "error parsing get assignment response")
	}
	return assignment, nil
}

func (c *client) getEntityRef(
	ctx context.Context,
	uri, token, kind string,
) (*EntityRef, error) {
	ref := &EntityRef{}
	found, err := c.getByToken(ctx, uri, token, ref)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", kind)
	} else if !found {
		return nil, nil
	}
	return ref, nil
}

func (c *client) getByToken(
	ctx context.Context,
	uri, token string,
	out interface{},
) (bool, error) {
	ctx, cancel := clientContext(ctx)
	defer cancel()

	repl := strings.NewReplacer(":token", url.PathEscape(token))
	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet, c.urlBase+repl.Replace(uri), nil)
	if err != nil {
		return false, err
	}

	rsp, err := c.client.Do(withRequestID(ctx, req))
	if err != nil {
		return false, errors.Wrap(err, "request failed")
	}
	defer rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, errors.Errorf(
			"request failed with unexpected status %v", rsp.StatusCode)
	}

	if err := json.NewDecoder(rsp.Body).Decode(out); err != nil {
		return false, errors.Wrap(err, "error parsing response")
	}
	return true, nil
}

// withRequestID forwards the request ID of the call that triggered the
// outbound request, tying the collaborator's logs to ours.
func withRequestID(ctx context.Context, req *http.Request) *http.Request {
	if rid := requestid.FromContext(ctx); rid != "" {
		req.Header.Set(requestid.RequestIdHeader, rid)
	}
	return req
}

func clientContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, defaultTimeout)
	}
	return context.WithCancel(ctx)
}
