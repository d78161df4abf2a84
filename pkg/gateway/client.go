package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/appetiteclub/kitchenscreen/pkg/enums/orderstatus"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
	"github.com/aquamarinepk/aqm"
)

// Gateway is the remote kitchen order store as seen by the dashboard and the counter.
type Gateway interface {
	FetchSnapshot(ctx context.Context, shopID int64) (*Snapshot, error)
	SubmitOrder(ctx context.Context, order OrderPayload) (*Confirmation, error)
	TransitionOrder(ctx context.Context, orderID int64, action lifecycle.Action) error
	TransitionLine(ctx context.Context, lineID int64) error
	CheckKitchenReadiness(ctx context.Context, reference string) (Readiness, error)
}

// Requester is the part of aqm.ServiceClient the gateway needs.
type Requester interface {
	Request(ctx context.Context, method, path string, body interface{}) (*aqm.SuccessResponse, error)
}

const (
	detailsPath   = "/kitchen/orders/details"
	readinessPath = "/kitchen/orders/readiness"
)

// Client talks to the kitchen service over HTTP. It never retries and never caches.
type Client struct {
	requester Requester
	logger    aqm.Logger
}

func NewClient(requester Requester, logger aqm.Logger) *Client {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Client{requester: requester, logger: logger}
}

// NewHTTPClient builds a Client for the kitchen service at baseURL.
func NewHTTPClient(baseURL string, logger aqm.Logger) *Client {
	return NewClient(aqm.NewServiceClient(baseURL), logger)
}

func (c *Client) FetchSnapshot(ctx context.Context, shopID int64) (*Snapshot, error) {
	const op = "fetch snapshot"
	if err := c.ready(); err != nil {
		return nil, remoteErr(op, err)
	}

	req := DetailsRequest{ShopID: shopID, Orders: []OrderPayload{}}
	resp, err := c.requester.Request(ctx, http.MethodPost, detailsPath, req)
	if err != nil {
		return nil, remoteErr(op, err)
	}

	var snapshot Snapshot
	if err := decodeSuccessResponse(resp, &snapshot); err != nil {
		return nil, remoteErr(op, err)
	}

	c.logger.Debug("kitchen snapshot fetched", "shop_id", shopID, "orders", len(snapshot.Orders), "lines", len(snapshot.Lines))
	return &snapshot, nil
}

// SubmitOrder sends a new order to the kitchen. The order and every line are
// forced to draft and flagged for cooking whatever the caller set.
func (c *Client) SubmitOrder(ctx context.Context, order OrderPayload) (*Confirmation, error) {
	const op = "submit order"
	if err := c.ready(); err != nil {
		return nil, remoteErr(op, err)
	}
	if order.Reference == "" {
		return nil, remoteErr(op, fmt.Errorf("%w: missing order reference", ErrInvalidArgument))
	}

	order = forceDraft(order)
	req := DetailsRequest{ShopID: order.ShopID, Orders: []OrderPayload{order}}
	resp, err := c.requester.Request(ctx, http.MethodPost, detailsPath, req)
	if err != nil {
		return nil, remoteErr(op, err)
	}

	var snapshot Snapshot
	if err := decodeSuccessResponse(resp, &snapshot); err != nil {
		return nil, remoteErr(op, err)
	}

	c.logger.Info("order sent to kitchen", "reference", order.Reference, "lines", len(order.Lines))
	return &Confirmation{Reference: order.Reference, Snapshot: snapshot}, nil
}

func (c *Client) TransitionOrder(ctx context.Context, orderID int64, action lifecycle.Action) error {
	const op = "transition order"
	if err := c.ready(); err != nil {
		return remoteErr(op, err)
	}
	if orderID <= 0 {
		return remoteErr(op, fmt.Errorf("%w: order id %d", ErrInvalidArgument, orderID))
	}
	if lifecycle.ActionByName(action.Code()) == nil {
		return remoteErr(op, fmt.Errorf("%w: action %q", ErrInvalidArgument, action.Code()))
	}

	path := fmt.Sprintf("/kitchen/orders/%d/%s", orderID, action.Code())
	if _, err := c.requester.Request(ctx, http.MethodPatch, path, nil); err != nil {
		return remoteErr(op+" "+action.Code(), err)
	}
	return nil
}

func (c *Client) TransitionLine(ctx context.Context, lineID int64) error {
	const op = "toggle line"
	if err := c.ready(); err != nil {
		return remoteErr(op, err)
	}
	if lineID <= 0 {
		return remoteErr(op, fmt.Errorf("%w: line id %d", ErrInvalidArgument, lineID))
	}

	path := fmt.Sprintf("/kitchen/order-lines/%d/toggle", lineID)
	if _, err := c.requester.Request(ctx, http.MethodPatch, path, nil); err != nil {
		return remoteErr(op, err)
	}
	return nil
}

func (c *Client) CheckKitchenReadiness(ctx context.Context, reference string) (Readiness, error) {
	const op = "check readiness"
	if err := c.ready(); err != nil {
		return Readiness{}, remoteErr(op, err)
	}

	path := readinessPath + "?reference=" + url.QueryEscape(reference)
	resp, err := c.requester.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Readiness{}, remoteErr(op, err)
	}
	if resp == nil {
		return Readiness{}, remoteErr(op, errors.New("nil success response"))
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return Readiness{}, remoteErr(op, err)
	}
	return DecodeReadiness(raw), nil
}

// SaveScreen configures which categories a shop's kitchen cooks. It is an
// operator call and not part of Gateway.
func (c *Client) SaveScreen(ctx context.Context, screen ScreenConfig) error {
	const op = "save screen"
	if err := c.ready(); err != nil {
		return remoteErr(op, err)
	}
	if screen.ShopID <= 0 {
		return remoteErr(op, fmt.Errorf("%w: shop id %d", ErrInvalidArgument, screen.ShopID))
	}

	path := fmt.Sprintf("/kitchen/screens/%d", screen.ShopID)
	if _, err := c.requester.Request(ctx, http.MethodPut, path, screen); err != nil {
		return remoteErr(op, err)
	}
	return nil
}

func (c *Client) ready() error {
	if c == nil || c.requester == nil {
		return ErrNotConfigured
	}
	return nil
}

func forceDraft(order OrderPayload) OrderPayload {
	draft := orderstatus.Statuses.Draft.Code()
	order.Status = draft
	order.IsCooking = true

	lines := make([]LineCommand, len(order.Lines))
	for i, line := range order.Lines {
		line.Fields.Status = draft
		line.Fields.IsCooking = true
		lines[i] = line
	}
	order.Lines = lines
	return order
}

// decodeSuccessResponse copies the dynamic response payload into dest.
func decodeSuccessResponse(resp *aqm.SuccessResponse, dest interface{}) error {
	if resp == nil {
		return errors.New("nil success response")
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, dest)
}
