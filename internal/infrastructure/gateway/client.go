// Package gateway is the remote data gateway: typed queries and mutations
// against the single GraphQL endpoint, with the session bearer attached when
// one is present.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"

	"github.com/fleetgrid/tms-console/internal/core/domain"
	"github.com/fleetgrid/tms-console/internal/core/ports"
	"github.com/fleetgrid/tms-console/internal/metrics"
)

// Client implements ports.ShipmentGateway, ports.StatsGateway and
// ports.AuthGateway over one GraphQL endpoint.
type Client struct {
	gql      *graphql.Client
	tokens   ports.TokenSource
	validate *validator.Validate
	log      zerolog.Logger
}

// New returns a Client for endpoint. tokens supplies the bearer credential;
// requests are sent unauthenticated while it reports no session.
func New(endpoint string, timeout time.Duration, tokens ports.TokenSource, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		gql:      graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient)),
		tokens:   tokens,
		validate: validator.New(),
		log:      log,
	}
}

// filterVars is the wire shape of the combined filter: the structured filter
// dimensions plus the settled search term, exactly as the endpoint's
// ShipmentFilterInput expects them.
type filterVars struct {
	Status      domain.ShipmentStatus `json:"status,omitempty"`
	CarrierName string                `json:"carrier_name,omitempty"`
	Priority    domain.Priority       `json:"priority,omitempty"`
	IsFlagged   *bool                 `json:"is_flagged,omitempty"`
	DateFrom    string                `json:"date_from,omitempty"`
	DateTo      string                `json:"date_to,omitempty"`
	Search      string                `json:"search,omitempty"`
}

func (c *Client) ListShipments(ctx context.Context, in ports.ListShipmentsInput) (*domain.ShipmentPage, error) {
	req := graphql.NewRequest(shipmentsQuery)
	req.Var("page", in.Page)
	req.Var("limit", in.Limit)
	req.Var("filter", filterVars{
		Status:      in.Filter.Status,
		CarrierName: in.Filter.CarrierName,
		Priority:    in.Filter.Priority,
		IsFlagged:   in.Filter.IsFlagged,
		DateFrom:    in.Filter.DateFrom,
		DateTo:      in.Filter.DateTo,
		Search:      in.Search,
	})
	req.Var("sort", in.Sort)

	var resp struct {
		Shipments domain.ShipmentPage `json:"shipments"`
	}
	if err := c.run(ctx, "shipments", req, &resp); err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return &resp.Shipments, nil
}

func (c *Client) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	req := graphql.NewRequest(shipmentQuery)
	req.Var("id", id)

	var resp struct {
		Shipment *domain.Shipment `json:"shipment"`
	}
	if err := c.run(ctx, "shipment", req, &resp); err != nil {
		return nil, fmt.Errorf("get shipment %s: %w", id, err)
	}
	if resp.Shipment == nil {
		return nil, domain.ErrShipmentNotFound
	}
	return resp.Shipment, nil
}

func (c *Client) CreateShipment(ctx context.Context, in ports.CreateShipmentInput) (*domain.Shipment, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("create shipment: invalid input: %w", err)
	}
	req := graphql.NewRequest(createShipmentMutation)
	req.Var("input", in)

	var resp struct {
		CreateShipment domain.Shipment `json:"createShipment"`
	}
	if err := c.run(ctx, "createShipment", req, &resp); err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}
	return &resp.CreateShipment, nil
}

func (c *Client) UpdateShipment(ctx context.Context, id string, in ports.UpdateShipmentInput) (*domain.Shipment, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("update shipment: invalid input: %w", err)
	}
	req := graphql.NewRequest(updateShipmentMutation)
	req.Var("id", id)
	req.Var("input", in)

	var resp struct {
		UpdateShipment domain.Shipment `json:"updateShipment"`
	}
	if err := c.run(ctx, "updateShipment", req, &resp); err != nil {
		return nil, fmt.Errorf("update shipment %s: %w", id, err)
	}
	return &resp.UpdateShipment, nil
}

func (c *Client) DeleteShipment(ctx context.Context, id string) error {
	req := graphql.NewRequest(deleteShipmentMutation)
	req.Var("id", id)

	var resp struct {
		DeleteShipment bool `json:"deleteShipment"`
	}
	if err := c.run(ctx, "deleteShipment", req, &resp); err != nil {
		return fmt.Errorf("delete shipment %s: %w", id, err)
	}
	if !resp.DeleteShipment {
		return domain.ErrShipmentNotFound
	}
	return nil
}

func (c *Client) FlagShipment(ctx context.Context, id, reason string) (*domain.Shipment, error) {
	req := graphql.NewRequest(flagShipmentMutation)
	req.Var("id", id)
	req.Var("reason", reason)

	var resp struct {
		FlagShipment domain.Shipment `json:"flagShipment"`
	}
	if err := c.run(ctx, "flagShipment", req, &resp); err != nil {
		return nil, fmt.Errorf("flag shipment %s: %w", id, err)
	}
	return &resp.FlagShipment, nil
}

func (c *Client) UnflagShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	req := graphql.NewRequest(unflagShipmentMutation)
	req.Var("id", id)

	var resp struct {
		UnflagShipment domain.Shipment `json:"unflagShipment"`
	}
	if err := c.run(ctx, "unflagShipment", req, &resp); err != nil {
		return nil, fmt.Errorf("unflag shipment %s: %w", id, err)
	}
	return &resp.UnflagShipment, nil
}

func (c *Client) SystemStats(ctx context.Context) (*domain.SystemStats, error) {
	req := graphql.NewRequest(systemStatsQuery)

	var resp struct {
		SystemStats domain.SystemStats `json:"systemStats"`
	}
	if err := c.run(ctx, "systemStats", req, &resp); err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}
	return &resp.SystemStats, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	req := graphql.NewRequest(loginMutation)
	req.Var("email", email)
	req.Var("password", password)

	var resp struct {
		Login struct {
			Token string      `json:"token"`
			User  domain.User `json:"user"`
		} `json:"login"`
	}
	if err := c.run(ctx, "login", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &ports.LoginResult{Token: resp.Login.Token, User: resp.Login.User}, nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	req := graphql.NewRequest(meQuery)

	var resp struct {
		Me domain.User `json:"me"`
	}
	if err := c.run(ctx, "me", req, &resp); err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return &resp.Me, nil
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	req := graphql.NewRequest(usersQuery)

	var resp struct {
		Users []domain.User `json:"users"`
	}
	if err := c.run(ctx, "users", req, &resp); err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	return resp.Users, nil
}

// run sends one request, attaching the bearer when a session is present.
func (c *Client) run(ctx context.Context, operation string, req *graphql.Request, resp any) error {
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	err := c.gql.Run(ctx, req, resp)
	metrics.QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.QueriesTotal.WithLabelValues(operation, "error").Inc()
		c.log.Debug().Err(err).Str("operation", operation).Msg("gateway request failed")
		return err
	}
	metrics.QueriesTotal.WithLabelValues(operation, "ok").Inc()
	return nil
}
