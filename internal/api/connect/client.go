package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a WidgetService client.
type Client struct {
	open       *connect.Client[structpb.Struct, structpb.Struct]
	dispatch   *connect.Client[structpb.Struct, structpb.Struct]
	close      *connect.Client[structpb.Struct, structpb.Struct]
	listTitles *connect.Client[structpb.Struct, structpb.Struct]
	subscribe  *connect.Client[structpb.Struct, structpb.Struct]
	sessions   *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient creates a client for the widget service at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithInterceptors(ClientToken(token))}, opts...)

	newClient := func(procedure string) *connect.Client[structpb.Struct, structpb.Struct] {
		return connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+procedure, opts...)
	}
	return &Client{
		open:       newClient(WidgetServiceOpenProcedure),
		dispatch:   newClient(WidgetServiceDispatchProcedure),
		close:      newClient(WidgetServiceCloseProcedure),
		listTitles: newClient(WidgetServiceListTitlesProcedure),
		subscribe:  newClient(WidgetServiceSubscribeProcedure),
		sessions:   newClient(WidgetServiceListSessionsProcedure),
	}
}

// Open creates a session and returns its ID and the initial response.
func (c *Client) Open(ctx context.Context, client string) (string, *structpb.Struct, error) {
	res, err := c.call(ctx, c.open, map[string]any{"client": client})
	if err != nil {
		return "", nil, err
	}
	return stringField(res, sessionField), res, nil
}

// Dispatch sends one action to a session.
func (c *Client) Dispatch(ctx context.Context, sessionID string, action map[string]any) (*structpb.Struct, error) {
	fields := make(map[string]any, len(action)+1)
	for k, v := range action {
		fields[k] = v
	}
	fields[sessionField] = sessionID
	return c.call(ctx, c.dispatch, fields)
}

// Close ends a session.
func (c *Client) Close(ctx context.Context, sessionID string) error {
	_, err := c.call(ctx, c.close, map[string]any{sessionField: sessionID})
	return err
}

// ListTitles returns the title groups served by the widget.
func (c *Client) ListTitles(ctx context.Context) ([]string, error) {
	res, err := c.call(ctx, c.listTitles, map[string]any{})
	if err != nil {
		return nil, err
	}
	var titles []string
	for _, v := range res.GetFields()["titles"].GetListValue().GetValues() {
		titles = append(titles, v.GetStringValue())
	}
	return titles, nil
}

// ListSessions returns the open sessions as reported by the server.
func (c *Client) ListSessions(ctx context.Context) ([]map[string]any, error) {
	res, err := c.call(ctx, c.sessions, map[string]any{})
	if err != nil {
		return nil, err
	}
	var sessions []map[string]any
	for _, v := range res.GetFields()["sessions"].GetListValue().GetValues() {
		sessions = append(sessions, v.GetStructValue().AsMap())
	}
	return sessions, nil
}

// Subscribe streams render batches of a session.
// fn is called for every batch until it returns an error or the stream ends.
func (c *Client) Subscribe(ctx context.Context, sessionID string, fn func(*structpb.Struct) error) error {
	req, err := structpb.NewStruct(map[string]any{sessionField: sessionID})
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}
	stream, err := c.subscribe.CallServerStream(ctx, connect.NewRequest(req))
	if err != nil {
		return errors.Wrap(err, "failed to subscribe")
	}
	defer stream.Close()

	for stream.Receive() {
		if err := fn(stream.Msg()); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil && connect.CodeOf(err) != connect.CodeCanceled {
		return errors.Wrap(err, "subscription stream failed")
	}
	return nil
}

func (c *Client) call(
	ctx context.Context,
	client *connect.Client[structpb.Struct, structpb.Struct],
	fields map[string]any,
) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}
	res, err := client.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
