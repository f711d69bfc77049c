package connect

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/versionbox/internal/app/dispatch"
	"github.com/osa030/versionbox/internal/app/render"
	"github.com/osa030/versionbox/internal/app/session"
	"github.com/osa030/versionbox/internal/domain/viewer"
	"github.com/osa030/versionbox/internal/infra/config"
)

// WidgetServiceName is the fully-qualified name of the widget service.
const WidgetServiceName = "versionbox.v1.WidgetService"

// Procedure paths of the widget service.
const (
	WidgetServiceOpenProcedure         = "/" + WidgetServiceName + "/Open"
	WidgetServiceDispatchProcedure     = "/" + WidgetServiceName + "/Dispatch"
	WidgetServiceCloseProcedure        = "/" + WidgetServiceName + "/Close"
	WidgetServiceListTitlesProcedure   = "/" + WidgetServiceName + "/ListTitles"
	WidgetServiceSubscribeProcedure    = "/" + WidgetServiceName + "/Subscribe"
	WidgetServiceListSessionsProcedure = "/" + WidgetServiceName + "/ListSessions"
)

const sessionField = "session_id"

// WidgetService implements the WidgetService RPC.
type WidgetService struct {
	session *session.Manager
	config  *config.Config
}

// NewWidgetService creates a new WidgetService.
func NewWidgetService(session *session.Manager, cfg *config.Config) *WidgetService {
	return &WidgetService{
		session: session,
		config:  cfg,
	}
}

// NewWidgetServiceHandler builds an HTTP handler serving every widget procedure.
// The returned path is the prefix the handler should be mounted on.
func NewWidgetServiceHandler(svc *WidgetService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(WidgetServiceOpenProcedure, connect.NewUnaryHandler(WidgetServiceOpenProcedure, svc.Open, opts...))
	mux.Handle(WidgetServiceDispatchProcedure, connect.NewUnaryHandler(WidgetServiceDispatchProcedure, svc.Dispatch, opts...))
	mux.Handle(WidgetServiceCloseProcedure, connect.NewUnaryHandler(WidgetServiceCloseProcedure, svc.Close, opts...))
	mux.Handle(WidgetServiceListTitlesProcedure, connect.NewUnaryHandler(WidgetServiceListTitlesProcedure, svc.ListTitles, opts...))
	mux.Handle(WidgetServiceSubscribeProcedure, connect.NewServerStreamHandler(WidgetServiceSubscribeProcedure, svc.Subscribe, opts...))
	mux.Handle(WidgetServiceListSessionsProcedure, connect.NewUnaryHandler(WidgetServiceListSessionsProcedure, svc.ListSessions, opts...))
	return "/" + WidgetServiceName + "/", mux
}

// Open handles viewer session creation.
func (s *WidgetService) Open(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	client := stringField(req.Msg, "client")
	if client == "" {
		client = req.Header().Get("User-Agent")
	}

	id, cmds, err := s.session.Open(client)
	if err != nil {
		return nil, toConnectError(err)
	}

	return newResponse(map[string]any{
		sessionField: id,
		"commands":   render.Wire(cmds),
	})
}

// Dispatch handles one widget action.
func (s *WidgetService) Dispatch(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	payload := req.Msg.AsMap()
	id, _ := payload[sessionField].(string)
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("session_id is required"))
	}
	delete(payload, sessionField)

	cmds, err := s.session.Dispatch(id, payload)
	if err != nil {
		return nil, toConnectError(err)
	}

	return newResponse(map[string]any{"commands": render.Wire(cmds)})
}

// Close handles viewer session teardown.
func (s *WidgetService) Close(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	if err := s.session.Close(stringField(req.Msg, sessionField)); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&structpb.Struct{}), nil
}

// ListTitles returns the title groups of the catalog.
func (s *WidgetService) ListTitles(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	titles := lo.Map(s.session.Titles(), func(t string, _ int) any { return t })
	return newResponse(map[string]any{"titles": titles})
}

// ListSessions returns the open viewer sessions, oldest first.
func (s *WidgetService) ListSessions(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	sessions := lo.Map(s.session.Sessions(), func(v viewer.Session, _ int) any {
		return map[string]any{
			sessionField:   v.ID,
			"client":       v.Client,
			"opened_at":    v.OpenedAt.UTC().Format(time.RFC3339),
			"last_seen_at": v.LastSeenAt.UTC().Format(time.RFC3339),
			"dispatches":   float64(v.Dispatches),
		}
	})
	return newResponse(map[string]any{"sessions": sessions})
}

// Subscribe streams render batches of a session until the client leaves or the session ends.
func (s *WidgetService) Subscribe(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
	stream *connect.ServerStream[structpb.Struct],
) error {
	id := stringField(req.Msg, sessionField)
	subscriptionID, done, err := s.session.Subscribe(id, stream)
	if err != nil {
		return toConnectError(err)
	}
	zlog.Debug().Msgf("api: subscribe session=%s subscription=%s", id, subscriptionID)

	// Wait for context cancellation or session end
	select {
	case <-ctx.Done():
	case <-done:
	}

	s.session.Unsubscribe(subscriptionID)
	return nil
}

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, session.ErrUnknownSession):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrRateLimited), errors.Is(err, session.ErrTooManySessions):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, session.ErrShutdown):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, dispatch.ErrInvalidAction),
		errors.Is(err, dispatch.ErrUnknownControl),
		errors.Is(err, dispatch.ErrMissingRecord),
		errors.Is(err, dispatch.ErrMissingGroup):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func newResponse(fields map[string]any) (*connect.Response[structpb.Struct], error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, errors.Wrap(err, "failed to encode response"))
	}
	return connect.NewResponse(msg), nil
}

func stringField(msg *structpb.Struct, key string) string {
	if msg == nil {
		return ""
	}
	v, ok := msg.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}
