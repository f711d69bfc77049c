package connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/versionbox/internal/app/playback"
	"github.com/osa030/versionbox/internal/app/session"
	"github.com/osa030/versionbox/internal/domain/group"
	"github.com/osa030/versionbox/internal/domain/song"
	"github.com/osa030/versionbox/internal/infra/config"
)

func newTestServer(t *testing.T, extra string) (*httptest.Server, *session.Manager) {
	t.Helper()

	cfg, err := config.Parse([]byte("catalog:\n  path: songs.html\n"+extra), ".yaml")
	require.NoError(t, err)

	index := group.Build([]song.Record{
		{ID: "s1", Group: "Blue Moon", AudioURL: "a1.mp3", VideoID: "vid1"},
		{ID: "s2", Group: "Blue Moon", AudioURL: "a2.mp3"},
		{ID: "s3", Group: "Summertime", AudioURL: "a3.mp3"},
	})
	manager := session.NewManager(cfg, playback.NewCoordinator(index, playback.Config{}))

	path, handler := NewWidgetServiceHandler(
		NewWidgetService(manager, cfg),
		connect.WithInterceptors(NewTokenInterceptor(cfg)),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		manager.Shutdown()
		srv.Close()
	})
	return srv, manager
}

func commandOps(t *testing.T, msg *structpb.Struct) []string {
	t.Helper()
	var ops []string
	for _, v := range msg.GetFields()["commands"].GetListValue().GetValues() {
		ops = append(ops, v.GetStructValue().GetFields()["op"].GetStringValue())
	}
	return ops
}

func TestWidgetService_Flow(t *testing.T) {
	srv, manager := newTestServer(t, "")
	client := NewClient(srv.Client(), srv.URL, "")
	ctx := context.Background()

	titles, err := client.ListTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue Moon", "Summertime"}, titles)

	id, res, err := client.Open(ctx, "test")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Contains(t, commandOps(t, res), "list_titles")
	assert.Equal(t, 1, manager.Count())

	res, err = client.Dispatch(ctx, id, map[string]any{"control": "title", "group": "Blue Moon"})
	require.NoError(t, err)
	assert.Contains(t, commandOps(t, res), "attach")

	res, err = client.Dispatch(ctx, id, map[string]any{"control": "play-pause", "record": "s1"})
	require.NoError(t, err)
	assert.Contains(t, commandOps(t, res), "play")

	sessions, err := client.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0]["session_id"])
	assert.Equal(t, "test", sessions[0]["client"])
	assert.Equal(t, float64(2), sessions[0]["dispatches"])

	require.NoError(t, client.Close(ctx, id))
	assert.Equal(t, 0, manager.Count())
}

func TestWidgetService_ErrorCodes(t *testing.T) {
	srv, _ := newTestServer(t, "server:\n  dispatch_rate: 0.001\n  dispatch_burst: 1\n")
	client := NewClient(srv.Client(), srv.URL, "")
	ctx := context.Background()

	_, err := client.Dispatch(ctx, "missing", map[string]any{"control": "back"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = client.Dispatch(ctx, "", map[string]any{"control": "back"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	id, _, err := client.Open(ctx, "test")
	require.NoError(t, err)

	_, err = client.Dispatch(ctx, id, map[string]any{"control": "nope"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	// the rejected dispatch above consumed the only token
	_, err = client.Dispatch(ctx, id, map[string]any{"control": "back"})
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))

	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(client.Close(ctx, "missing")))
}

func TestWidgetService_Token(t *testing.T) {
	srv, _ := newTestServer(t, "server:\n  token: secret\n")
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
		code  connect.Code
	}{
		{name: "missing", token: "", code: connect.CodeUnauthenticated},
		{name: "wrong", token: "nope", code: connect.CodeUnauthenticated},
		{name: "valid", token: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(srv.Client(), srv.URL, tt.token)
			_, err := client.ListTitles(ctx)
			if tt.code == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.code, connect.CodeOf(err))

			err = client.Subscribe(ctx, "any", func(*structpb.Struct) error { return nil })
			assert.Equal(t, tt.code, connect.CodeOf(err))
		})
	}
}

func TestWidgetService_Subscribe(t *testing.T) {
	srv, manager := newTestServer(t, "")
	client := NewClient(srv.Client(), srv.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, _, err := client.Open(ctx, "viewer")
	require.NoError(t, err)

	batches := make(chan *structpb.Struct, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Subscribe(ctx, id, func(msg *structpb.Struct) error {
			batches <- msg
			return nil
		})
	}()

	// wait until the mirror is attached before dispatching
	require.Eventually(t, func() bool {
		_, err := client.Dispatch(ctx, id, map[string]any{"control": "back"})
		return assert.NoError(t, err) && len(batches) > 0
	}, 3*time.Second, 50*time.Millisecond)

	batch := <-batches
	assert.Equal(t, id, batch.GetFields()["session"].GetStringValue())

	require.NoError(t, manager.Close(id))
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("stream did not end with the session")
	}
}
