// Package main provides the widget CLI: a local terminal widget and a remote client for testing.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	apiconnect "github.com/osa030/versionbox/internal/api/connect"
	"github.com/osa030/versionbox/internal/app/catalog"
	"github.com/osa030/versionbox/internal/app/playback"
	"github.com/osa030/versionbox/internal/domain/group"
	"github.com/osa030/versionbox/internal/infra/config"
	"github.com/osa030/versionbox/internal/infra/logger"
	"github.com/osa030/versionbox/internal/ui"
)

var (
	app    = kingpin.New("versionbox-widgetcli", "versionbox song versions widget client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Widget token").Envar("VERSIONBOX_TOKEN").String()

	// tui command
	tuiCmd     = app.Command("tui", "Run the widget in the terminal against a local catalog")
	tuiConfig  = tuiCmd.Flag("config", "Path to config file").Default("config/server.yaml").String()
	tuiLogfile = tuiCmd.Flag("logfile", "Path to log file").Default("versionbox-tui.log").String()

	// titles command
	titlesCmd = app.Command("titles", "List title groups served by the widget")

	// open command
	openCmd    = app.Command("open", "Open a widget session")
	openClient = openCmd.Flag("client", "Client name").Default("widgetcli").String()

	// dispatch command
	dispatchCmd      = app.Command("dispatch", "Send a control to a widget session")
	dispatchSession  = dispatchCmd.Arg("session-id", "Session ID").Required().String()
	dispatchControl  = dispatchCmd.Arg("control", "Control name (e.g. title, play-pause, next)").Required().String()
	dispatchRecord   = dispatchCmd.Flag("record", "Record ID").String()
	dispatchGroup    = dispatchCmd.Flag("group", "Title group").String()
	dispatchFraction = dispatchCmd.Flag("fraction", "Seek fraction (0-1)").Float64()

	// close command
	closeCmd     = app.Command("close", "Close a widget session")
	closeSession = closeCmd.Arg("session-id", "Session ID").Required().String()

	// sessions command
	sessionsCmd = app.Command("sessions", "List open widget sessions")

	// watch command
	watchCmd     = app.Command("watch", "Mirror render batches of a widget session")
	watchSession = watchCmd.Arg("session-id", "Session ID").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == tuiCmd.FullCommand() {
		if err := runTUI(*tuiConfig, *tuiLogfile); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Create client
	client := apiconnect.NewClient(http.DefaultClient, *server, *token)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Execute command
	var err error
	switch command {
	case titlesCmd.FullCommand():
		err = listTitles(ctx, client)
	case openCmd.FullCommand():
		err = open(ctx, client, *openClient)
	case dispatchCmd.FullCommand():
		err = dispatch(ctx, client)
	case closeCmd.FullCommand():
		err = client.Close(ctx, *closeSession)
		if err == nil {
			fmt.Printf("Closed session %s\n", *closeSession)
		}
	case sessionsCmd.FullCommand():
		err = listSessions(ctx, client)
	case watchCmd.FullCommand():
		err = watch(ctx, client, *watchSession)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI runs the widget locally. Logs go to a file to keep the terminal clean.
func runTUI(configPath, logfile string) error {
	closeLog, err := logger.Init(logger.Config{Output: logfile, Level: "debug"})
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	records, err := catalog.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	coord := playback.NewCoordinator(group.Build(records), playback.Config{
		VideoHost: cfg.Embed.VideoHost,
		Mute:      cfg.Embed.Mute,
	})
	model := ui.NewModel(coord, ui.Options{UpdateBuffer: cfg.Playback.UpdateBuffer})

	zlog.Info().Msgf("widgetcli: starting terminal widget with %d records", len(records))
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return errors.Wrap(err, "error running TUI")
	}
	return nil
}

func listTitles(ctx context.Context, client *apiconnect.Client) error {
	titles, err := client.ListTitles(ctx)
	if err != nil {
		return err
	}
	for _, title := range titles {
		fmt.Println(title)
	}
	return nil
}

func listSessions(ctx context.Context, client *apiconnect.Client) error {
	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Sessions (%d):\n", len(sessions))
	for _, s := range sessions {
		fmt.Printf("  %v  client=%v dispatches=%v last_seen=%v\n",
			s["session_id"], s["client"], s["dispatches"], s["last_seen_at"])
	}
	return nil
}

func open(ctx context.Context, client *apiconnect.Client, name string) error {
	id, res, err := client.Open(ctx, name)
	if err != nil {
		return err
	}
	fmt.Printf("Opened! Your session ID: %s\n", id)
	return printMessage(res)
}

func dispatch(ctx context.Context, client *apiconnect.Client) error {
	action := map[string]any{"control": *dispatchControl}
	if *dispatchRecord != "" {
		action["record"] = *dispatchRecord
	}
	if *dispatchControl == "title" || *dispatchGroup != "" {
		action["group"] = *dispatchGroup
	}
	if *dispatchControl == "seek" {
		action["fraction"] = *dispatchFraction
	}

	res, err := client.Dispatch(ctx, *dispatchSession, action)
	if err != nil {
		return err
	}
	return printMessage(res)
}

func watch(ctx context.Context, client *apiconnect.Client, sessionID string) error {
	fmt.Printf("Watching session %s (Ctrl+C to stop)\n", sessionID)
	return client.Subscribe(ctx, sessionID, printMessage)
}

func printMessage(msg *structpb.Struct) error {
	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
