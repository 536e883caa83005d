package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"thermoclient/internal/config"
	"thermoclient/internal/device"
	"thermoclient/internal/logger"
	"thermoclient/internal/models"
	"thermoclient/internal/publish"
	"thermoclient/internal/repository"
)

func TestRootCmd_Flags(t *testing.T) {
	root := newRootCmd()

	f := root.PersistentFlags().Lookup("config")
	if f == nil || f.Shorthand != "c" || f.DefValue != config.DefaultPath {
		t.Fatalf("unexpected --config flag: %+v", f)
	}
	if root.PersistentFlags().Lookup("log-level") == nil {
		t.Fatalf("missing --log-level flag")
	}

	sim, _, err := root.Find([]string{"simulate"})
	if err != nil || sim.Name() != "simulate" {
		t.Fatalf("simulate subcommand not registered: %v", err)
	}
	if tick := sim.Flags().Lookup("tick"); tick == nil || tick.DefValue != defaultSimTick.String() {
		t.Fatalf("unexpected --tick flag: %+v", tick)
	}
}

func TestRootCmd_Help(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"-h"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute(-h) error = %v", err)
	}
	if !strings.Contains(out.String(), "--config") {
		t.Fatalf("help output does not mention --config:\n%s", out.String())
	}
}

func TestResolveLevel(t *testing.T) {
	if got := resolveLevel("debug", "info"); got != "debug" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := resolveLevel("", "warn"); got != "warn" {
		t.Fatalf("file level should apply, got %q", got)
	}
}

func TestLoadSettings_MissingFileFallsBack(t *testing.T) {
	s, missing, err := loadSettings(filepath.Join(t.TempDir(), "absent.conf"))
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if !missing {
		t.Fatalf("expected missing=true")
	}
	if s.CycleInterval != 5*time.Second || s.Hysteresis != 0.5 {
		t.Fatalf("expected defaults, got %+v", s)
	}
}

func TestLoadSettings_InvalidIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.conf")
	if err := os.WriteFile(path, []byte("MAX_PROGRAM_POINTS=0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := loadSettings(path); err == nil {
		t.Fatalf("expected an error for invalid settings")
	}
}

func TestHandleSignals(t *testing.T) {
	log := logger.NewNop()

	t.Run("hangup does not stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sig := make(chan os.Signal, 1)
		done := make(chan struct{})
		go func() {
			handleSignals(ctx, sig, cancel, log)
			close(done)
		}()

		sig <- syscall.SIGHUP
		select {
		case <-ctx.Done():
			t.Fatalf("SIGHUP must not cancel the loop")
		case <-time.After(50 * time.Millisecond):
		}
		cancel()
		<-done
	})

	for _, s := range []os.Signal{syscall.SIGTERM, syscall.SIGINT} {
		s := s
		t.Run(s.String(), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sig := make(chan os.Signal, 1)
			go handleSignals(ctx, sig, cancel, log)

			sig <- s
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
				t.Fatalf("%v did not cancel the loop", s)
			}
		})
	}
}

func TestBuildSinks_StoreOnly(t *testing.T) {
	settings := config.DefaultSettings()
	settings.RelayPin = -1
	settings.MQTTBroker = ""
	store := repository.NewMemoryState()

	sinks, closeAll, err := buildSinks(settings, store, logger.NewNop())
	if err != nil {
		t.Fatalf("buildSinks() error = %v", err)
	}
	defer closeAll()

	if len(sinks) != 1 || sinks[0].Name != "store" {
		t.Fatalf("expected only the store sink, got %+v", sinks)
	}
	st := models.ThermostatState{ThermostatID: "t", HeaterOn: true}
	if err := sinks[0].Sink.Record(context.Background(), st); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	got, _ := store.Load(context.Background())
	if !got.HeaterOn || got.ThermostatID != "t" {
		t.Fatalf("store did not receive the snapshot: %+v", got)
	}
}

func TestRelaySink(t *testing.T) {
	relay := &device.FakeRelay{}
	sink := relaySink(relay)

	for _, on := range []bool{true, false, true} {
		if err := sink.Sink.Record(context.Background(), models.ThermostatState{HeaterOn: on}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	want := []bool{true, false, true}
	if len(relay.States) != len(want) {
		t.Fatalf("relay states = %v, want %v", relay.States, want)
	}
	for i := range want {
		if relay.States[i] != want[i] {
			t.Fatalf("relay states = %v, want %v", relay.States, want)
		}
	}

	relay.SetError = errors.New("line busy")
	if err := sink.Sink.Record(context.Background(), models.ThermostatState{}); err == nil {
		t.Fatalf("expected relay error to surface")
	}
}

func TestMQTTSink(t *testing.T) {
	pub := publish.NewFakePublisher()
	sink := mqttSink(pub)

	if err := sink.Sink.Record(context.Background(), models.ThermostatState{ThermostatID: "t", HeaterOn: true}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(pub.Payloads) != 1 || !strings.Contains(string(pub.Payloads[0]), `"heater":"ON"`) {
		t.Fatalf("unexpected payloads: %q", pub.Payloads)
	}
}

func TestOpenStore(t *testing.T) {
	log := logger.NewNop()

	mem, closeMem, err := openStore("", log)
	if err != nil {
		t.Fatalf("openStore(\"\") error = %v", err)
	}
	closeMem()
	if _, ok := mem.(*repository.MemoryState); !ok {
		t.Fatalf("expected memory store, got %T", mem)
	}

	path := filepath.Join(t.TempDir(), "state.db")
	sqlStore, closeSQL, err := openStore(path, log)
	if err != nil {
		t.Fatalf("openStore(sqlite) error = %v", err)
	}
	defer closeSQL()
	if _, ok := sqlStore.(*repository.StateSQLite); !ok {
		t.Fatalf("expected sqlite store, got %T", sqlStore)
	}
}

func TestStartStatusServer(t *testing.T) {
	log := logger.NewNop()
	settings := config.DefaultSettings()

	settings.HTTPAddr = ""
	srv, err := startStatusServer(settings, repository.NewMemoryState(), nil, log)
	if err != nil || srv != nil {
		t.Fatalf("disabled API: got %v, %v", srv, err)
	}

	settings.HTTPAddr = "127.0.0.1:0"
	srv, err = startStatusServer(settings, repository.NewMemoryState(), nil, log)
	if err != nil {
		t.Fatalf("startStatusServer() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	settings.HTTPAddr = "127.0.0.1:-1"
	if _, err := startStatusServer(settings, repository.NewMemoryState(), nil, log); err == nil {
		t.Fatalf("expected a bind error for an invalid port")
	}
}
