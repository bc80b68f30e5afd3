package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/womat/debug"

	"dhtl/pkg/app/config"
	"dhtl/pkg/datalogger"
	"dhtl/pkg/dht"
	"dhtl/pkg/mqtt"
	"dhtl/pkg/port"
	"dhtl/pkg/raspberry"
	"dhtl/pkg/store"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) (*App, *port.Sim) {
	t.Helper()

	cfg := config.NewConfig()
	cfg.MQTT.Interval = time.Minute
	cfg.MQTT.Topic = "/test/dht22"

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sim := port.NewSim(4, raspberry.SimFrame)
	a.attach(sim, dht.WithSleep(func(time.Duration) {}))

	if a.store, err = store.Open(":memory:"); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	return a, sim
}

func receive(t *testing.T, c chan mqtt.Message) (mqtt.Message, bool) {
	t.Helper()
	select {
	case msg := <-c:
		return msg, true
	case <-time.After(100 * time.Millisecond):
		return mqtt.Message{}, false
	}
}

func TestMeasure(t *testing.T) {
	a, sim := newTestApp(t)

	a.measure()

	if f := a.data.frame; f.Humidity != 50 || f.Temperature != 21.5 || f.Changed != 2 || f.Sensor != "DHT22" {
		t.Fatalf("frame = %+v", f)
	}
	if sim.Mode() != "input" {
		t.Fatalf("line mode = %q, want input", sim.Mode())
	}

	msg, ok := receive(t, a.mqtt.C)
	if !ok {
		t.Fatalf("no mqtt message for first frame")
	}
	var f datalogger.Frame
	if err := json.Unmarshal(msg.Payload, &f); err != nil || msg.Topic != a.config.MQTT.Topic || f.Humidity != 50 {
		t.Fatalf("mqtt message %s %s: %v", msg.Topic, msg.Payload, err)
	}

	if v := testutil.ToFloat64(a.metrics.humidity); v != 50 {
		t.Fatalf("humidity gauge = %v", v)
	}
	if v := testutil.ToFloat64(a.metrics.temperature); v != 21.5 {
		t.Fatalf("temperature gauge = %v", v)
	}

	// unchanged values within the mqtt interval aren't sent again
	a.measure()
	if a.data.frame.Changed != 0 {
		t.Fatalf("second frame changed = %d", a.data.frame.Changed)
	}
	if msg, ok := receive(t, a.mqtt.C); ok {
		t.Fatalf("unexpected mqtt message %s", msg.Payload)
	}

	// a change above deltaTemperature is sent immediately
	sim.SetFrame([5]byte{0x01, 0xf4, 0x00, 0xe1, 0xd6})
	a.measure()
	if _, ok := receive(t, a.mqtt.C); !ok {
		t.Fatalf("no mqtt message after temperature change")
	}

	frames, err := a.store.Last(10)
	if err != nil || len(frames) != 3 {
		t.Fatalf("history = %+v, %v", frames, err)
	}
	if frames[0].Temperature != 22.5 || frames[0].Changed != 1 || frames[2].Changed != 2 {
		t.Fatalf("history frames = %+v", frames)
	}
	if v := testutil.ToFloat64(a.metrics.reads.WithLabelValues("ok")); v != 3 {
		t.Fatalf("ok reads = %v", v)
	}
}

func TestMeasureErrors(t *testing.T) {
	a, sim := newTestApp(t)

	sim.SetConnected(false)
	a.measure()
	if v := testutil.ToFloat64(a.metrics.reads.WithLabelValues("handshake")); v != 1 {
		t.Fatalf("handshake errors = %v", v)
	}

	sim.SetConnected(true)
	sim.SetFrame([5]byte{0x01, 0xf4, 0x00, 0xd7, 0x00})
	a.measure()
	if v := testutil.ToFloat64(a.metrics.reads.WithLabelValues("checksum")); v != 1 {
		t.Fatalf("checksum errors = %v", v)
	}

	// 100.0°C is out of range for a DHT22
	sim.SetFrame([5]byte{0x01, 0xf4, 0x03, 0xe8, 0xe0})
	a.measure()
	if v := testutil.ToFloat64(a.metrics.rejected); v != 1 {
		t.Fatalf("rejected frames = %v", v)
	}

	if !a.data.frame.TimeStamp.IsZero() {
		t.Fatalf("frame stored after errors: %+v", a.data.frame)
	}
	if frames, _ := a.store.Last(10); len(frames) != 0 {
		t.Fatalf("history after errors = %+v", frames)
	}
	if _, ok := receive(t, a.mqtt.C); ok {
		t.Fatalf("mqtt message after errors")
	}
}

func TestRoutes(t *testing.T) {
	a, _ := newTestApp(t)
	a.initDefaultRoutes()
	a.measure()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := a.web.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer func() { _ = resp.Body.Close() }()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	code, body := get("/data")
	var f datalogger.Frame
	if err := json.Unmarshal([]byte(body), &f); code != http.StatusOK || err != nil || f.Humidity != 50 {
		t.Fatalf("/data = %d %s", code, body)
	}

	code, body = get("/history?n=5")
	var frames []datalogger.Frame
	if err := json.Unmarshal([]byte(body), &frames); code != http.StatusOK || err != nil || len(frames) != 1 {
		t.Fatalf("/history = %d %s", code, body)
	}
	if code, _ = get("/history?n=0"); code != http.StatusBadRequest {
		t.Fatalf("/history?n=0 = %d", code)
	}

	if code, body = get("/version"); code != http.StatusOK || !strings.Contains(body, `"description":"dhtl"`) {
		t.Fatalf("/version = %d %s", code, body)
	}
	if code, body = get("/health"); code != http.StatusOK || !strings.Contains(body, `"Sensor":"DHT22"`) || !strings.Contains(body, `"Line":"high"`) {
		t.Fatalf("/health = %d %s", code, body)
	}
	if code, body = get("/metrics"); code != http.StatusOK || !strings.Contains(body, "dht_humidity") {
		t.Fatalf("/metrics = %d %s", code, body)
	}
}

func TestHistoryWithoutDatafile(t *testing.T) {
	a, _ := newTestApp(t)
	_ = a.store.Close()
	a.store = nil
	a.initDefaultRoutes()

	resp, err := a.web.Test(httptest.NewRequest(http.MethodGet, "/history", nil))
	if err != nil {
		t.Fatalf("GET /history: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("/history = %d", resp.StatusCode)
	}
}

func TestRunWithSimulatedSensor(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Sensor.Driver = raspberry.Sim
	cfg.Sensor.Interval = 2 * time.Second
	cfg.MQTT.Connection = ""
	cfg.Webserver.URL = "http://127.0.0.1:0"

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err = a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		a.data.RLock()
		f := a.data.frame
		a.data.RUnlock()

		if f.Humidity == 50 && f.Temperature == 21.5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no frame from simulated sensor")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err = a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLineLevel(t *testing.T) {
	if l := (&App{}).lineLevel(); l != port.Invalid {
		t.Fatalf("level without line = %v, want invalid", l)
	}

	a, sim := newTestApp(t)
	if l := a.lineLevel(); l != port.High {
		t.Fatalf("idle level = %v, want high", l)
	}
	sim.Output()
	if l := a.lineLevel(); l != port.Low {
		t.Fatalf("level while driven = %v, want low", l)
	}
}

func TestMQTTMessageOrder(t *testing.T) {
	a, sim := newTestApp(t)

	// 21.5, 22.5, 23.5°C
	for _, f := range [][5]byte{
		{0x01, 0xf4, 0x00, 0xd7, 0xcc},
		{0x01, 0xf4, 0x00, 0xe1, 0xd6},
		{0x01, 0xf4, 0x00, 0xeb, 0xe0},
	} {
		sim.SetFrame(f)
		a.measure()
	}

	for _, want := range []float64{21.5, 22.5, 23.5} {
		msg, ok := receive(t, a.mqtt.C)
		if !ok {
			t.Fatalf("no mqtt message for %v°C", want)
		}
		var f datalogger.Frame
		if err := json.Unmarshal(msg.Payload, &f); err != nil || f.Temperature != want {
			t.Fatalf("mqtt message %s, want %v°C: %v", msg.Payload, want, err)
		}
	}
}

func TestCloseStopsMQTTService(t *testing.T) {
	a, _ := newTestApp(t)

	done := make(chan struct{})
	go func() {
		a.mqtt.Service()
		close(done)
	}()

	a.measure()
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("mqtt service is still running after Close")
	}

	// a second Close is a no-op
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
