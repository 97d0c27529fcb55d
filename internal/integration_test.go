package internal

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/smart-doorbell/internal/adc"
	"github.com/sweeney/smart-doorbell/internal/camera"
	"github.com/sweeney/smart-doorbell/internal/door"
	"github.com/sweeney/smart-doorbell/internal/gpio"
	"github.com/sweeney/smart-doorbell/internal/led"
	"github.com/sweeney/smart-doorbell/internal/logic"
	"github.com/sweeney/smart-doorbell/internal/mqtt"
	"github.com/sweeney/smart-doorbell/internal/notify"
	"github.com/sweeney/smart-doorbell/internal/sound"
	"github.com/sweeney/smart-doorbell/internal/status"
	"github.com/sweeney/smart-doorbell/internal/uart"
	"github.com/sweeney/smart-doorbell/internal/web"
)

const (
	rest = 2048
	low  = 100
	high = 4000
)

// node wires the real controller, joystick, accelerometer, sound worker and
// UDP sender to fake hardware.
type node struct {
	t *testing.T

	adc    *adc.FakeReader
	button *gpio.FakeButton
	lines  *uart.FakeLineReader
	cam    *camera.FakeSource
	leds   *led.FakeDriver
	player *sound.FakePlayer
	worker *sound.Worker
	pub    *mqtt.FakePublisher
	udp    net.PacketConn

	ctrl    *door.Controller
	tracker *status.Tracker
	now     time.Time
}

func newNode(t *testing.T) *node {
	t.Helper()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	n := &node{
		t:      t,
		adc:    adc.NewFakeReader(),
		button: gpio.NewFakeButton(false),
		lines:  uart.NewFakeLineReader(),
		cam:    camera.NewFakeSource(camera.SolidFrame(8, 8, 0), camera.SolidFrame(8, 8, 200)),
		leds:   led.NewFakeDriver(),
		player: sound.NewFakePlayer(),
		pub:    mqtt.NewFakePublisher(),
		now:    start,
	}
	n.player.Notify = make(chan struct{}, 32)
	n.adc.Set(adc.ChannelJoystickX, rest)
	n.adc.Set(adc.ChannelJoystickY, rest)
	for _, ch := range []int{adc.ChannelAccelX, adc.ChannelAccelY, adc.ChannelAccelZ} {
		n.adc.Set(ch, 2000)
	}

	stick := adc.NewJoystick(n.adc)
	if !stick.Calibrate(3, 0, func(time.Duration) {}) {
		t.Fatal("calibration failed")
	}

	udp, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { udp.Close() })
	n.udp = udp

	sender, err := notify.DialUDP(udp.LocalAddr().String())
	if err != nil {
		t.Fatalf("dial udp: %v", err)
	}
	t.Cleanup(func() { sender.Close() })

	n.worker = sound.NewWorker(n.player, sound.DefaultAssets("/sounds"))
	n.worker.Start()
	t.Cleanup(n.worker.Stop)

	ctrl, err := door.New(door.DefaultConfig(),
		door.Sources{
			Button: n.button,
			Stick:  stick,
			Lines:  n.lines,
			Accel:  adc.NewAccelerometer(n.adc),
			Camera: n.cam,
		},
		door.Actuators{LEDs: n.leds, Sound: n.worker, Notify: notify.Multi{sender, n.pub}},
		start,
		door.WithSleep(func(time.Duration) {}),
	)
	if err != nil {
		t.Fatalf("door.New: %v", err)
	}
	ctrl.Start()
	n.ctrl = ctrl
	n.tracker = status.NewTracker(start, status.Config{PinLength: 4})
	return n
}

// tick advances the clock 10ms, runs one control tick and refreshes the
// tracker the way the main loop does.
func (n *node) tick() {
	n.now = n.now.Add(10 * time.Millisecond)
	n.ctrl.Tick(context.Background(), n.now)
	n.tracker.Update(n.ctrl.PinEntered(), n.ctrl.Counts(), n.ctrl.LastEvent(), n.worker.Dropped())
}

func (n *node) push(x, y int) {
	n.adc.Set(adc.ChannelJoystickX, x)
	n.adc.Set(adc.ChannelJoystickY, y)
	n.tick()
	n.adc.Set(adc.ChannelJoystickX, rest)
	n.adc.Set(adc.ChannelJoystickY, rest)
	n.tick()
}

// receive reads count UDP datagrams.
func (n *node) receive(count int) []string {
	n.t.Helper()
	buf := make([]byte, 512)
	var out []string
	for len(out) < count {
		n.udp.SetReadDeadline(time.Now().Add(2 * time.Second))
		k, _, err := n.udp.ReadFrom(buf)
		if err != nil {
			n.t.Fatalf("udp read after %d messages: %v", len(out), err)
		}
		out = append(out, string(buf[:k]))
	}
	return out
}

// waitSounds blocks until the player has seen count calls.
func (n *node) waitSounds(count int) []string {
	n.t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-n.player.Notify:
		case <-time.After(2 * time.Second):
			n.t.Fatalf("timed out after %d sound calls: %v", i, n.player.Snapshot())
		}
	}
	return n.player.Snapshot()
}

// TestIntegrationFullFlow drives every input once and checks that UDP, MQTT,
// audio and the status page all agree.
func TestIntegrationFullFlow(t *testing.T) {
	n := newNode(t)

	// Camera seeds on the first check and reports motion on the next.
	for i := 0; i < 25; i++ {
		n.tick()
	}

	// Visitor presses the doorbell.
	n.button.Samples = []bool{true, false}
	n.tick()
	n.tick()

	// PIN left, left, up, down.
	n.push(low, rest)
	n.push(low, rest)
	if !n.ctrl.PinInProgress() || n.ctrl.PinEntered() != 2 {
		t.Fatalf("expected PIN in progress with 2 symbols, got %d", n.ctrl.PinEntered())
	}
	if snap := n.tracker.Snapshot(); snap.PinEntered != 2 {
		t.Errorf("tracker PinEntered: got %d, want 2", snap.PinEntered)
	}
	n.push(rest, high)
	n.push(rest, low)
	if n.ctrl.PinInProgress() {
		t.Error("PIN attempt should be finished")
	}

	// Wrong tag, then the right one with reader noise.
	n.lines.Push("BADTAG")
	n.tick()
	n.lines.Push("\x025A5992\x03")
	n.tick()

	// Someone shakes the box.
	for _, ch := range []int{adc.ChannelAccelX, adc.ChannelAccelY, adc.ChannelAccelZ} {
		n.adc.Set(ch, 3000)
	}
	n.tick()

	wantMessages := []string{
		"Motion Detected at Front Door",
		"Doorbell Button Pressed",
		"Door Unlocked by PIN",
		"Access Denied via RFID",
		"Door Unlocked by RFID",
		"TAMPER DETECTED: Device Shaken!",
	}

	got := n.receive(len(wantMessages))
	for i, want := range wantMessages {
		if got[i] != want {
			t.Errorf("udp message %d: got %q, want %q", i, got[i], want)
		}
	}

	events := n.pub.Events()
	if len(events) != len(wantMessages) {
		t.Fatalf("expected %d mqtt events, got %d", len(wantMessages), len(events))
	}
	wantTypes := []logic.EventType{
		logic.EventMotion, logic.EventDoorbell, logic.EventUnlocked,
		logic.EventDenied, logic.EventUnlocked, logic.EventTamper,
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("mqtt event %d: got %s, want %s", i, events[i].Type, want)
		}
		if events[i].ID == "" {
			t.Errorf("mqtt event %d has no ID", i)
		}
	}
	if events[2].Method != logic.MethodPIN || events[3].Method != logic.MethodRFID {
		t.Errorf("unexpected methods %q, %q", events[2].Method, events[3].Method)
	}

	var payload mqtt.Payload
	if err := json.Unmarshal(n.pub.Payloads()[2], &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.Door.Event != "UNLOCKED" || payload.Door.Method != "PIN" {
		t.Errorf("unexpected payload %+v", payload.Door)
	}

	wantSounds := []string{
		"play:/sounds/dingdong.wav",
		"play:/sounds/correct.wav",
		"play:/sounds/incorrect.wav",
		"play:/sounds/correct.wav",
		"play:/sounds/alarm.wav",
	}
	sounds := n.waitSounds(len(wantSounds))
	if strings.Join(sounds, ",") != strings.Join(wantSounds, ",") {
		t.Errorf("sounds:\ngot  %v\nwant %v", sounds, wantSounds)
	}

	// Locked again after all the feedback.
	if !n.leds.State[led.Red] || n.leds.State[led.Green] {
		t.Errorf("expected red on and green off, got %v", n.leds.State)
	}

	// Status page reflects the same counts.
	srv := web.New(":0", n.tracker, "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d", rec.Code)
	}
	var st status.StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	c := st.Status.Counts
	if c.Doorbell != 1 || c.Granted != 2 || c.Denied != 1 || c.Tamper != 1 || c.Motion != 1 {
		t.Errorf("unexpected counts %+v", c)
	}
	if st.Status.LastEvent == nil || st.Status.LastEvent.Event != "TAMPER" {
		t.Errorf("unexpected last event %+v", st.Status.LastEvent)
	}
	if st.Status.PinEntry.InProgress || st.Status.PinEntry.Length != 4 {
		t.Errorf("unexpected pin entry %+v", st.Status.PinEntry)
	}
}

// TestIntegrationDegradedNode runs with only the RFID reader present.
func TestIntegrationDegradedNode(t *testing.T) {
	lines := uart.NewFakeLineReader("5A5992")
	pub := mqtt.NewFakePublisher()

	ctrl, err := door.New(door.DefaultConfig(),
		door.Sources{Lines: lines},
		door.Actuators{Notify: notify.Multi{nil, pub}},
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		door.WithSleep(func(time.Duration) {}),
	)
	if err != nil {
		t.Fatalf("door.New: %v", err)
	}
	ctrl.Start()

	now := time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ctrl.Tick(context.Background(), now)
		now = now.Add(10 * time.Millisecond)
	}

	if len(pub.Events()) != 1 || pub.Events()[0].Message != "Door Unlocked by RFID" {
		t.Errorf("unexpected events %+v", pub.Events())
	}
}

// TestIntegrationPayloadFormat verifies the exact JSON structure.
func TestIntegrationPayloadFormat(t *testing.T) {
	event := logic.Event{
		ID:        "c0ffee",
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      logic.EventDenied,
		Method:    logic.MethodRFID,
		Message:   "Access Denied via RFID",
	}

	publisher := mqtt.NewFakePublisher()
	if err := publisher.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"door":{"timestamp":"2026-02-02T22:18:12Z","id":"c0ffee","event":"DENIED","method":"RFID","message":"Access Denied via RFID"}}`
	if got := string(publisher.Payloads()[0]); got != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", got, expected)
	}
}
