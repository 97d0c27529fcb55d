// Command doorbell runs the smart doorbell: it watches the push button,
// joystick PIN pad, RFID reader, tamper accelerometer and door camera, and
// reports doorbell, access, tamper and motion events over UDP and MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
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

// options holds the parsed command line.
type options struct {
	poll            time.Duration
	motionInterval  time.Duration
	motionQuiet     time.Duration
	pin             string
	rfidTag         string
	tamperThreshold int
	tamperSettle    time.Duration
	pixelThreshold  int
	motionRatio     float64
	spiDev          string
	spiHz           int64
	uartDev         string
	baud            int
	buttonChip      string
	buttonLine      int
	ledGreen        string
	ledRed          string
	cameraHost      string
	cameraTimeout   time.Duration
	snapshot        string
	notifyAddr      string
	broker          string
	heartbeat       time.Duration
	httpAddr        string
	sounds          string
	printState      bool
}

func main() {
	def := door.DefaultConfig()
	var o options

	flag.DurationVar(&o.poll, "poll", 10*time.Millisecond, "Control loop tick interval")
	flag.DurationVar(&o.motionInterval, "motion-interval", def.MotionInterval, "Camera motion check interval")
	flag.DurationVar(&o.motionQuiet, "motion-quiet", def.MotionQuiet, "Pause in motion checks after motion is reported")
	flag.StringVar(&o.pin, "pin", "LLUD", `Joystick PIN as letters ("LLUD") or words ("left,left,up,down")`)
	flag.StringVar(&o.rfidTag, "rfid-tag", def.RFIDTag, "Authorized RFID token")
	flag.IntVar(&o.tamperThreshold, "tamper-threshold", def.TamperThreshold, "Accelerometer L1 delta that counts as tampering")
	flag.DurationVar(&o.tamperSettle, "tamper-settle", def.TamperSettle, "Time to ignore the accelerometer after tampering")
	flag.IntVar(&o.pixelThreshold, "pixel-threshold", def.Motion.PixelThreshold, "Per-pixel difference that counts as changed (0-255)")
	flag.Float64Var(&o.motionRatio, "motion-ratio", def.Motion.Ratio, "Fraction of changed pixels that counts as motion")
	flag.StringVar(&o.spiDev, "spi", adc.DefaultDevice, "SPI device of the MCP3208 ADC")
	flag.Int64Var(&o.spiHz, "spi-hz", adc.DefaultHz, "SPI clock rate in Hz")
	flag.StringVar(&o.uartDev, "uart", uart.DefaultDevice, "Serial device of the RFID reader (empty to disable)")
	flag.IntVar(&o.baud, "baud", uart.DefaultBaud, "RFID reader baud rate")
	flag.StringVar(&o.buttonChip, "button-chip", gpio.DefaultChip, "GPIO chip of the doorbell button")
	flag.IntVar(&o.buttonLine, "button-line", gpio.DefaultLine, "GPIO line offset of the doorbell button")
	flag.StringVar(&o.ledGreen, "led-green", led.DefaultGreen, "sysfs name of the green LED")
	flag.StringVar(&o.ledRed, "led-red", led.DefaultRed, "sysfs name of the red LED")
	flag.StringVar(&o.cameraHost, "camera", camera.DefaultHost, "Camera host serving /still (empty to disable)")
	flag.DurationVar(&o.cameraTimeout, "camera-timeout", def.CameraTimeout, "Timeout for one camera still")
	flag.StringVar(&o.snapshot, "snapshot", camera.DefaultSnapshot, "File updated with the latest camera still (empty to disable)")
	flag.StringVar(&o.notifyAddr, "notify", notify.DefaultAddr, "UDP address for plain-text alerts (empty to disable)")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&o.sounds, "sounds", "/usr/share/doorbell/sounds", "Directory containing the WAV assets")
	flag.BoolVar(&o.printState, "print-state", false, "Print current sensor readings and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// doorConfig converts the command line into controller configuration.
func doorConfig(o options) (door.Config, error) {
	pin, err := logic.ParsePin(o.pin)
	if err != nil {
		return door.Config{}, fmt.Errorf("parse pin: %w", err)
	}

	cfg := door.DefaultConfig()
	cfg.Pin = pin
	cfg.RFIDTag = o.rfidTag
	cfg.TamperThreshold = o.tamperThreshold
	cfg.TamperSettle = o.tamperSettle
	cfg.Motion.PixelThreshold = o.pixelThreshold
	cfg.Motion.Ratio = o.motionRatio
	cfg.MotionInterval = o.motionInterval
	cfg.MotionQuiet = o.motionQuiet
	cfg.CameraTimeout = o.cameraTimeout

	if err := cfg.Validate(); err != nil {
		return door.Config{}, err
	}
	return cfg, nil
}

func run(o options) error {
	cfg, err := doorConfig(o)
	if err != nil {
		return err
	}

	dev := openDevices(o)
	defer dev.Close()

	if o.printState {
		printState(os.Stdout, dev)
		return nil
	}

	// Audio worker
	worker := sound.NewWorker(sound.NewAplayPlayer(), sound.DefaultAssets(o.sounds))
	worker.Start()
	defer worker.Stop()
	if _, err := exec.LookPath("aplay"); err == nil {
		dev.channels.Audio = true
	} else {
		log.Printf("audio disabled: %v", err)
	}

	// Notification fan-out: UDP alerts and MQTT events
	var notifiers notify.Multi
	if o.notifyAddr != "" {
		udp, err := notify.DialUDP(o.notifyAddr)
		if err != nil {
			log.Printf("udp notify disabled: %v", err)
		} else {
			defer udp.Close()
			notifiers = append(notifiers, udp)
			dev.channels.Notify = true
		}
	}

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if o.broker != "" {
		pub, err := mqtt.NewRealPublisher(o.broker, "smart-doorbell")
		if err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			defer pub.Close()
			publisher, mqttStatus = pub, pub
			notifiers = append(notifiers, pub)
		}
	}

	start := time.Now()
	ctrl, err := door.New(cfg, dev.src, door.Actuators{LEDs: dev.leds, Sound: worker, Notify: notifiers}, start)
	if err != nil {
		return fmt.Errorf("init controller: %w", err)
	}
	ctrl.Start()
	defer ctrl.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(start, status.Config{
		PollMs:           o.poll.Milliseconds(),
		MotionIntervalMs: o.motionInterval.Milliseconds(),
		MotionQuietMs:    o.motionQuiet.Milliseconds(),
		HeartbeatMs:      o.heartbeat.Milliseconds(),
		TamperThreshold:  o.tamperThreshold,
		PixelThreshold:   o.pixelThreshold,
		MotionRatio:      o.motionRatio,
		PinLength:        len(cfg.Pin),
		Broker:           o.broker,
		HTTPAddr:         o.httpAddr,
		NotifyAddr:       o.notifyAddr,
		CameraHost:       o.cameraHost,
	})
	tracker.SetChannels(dev.channels)
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker, o.snapshot)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: poll=%v motion-interval=%v broker=%s notify=%s heartbeat=%v",
		o.poll, o.motionInterval, o.broker, o.notifyAddr, o.heartbeat)

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, publisher, mqttStatus, tracker, worker, o.heartbeat, time.Now, ticker.C, sigCh)
}

// dropCounter reports how many audio commands were discarded.
type dropCounter interface {
	Dropped() uint64
}

func runLoop(ctrl *door.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, audio dropCounter, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	update := func() {
		if tracker == nil {
			return
		}
		var dropped uint64
		if audio != nil {
			dropped = audio.Dropped()
		}
		tracker.Update(ctrl.PinEntered(), ctrl.Counts(), ctrl.LastEvent(), dropped)
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			reason := signalName(s)
			if publisher == nil {
				return nil
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    reason,
				Retained:  true,
			}
			if tracker != nil {
				update()
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			ctrl.Tick(ctx, t)

			// Check for heartbeat
			if hbData := ctrl.CheckHeartbeat(t, heartbeat); hbData != nil {
				c := hbData.Counts
				log.Printf("heartbeat: uptime=%v doorbell=%d granted=%d denied=%d tamper=%d motion=%d",
					hbData.Uptime, c.Doorbell, c.Granted, c.Denied, c.Tamper, c.Motion)

				if publisher != nil {
					hbEvent := mqtt.SystemEvent{
						Timestamp: hbData.Timestamp,
						Event:     "HEARTBEAT",
					}
					if tracker != nil {
						// Refresh network info for heartbeat
						if net := readNetworkInfo(); net != nil {
							tracker.SetNetwork(net)
						}
						update()
						hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
					}
					if err := publisher.PublishSystem(hbEvent); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}

			// Update status tracker for HTTP consumers
			update()
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// devices holds whatever hardware opened successfully. Missing devices
// leave their source nil, which disables that feature.
type devices struct {
	src      door.Sources
	leds     led.Driver
	channels status.Channels
	closers  []io.Closer
}

func openDevices(o options) *devices {
	d := &devices{}

	if m, err := adc.OpenMCP3208(o.spiDev, o.spiHz); err != nil {
		log.Printf("joystick and accelerometer disabled: %v", err)
	} else {
		d.closers = append(d.closers, m)
		stick := adc.NewJoystick(m)
		if !stick.Calibrate(20, 20*time.Millisecond, time.Sleep) {
			log.Printf("joystick calibration failed, using mid-scale center")
		}
		x, y := stick.Center()
		log.Printf("joystick center: x=%d y=%d", x, y)
		d.src.Stick = stick
		d.src.Accel = adc.NewAccelerometer(m)
		d.channels.Joystick = true
		d.channels.Accel = true
	}

	if b, err := gpio.NewRealButton(o.buttonChip, o.buttonLine); err != nil {
		log.Printf("doorbell button disabled: %v", err)
	} else {
		d.closers = append(d.closers, b)
		d.src.Button = b
		d.channels.Button = true
	}

	if o.uartDev != "" {
		if r, err := uart.OpenSerial(o.uartDev, o.baud); err != nil {
			log.Printf("rfid disabled: %v", err)
		} else {
			d.closers = append(d.closers, r)
			d.src.Lines = r
			d.channels.RFID = true
		}
	}

	if o.cameraHost != "" {
		d.src.Camera = camera.NewHTTPSource(o.cameraHost, o.cameraTimeout, o.snapshot)
		d.channels.Camera = true
	}

	if l, err := led.NewSysfsDriver(o.ledGreen, o.ledRed); err != nil {
		log.Printf("leds disabled: %v", err)
	} else {
		d.closers = append(d.closers, l)
		d.leds = l
		d.channels.LEDs = true
	}

	return d
}

// Close releases every opened device, most recent first.
func (d *devices) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			log.Printf("close device: %v", err)
		}
	}
}

// printState writes one reading from each available input.
func printState(w io.Writer, d *devices) {
	if d.src.Button != nil {
		pressed, err := d.src.Button.Pressed()
		if err != nil {
			fmt.Fprintf(w, "Button: error: %v\n", err)
		} else {
			fmt.Fprintf(w, "Button: %s\n", pressedString(pressed))
		}
	} else {
		fmt.Fprintln(w, "Button: unavailable")
	}

	if d.src.Stick != nil {
		fmt.Fprintf(w, "Joystick: %s\n", d.src.Stick.ReadDirection())
	} else {
		fmt.Fprintln(w, "Joystick: unavailable")
	}

	if d.src.Accel != nil {
		s, err := d.src.Accel.Read()
		if err != nil {
			fmt.Fprintf(w, "Accel: error: %v\n", err)
		} else {
			fmt.Fprintf(w, "Accel: x=%d y=%d z=%d\n", s.X, s.Y, s.Z)
		}
	} else {
		fmt.Fprintln(w, "Accel: unavailable")
	}

	if d.src.Camera != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		f, err := d.src.Camera.Fetch(ctx)
		if err != nil {
			fmt.Fprintf(w, "Camera: error: %v\n", err)
		} else {
			fmt.Fprintf(w, "Camera: %dx%d\n", f.Width, f.Height)
		}
	} else {
		fmt.Fprintln(w, "Camera: unavailable")
	}

	fmt.Fprintf(w, "RFID: %s\n", availableString(d.channels.RFID))
	fmt.Fprintf(w, "LEDs: %s\n", availableString(d.channels.LEDs))
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(on bool) string {
	if on {
		return "PRESSED"
	}
	return "RELEASED"
}

func availableString(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}
