package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	PinEntry      PinJSON      `json:"pin_entry"`
	LastEvent     *EventJSON   `json:"last_event,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	AudioDropped  uint64       `json:"audio_dropped"`
	Channels      ChannelsJSON `json:"channels"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// PinJSON reports PIN entry progress. The entered symbols are never exposed.
type PinJSON struct {
	InProgress bool `json:"in_progress"`
	Entered    int  `json:"entered"`
	Length     int  `json:"length"`
}

// EventJSON is the JSON representation of the most recent door event.
type EventJSON struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Method    string `json:"method,omitempty"`
	Message   string `json:"message"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Doorbell int `json:"doorbell"`
	Granted  int `json:"granted"`
	Denied   int `json:"denied"`
	Tamper   int `json:"tamper"`
	Motion   int `json:"motion"`
}

// ChannelsJSON is the JSON representation of device availability.
type ChannelsJSON struct {
	Button   bool `json:"button"`
	Joystick bool `json:"joystick"`
	RFID     bool `json:"rfid"`
	Accel    bool `json:"accel"`
	Camera   bool `json:"camera"`
	LEDs     bool `json:"leds"`
	Audio    bool `json:"audio"`
	Notify   bool `json:"notify"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64   `json:"poll_ms"`
	MotionIntervalMs int64   `json:"motion_interval_ms"`
	MotionQuietMs    int64   `json:"motion_quiet_ms"`
	HeartbeatMs      int64   `json:"heartbeat_ms"`
	TamperThreshold  int     `json:"tamper_threshold"`
	PixelThreshold   int     `json:"pixel_threshold"`
	MotionRatio      float64 `json:"motion_ratio"`
	Broker           string  `json:"broker"`
	HTTPAddr         string  `json:"http_addr"`
	NotifyAddr       string  `json:"notify_addr"`
	CameraHost       string  `json:"camera_host"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		PinEntry: PinJSON{
			InProgress: snap.PinInProgress(),
			Entered:    snap.PinEntered,
			Length:     snap.Config.PinLength,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Doorbell: snap.Counts.Doorbell,
			Granted:  snap.Counts.Granted,
			Denied:   snap.Counts.Denied,
			Tamper:   snap.Counts.Tamper,
			Motion:   snap.Counts.Motion,
		},
		AudioDropped: snap.AudioDropped,
		Channels:     ChannelsJSON(snap.Channels),
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			MotionIntervalMs: snap.Config.MotionIntervalMs,
			MotionQuietMs:    snap.Config.MotionQuietMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			TamperThreshold:  snap.Config.TamperThreshold,
			PixelThreshold:   snap.Config.PixelThreshold,
			MotionRatio:      snap.Config.MotionRatio,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
			NotifyAddr:       snap.Config.NotifyAddr,
			CameraHost:       snap.Config.CameraHost,
		},
	}

	if e := snap.LastEvent; e != nil {
		inner.LastEvent = &EventJSON{
			ID:        e.ID,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(e.Type),
			Method:    string(e.Method),
			Message:   e.Message,
		}
	}
	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{
			Type:       n.Type,
			IP:         n.IP,
			Status:     n.Status,
			Gateway:    n.Gateway,
			WifiStatus: n.WifiStatus,
			SSID:       n.SSID,
		}
	}
	return inner
}

// FormatJSON returns the indented JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
