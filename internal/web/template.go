package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/smart-doorbell/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
	"utc": func(t time.Time) string {
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Smart Doorbell</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.granted, .connected, .up { color: green; }
.denied, .disconnected, .down { color: red; }
.alert { color: orange; font-weight: bold; }
img { max-width: 100%; }
</style>
</head>
<body>
<h1>Smart Doorbell</h1>

<h2>Door</h2>
<table>
<tr><th>PIN entry</th><td>{{if .PinInProgress}}{{.PinEntered}} of {{.Config.PinLength}}{{else}}idle{{end}}</td></tr>
{{with .LastEvent}}<tr><th>Last event</th><td class="{{if eq (printf "%s" .Type) "UNLOCKED"}}granted{{else if eq (printf "%s" .Type) "DENIED"}}denied{{else}}alert{{end}}">{{.Message}}</td></tr>
<tr><th>At</th><td>{{utc .Timestamp}}</td></tr>{{else}}<tr><th>Last event</th><td>none</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Doorbell</th><td>{{.Counts.Doorbell}}</td></tr>
<tr><th>Granted</th><td>{{.Counts.Granted}}</td></tr>
<tr><th>Denied</th><td>{{.Counts.Denied}}</td></tr>
<tr><th>Tamper</th><td>{{.Counts.Tamper}}</td></tr>
<tr><th>Motion</th><td>{{.Counts.Motion}}</td></tr>
<tr><th>Audio dropped</th><td>{{.AudioDropped}}</td></tr>
</table>

<h2>Devices</h2>
<table>
<tr><th>Button</th><td class="{{if .Channels.Button}}up{{else}}down{{end}}">{{yesno .Channels.Button}}</td></tr>
<tr><th>Joystick</th><td class="{{if .Channels.Joystick}}up{{else}}down{{end}}">{{yesno .Channels.Joystick}}</td></tr>
<tr><th>RFID</th><td class="{{if .Channels.RFID}}up{{else}}down{{end}}">{{yesno .Channels.RFID}}</td></tr>
<tr><th>Accelerometer</th><td class="{{if .Channels.Accel}}up{{else}}down{{end}}">{{yesno .Channels.Accel}}</td></tr>
<tr><th>Camera</th><td class="{{if .Channels.Camera}}up{{else}}down{{end}}">{{yesno .Channels.Camera}}</td></tr>
<tr><th>LEDs</th><td class="{{if .Channels.LEDs}}up{{else}}down{{end}}">{{yesno .Channels.LEDs}}</td></tr>
<tr><th>Audio</th><td class="{{if .Channels.Audio}}up{{else}}down{{end}}">{{yesno .Channels.Audio}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>UDP alerts</th><td>{{if .Channels.Notify}}{{.Config.NotifyAddr}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{utc .StartTime}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Motion check</th><td>{{.Config.MotionIntervalMs}}ms, quiet {{.Config.MotionQuietMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>
{{if .ShowSnapshot}}
<h2>Visitor</h2>
<p><img src="/visitor.jpg" alt="latest camera still"></p>
{{end}}
<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, showSnapshot bool) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime       time.Duration
		ShowSnapshot bool
	}{
		Snapshot:     snap,
		Uptime:       snap.Uptime(),
		ShowSnapshot: showSnapshot,
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render: %v", err)
	}
}
