// Package status carries short human-readable status lines from the
// tracking core to the host UI, with fan-out to any number of subscribers.
package status

import (
	"bytes"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"

	"tailscale.com/tsweb"
)

// Message is one status line.
type Message struct {
	Seq  uint64 `json:"seq"`
	Text string `json:"text"`
}

// Mux fans status lines out to subscribers. Slow subscribers miss lines
// rather than blocking the publisher.
type Mux struct {
	mu          sync.Mutex
	subscribers map[string]chan string
	last        Message
	seq         uint64
	once        map[string]bool
	closed      bool
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{
		subscribers: make(map[string]chan string),
		once:        make(map[string]bool),
	}
}

// randomID generates a random subscriber id (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

// Subscribe creates a channel receiving every subsequent status line. The id
// is used to Unsubscribe.
func (m *Mux) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string, 16)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		close(ch)
		return id, ch
	}
	m.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a subscriber channel.
func (m *Mux) Unsubscribe(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.subscribers[id]; ok {
		close(ch)
		delete(m.subscribers, id)
	}
}

// Publish sends msg to every subscriber and remembers it as the last status.
func (m *Mux) Publish(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.seq++
	m.last = Message{Seq: m.seq, Text: msg}
	for _, ch := range m.subscribers {
		select {
		case ch <- msg:
		default:
			// subscriber is not keeping up; drop rather than block
		}
	}
}

// PublishOnce publishes msg only the first time key is seen. It is used for
// conditions worth telling the user about once, such as a missing drawing
// surface, that would otherwise repeat every frame.
func (m *Mux) PublishOnce(key, msg string) {
	m.mu.Lock()
	seen := m.once[key]
	m.once[key] = true
	m.mu.Unlock()
	if !seen {
		m.Publish(msg)
	}
}

// Reset forgets which PublishOnce keys were used.
func (m *Mux) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.once = make(map[string]bool)
}

// Last returns the most recent status line; Seq is 0 if none was published.
func (m *Mux) Last() Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Close closes every subscriber channel. Later publishes are dropped.
func (m *Mux) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, ch := range m.subscribers {
		close(ch)
		delete(m.subscribers, id)
	}
}

var statusPage = template.Must(template.New("status").Parse(`<!doctype html>
<html><head><title>trail status</title></head>
<body>
<h1>Trail status</h1>
<p>Last: <code>{{.Text}}</code></p>
<pre id="tail"></pre>
<script>
const tail = document.getElementById("tail");
new EventSource("status-tail").onmessage = (e) => { tail.textContent += e.data + "\n"; };
</script>
</body></html>
`))

// AttachAdminRoutes attaches the status page and its live tail to the
// /debug/ routes of mux. These are only reachable from localhost or over
// Tailscale.
func (m *Mux) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("status", "live status lines from the trail tracker", func(w http.ResponseWriter, r *http.Request) {
		buf := bytes.NewBuffer(nil)
		if err := statusPage.Execute(buf, m.Last()); err != nil {
			http.Error(w, "Failed to render template", http.StatusInternalServerError)
			return
		}
		io.Copy(w, buf)
	})

	// API endpoint to inject a status line by hand.
	debug.HandleSilentFunc("status-publish", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		msg := strings.TrimSpace(r.FormValue("message"))
		if msg == "" {
			http.Error(w, "Missing message", http.StatusBadRequest)
			return
		}
		m.Publish(msg)
		io.WriteString(w, fmt.Sprintf("Published %q", msg))
	})

	// Server-Sent Events stream of status lines.
	debug.HandleSilentFunc("status-tail", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no") // Disable buffering for nginx

		id, c := m.Subscribe()
		defer m.Unsubscribe(id)

		w.Write([]byte(": ping\n\n"))
		w.(http.Flusher).Flush()

		for {
			select {
			case payload, ok := <-c:
				if !ok {
					return
				}
				if _, err := w.Write([]byte(fmt.Sprintf("data: %s\n\n", payload))); err != nil {
					return
				}
				w.(http.Flusher).Flush()
			case <-r.Context().Done():
				return
			}
		}
	})
}
