package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/sim"
)

func dial(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(h)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	h := NewHub(nil)
	conn, done := dial(t, h)
	defer done()

	snap := dynamo.Snapshot{Step: 3, Time: 0.03, Contacts: 2, Bodies: []dynamo.BodyState{{Name: "cube"}}}
	snap.Bodies[0].Position[1] = 4
	h.Broadcast(NewMessage(snap))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Message
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != "snapshot" || got.Step != 3 || got.Contacts != 2 {
		t.Errorf("unexpected message %+v", got)
	}
	if len(got.Bodies) != 1 || got.Bodies[0].Name != "cube" || got.Bodies[0].Position[1] != 4 {
		t.Errorf("unexpected bodies %+v", got.Bodies)
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	h := NewHub(nil)
	conn, done := dial(t, h)
	defer done()

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed client still registered")
		}
		h.Broadcast(Message{Type: "ping"})
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishRun(t *testing.T) {
	h := NewHub(nil)
	conn, done := dial(t, h)
	defer done()

	cfg := config.GetPreset("drop")
	cfg.Duration = 0.1
	w, err := cfg.Build(cfg.Seed)
	if err != nil {
		t.Fatal(err)
	}

	rc := cfg.RunConfig()
	if err := Publish(context.Background(), h, sim.New(w), rc, Options{Every: 5}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	want := (rc.Steps() + 4) / 5
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	last := -1
	for i := 0; i < want; i++ {
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		if m.Step <= last && i > 0 {
			t.Errorf("steps out of order: %d after %d", m.Step, last)
		}
		if m.Step%5 != 0 {
			t.Errorf("unexpected step %d", m.Step)
		}
		last = m.Step
	}
}

func TestPublishStopsOnCancel(t *testing.T) {
	cfg := config.GetPreset("drop")
	w, err := cfg.Build(cfg.Seed)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = Publish(ctx, NewHub(nil), sim.New(w), cfg.RunConfig(), Options{Realtime: true})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("realtime publish did not stop promptly")
	}
}
