package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeBotAPI emulates the Bot API endpoints the notifier uses.
type fakeBotAPI struct {
	mu        sync.Mutex
	calls     []string
	texts     []string
	failSends int
}

func (f *fakeBotAPI) handler(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	_ = r.ParseForm()

	f.mu.Lock()
	f.calls = append(f.calls, method)
	fail := false
	if method == "sendMessage" {
		f.texts = append(f.texts, r.FormValue("text"))
		if f.failSends > 0 {
			f.failSends--
			fail = true
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case fail:
		w.Write([]byte(`{"ok":false,"error_code":500,"description":"Internal Server Error"}`))
	case method == "getMe":
		w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"sentinel","username":"sentinel_bot"}}`))
	case method == "sendMessage", method == "editMessageText":
		w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`))
	default:
		w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
	}
}

func newTestNotifier(t *testing.T, api *fakeBotAPI) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	t.Cleanup(srv.Close)
	n, err := newTelegramNotifier("TOKEN", "42", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("newTelegramNotifier: %v", err)
	}
	n.retryDelay = time.Millisecond
	return n
}

func TestNewTelegramNotifier_InvalidChatID(t *testing.T) {
	if _, err := newTelegramNotifier("TOKEN", "not-a-number", "http://127.0.0.1:1/bot%s/%s", http.DefaultClient); err == nil {
		t.Fatal("expected error for invalid chat ID")
	}
}

func TestSend(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)
	if err := n.Send("<b>merhaba</b>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(api.texts) != 1 || api.texts[0] != "<b>merhaba</b>" {
		t.Errorf("texts = %v", api.texts)
	}
}

func TestSendWithRetry(t *testing.T) {
	api := &fakeBotAPI{failSends: 2}
	n := newTestNotifier(t, api)
	if err := n.SendWithRetry(context.Background(), "rapor", 3); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if len(api.texts) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(api.texts))
	}

	api2 := &fakeBotAPI{failSends: 10}
	n2 := newTestNotifier(t, api2)
	if err := n2.SendWithRetry(context.Background(), "rapor", 1); err == nil {
		t.Error("expected error after retries exhausted")
	}
}

func TestDispatch_ProgressThenEdit(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)

	n.dispatch(context.Background(), 42, "/top10", func(_ context.Context, text string, progress func(string)) string {
		progress("⏳ Taramaya başlandı")
		return "sonuç"
	})

	api.mu.Lock()
	defer api.mu.Unlock()
	got := strings.Join(api.calls, ",")
	if got != "getMe,sendMessage,editMessageText" {
		t.Errorf("calls = %s", got)
	}
}

func TestDispatch_RecoversFromPanic(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)

	n.dispatch(context.Background(), 42, "/analiz X", func(context.Context, string, func(string)) string {
		panic("boom")
	})

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.texts) != 1 || !strings.Contains(api.texts[0], "Hata") {
		t.Errorf("expected error reply, got %v", api.texts)
	}
}
