package platforms

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestFeishuAdapterCardPayload(t *testing.T) {
	var got map[string]any
	client := newTestHTTPClient(func(r *http.Request) (*http.Response, error) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"code":0}`), nil
	})

	adapter := NewFeishuAdapter(client)
	err := adapter.Send(context.Background(), "https://open.feishu.cn/open-apis/bot/v2/hook/x", "", Message{
		Title:       "Vote Open",
		Description: "3 games",
		Color:       0xFEE75C,
		Fields:      []Field{{Name: "Tickets", Value: "4"}},
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if got["msg_type"] != "interactive" {
		t.Fatalf("unexpected msg_type: %v", got["msg_type"])
	}
	if _, ok := got["sign"]; ok {
		t.Fatal("sign should be omitted without a secret")
	}
	card := got["card"].(map[string]any)
	header := card["header"].(map[string]any)
	if header["template"] != "yellow" {
		t.Fatalf("unexpected template: %v", header["template"])
	}
	elements := card["elements"].([]any)
	if len(elements) != 2 {
		t.Fatalf("elements = %d, want 2", len(elements))
	}
	if elements[1].(map[string]any)["content"] != "**Tickets**: 4" {
		t.Fatalf("unexpected field element: %#v", elements[1])
	}
}

func TestFeishuAdapterSignsWithSecret(t *testing.T) {
	var got map[string]any
	client := newTestHTTPClient(func(r *http.Request) (*http.Response, error) {
		defer r.Body.Close()
		_ = json.NewDecoder(r.Body).Decode(&got)
		return jsonResponse(http.StatusOK, `{"code":0}`), nil
	})

	adapter := NewFeishuAdapter(client)
	adapter.now = func() time.Time { return time.Unix(1700000000, 0) }
	if err := adapter.Send(context.Background(), "https://open.feishu.cn/hook", "s3cret", Message{Title: "t"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if got["timestamp"] != "1700000000" {
		t.Fatalf("unexpected timestamp: %v", got["timestamp"])
	}
	if got["sign"] != feishuSign(1700000000, "s3cret") {
		t.Fatalf("unexpected sign: %v", got["sign"])
	}
}

func TestFeishuSignIsDeterministic(t *testing.T) {
	a := feishuSign(1, "k")
	if a == "" || a != feishuSign(1, "k") {
		t.Fatalf("sign not stable: %q", a)
	}
	if a == feishuSign(2, "k") {
		t.Fatal("sign should depend on timestamp")
	}
}
