package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

type DiscordAdapter struct {
	client *HTTPClient

	mu      sync.Mutex
	panelID map[string]string
}

func NewDiscordAdapter(client *HTTPClient) *DiscordAdapter {
	return &DiscordAdapter{client: client, panelID: map[string]string{}}
}

func (a *DiscordAdapter) Name() string {
	return "discord"
}

func (a *DiscordAdapter) Send(ctx context.Context, endpoint, _ string, msg Message) error {
	payload := discordPayload(msg)
	panelKey := strings.TrimSpace(msg.PanelKey)
	if panelKey == "" {
		_, err := a.client.PostJSON(ctx, endpoint, nil, payload)
		return err
	}

	key := endpoint + "|" + panelKey
	if msgID := a.lookup(key); msgID != "" {
		editURL, ok := discordEditURL(endpoint, msgID)
		if ok {
			_, err := a.client.PatchJSON(ctx, editURL, nil, payload)
			if err == nil || !isStatus(err, http.StatusNotFound) {
				return err
			}
		}
	}

	msgID, err := a.create(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	a.remember(key, msgID)
	return nil
}

// ForgetPanel drops the message id so the next send for panelKey posts a new
// message.
func (a *DiscordAdapter) ForgetPanel(endpoint, panelKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.panelID, endpoint+"|"+strings.TrimSpace(panelKey))
}

func (a *DiscordAdapter) lookup(key string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.panelID[key]
}

func (a *DiscordAdapter) remember(key, msgID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.panelID[key] = msgID
}

func (a *DiscordAdapter) create(ctx context.Context, endpoint string, payload map[string]any) (string, error) {
	waitEndpoint := endpoint
	if strings.Contains(waitEndpoint, "?") {
		waitEndpoint += "&wait=true"
	} else {
		waitEndpoint += "?wait=true"
	}
	body, err := a.client.PostJSON(ctx, waitEndpoint, nil, payload)
	if err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(body, &created) != nil || strings.TrimSpace(created.ID) == "" {
		return "", errors.New("discord webhook create message missing id")
	}
	return created.ID, nil
}

func discordPayload(msg Message) map[string]any {
	type embedField struct {
		Name   string `json:"name"`
		Value  string `json:"value"`
		Inline bool   `json:"inline"`
	}
	fields := make([]embedField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, embedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	embed := map[string]any{
		"title":       msg.Title,
		"description": msg.Description,
		"fields":      fields,
		"color":       msg.Color,
	}
	if msg.Timestamp != "" {
		embed["timestamp"] = msg.Timestamp
	}
	if msg.Footer != "" {
		embed["footer"] = map[string]string{"text": msg.Footer}
	}
	return map[string]any{
		"content": msg.Content,
		"embeds":  []map[string]any{embed},
	}
}

// discordEditURL maps /api/webhooks/{id}/{token} to the message edit route.
func discordEditURL(endpoint, msgID string) (string, bool) {
	u, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(msgID) == "" {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[0] != "api" || parts[1] != "webhooks" {
		return "", false
	}
	u.Path = "/api/webhooks/" + parts[2] + "/" + parts[3] + "/messages/" + msgID
	u.RawQuery = ""
	return u.String(), true
}
