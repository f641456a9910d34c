package platforms

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// FeishuAdapter posts interactive cards to a custom bot webhook. Custom bots
// cannot edit messages, so panels are posted as new cards.
type FeishuAdapter struct {
	client *HTTPClient
	now    func() time.Time
}

func NewFeishuAdapter(client *HTTPClient) *FeishuAdapter {
	return &FeishuAdapter{client: client, now: time.Now}
}

func (a *FeishuAdapter) Name() string {
	return "feishu"
}

func (a *FeishuAdapter) Send(ctx context.Context, endpoint, secret string, msg Message) error {
	elements := []map[string]string{{
		"tag":     "markdown",
		"content": firstNonEmpty(msg.Description, msg.Content, msg.Title),
	}}
	for _, f := range msg.Fields {
		elements = append(elements, map[string]string{
			"tag":     "markdown",
			"content": "**" + f.Name + "**: " + f.Value,
		})
	}
	if msg.Footer != "" {
		elements = append(elements, map[string]string{"tag": "markdown", "content": msg.Footer})
	}
	payload := map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"header": map[string]any{
				"title":    map[string]string{"tag": "plain_text", "content": msg.Title},
				"template": cardTemplate(msg.Color),
			},
			"elements": elements,
		},
	}
	if secret = strings.TrimSpace(secret); secret != "" {
		ts := a.now().Unix()
		payload["timestamp"] = strconv.FormatInt(ts, 10)
		payload["sign"] = feishuSign(ts, secret)
	}
	_, err := a.client.PostJSON(ctx, endpoint, nil, payload)
	return err
}

// feishuSign implements the custom bot signature: HMAC-SHA256 keyed with
// "timestamp\nsecret" over an empty message, base64 encoded.
func feishuSign(ts int64, secret string) string {
	key := strconv.FormatInt(ts, 10) + "\n" + secret
	h := hmac.New(sha256.New, []byte(key))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func cardTemplate(color int) string {
	switch color {
	case 0xED4245:
		return "red"
	case 0xFEE75C:
		return "yellow"
	case 0x3BA55D, 0x57F287:
		return "green"
	default:
		return "blue"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
