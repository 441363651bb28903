package openai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saskaita/invoice-pipeline/internal/common"
	"github.com/saskaita/invoice-pipeline/internal/llm"
)

// LocateFieldBox implements llm.FieldLocator. One vision call, one box; a
// reply that is not a JSON object with plausible percentages is an upstream
// parse error.
func (c *Client) LocateFieldBox(ctx context.Context, req llm.LocateRequest) (llm.FieldBox, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.locate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"field", req.FieldName,
		"file", req.FileName,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.SystemPrompt},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": llm.BuildLocatePrompt(req)},
				{"type": "image_url", "image_url": map[string]any{"url": req.ImageDataURL}},
			}},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("llm.locate.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.FieldBox{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.locate.decode_error", "req_id", rid, "error", err)
		return llm.FieldBox{}, common.NewAppError("AI_PARSE_ERROR", err.Error(), common.ErrUpstreamParse)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.locate.no_choices", "req_id", rid)
		return llm.FieldBox{}, common.NewAppError("AI_EMPTY_RESPONSE", "no choices in openai response", common.ErrUpstreamParse)
	}

	var box llm.FieldBox
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &box); err != nil {
		c.log.Error("llm.locate.parse_failed", "req_id", rid, "error", err)
		return llm.FieldBox{}, common.NewAppError("AI_PARSE_ERROR", err.Error(), common.ErrUpstreamParse)
	}
	if !plausibleBox(box) {
		c.log.Error("llm.locate.implausible_box", "req_id", rid, "box", content)
		return llm.FieldBox{}, common.NewAppError("AI_PARSE_ERROR", "coordinates outside the page", common.ErrUpstreamParse)
	}

	c.log.Info("llm.locate.ok",
		"req_id", rid,
		"field", req.FieldName,
		"x", box.X, "y", box.Y,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return box, nil
}

// plausibleBox keeps the highlight on the page. Percentage coordinates with a
// positive extent, origin inside [0,100).
func plausibleBox(b llm.FieldBox) bool {
	if b.X < 0 || b.X >= 100 || b.Y < 0 || b.Y >= 100 {
		return false
	}
	return b.Width > 0 && b.Width <= 100 && b.Height > 0 && b.Height <= 100
}
