package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saskaita/invoice-pipeline/internal/common"
	"github.com/saskaita/invoice-pipeline/internal/llm"
)

// ExtractFields implements llm.FieldExtractor over chat/completions. PDF text
// travels inline in the prompt; photos are attached as a data-URL image part.
// The response must be a single JSON object matching the invoice schema; a
// non-JSON or structurally invalid reply is an upstream parse error, never a
// silently defaulted result.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
		"has_image", req.ImageDataURL != "",
		"file", req.FileName,
	)

	user := llm.BuildUserPrompt(req)

	var userContent any = user
	if req.ImageDataURL != "" {
		userContent = []map[string]any{
			{"type": "text", "text": user},
			{"type": "image_url", "image_url": map[string]any{"url": req.ImageDataURL}},
		}
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.SystemPrompt},
			{"role": "user", "content": userContent},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, nil, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, raw, common.NewAppError("AI_EMPTY_RESPONSE", "no choices in openai response", common.ErrUpstreamParse)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	rawContent := []byte(content)

	// Must be a JSON object before anything else touches it.
	var shape any
	if err := json.Unmarshal(rawContent, &shape); err != nil {
		c.log.Error("llm.extract.parse_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, rawContent, common.NewAppError("AI_PARSE_ERROR", err.Error(), common.ErrUpstreamParse)
	}
	if _, ok := shape.(map[string]any); !ok {
		c.log.Error("llm.extract.not_an_object", "req_id", rid)
		return llm.InvoiceFields{}, rawContent, common.NewAppError("AI_PARSE_ERROR", "response is not a JSON object", common.ErrUpstreamParse)
	}

	schema := llm.BuildInvoiceJSONSchema()
	if err := llm.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, rawContent, common.NewAppError("AI_PARSE_ERROR", err.Error(), common.ErrUpstreamParse)
	}

	var out llm.InvoiceFields
	if err := json.Unmarshal(rawContent, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed", "req_id", rid, "error", err)
		return llm.InvoiceFields{}, rawContent, common.NewAppError("AI_PARSE_ERROR", err.Error(), common.ErrUpstreamParse)
	}
	llm.FillMissing(&out)

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"invoice", out.SerijaIrNumeris,
		"date", out.IsdavimoData,
		"total", out.BendraKaina,
		"items", len(out.Prekes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}
