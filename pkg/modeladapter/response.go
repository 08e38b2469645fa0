package modeladapter

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/germanamz/aiwizard/pkg/modeladapter/usage"
)

// response is the decoded shape of a completion body. Exactly one of
// completion, apiFailure or unexpected is produced per body.
type response interface {
	isResponse()
}

type completion struct {
	text  string
	usage *usage.TokenCount
}

type apiFailure struct {
	message string
	errType string
	code    string
}

type unexpected struct {
	value any
}

func (completion) isResponse() {}
func (apiFailure) isResponse() {}
func (unexpected) isResponse() {}

type apiErrorBody struct {
	Message json.RawMessage `json:"message"`
	Type    json.RawMessage `json:"type"`
	Code    json.RawMessage `json:"code"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

var errNotJSON = errors.New("body is not valid JSON")

// decodeResponse classifies raw. The error is non-nil only when raw is not JSON.
func decodeResponse(raw []byte) (response, error) {
	if !json.Valid(raw) {
		return nil, errNotJSON
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return unexpected{value: value}, nil
	}

	if errRaw, ok := doc["error"]; ok && truthy(errRaw) {
		return decodeAPIFailure(errRaw), nil
	}

	text, ok := firstContent(doc["choices"])
	if !ok {
		return unexpected{value: value}, nil
	}

	return completion{text: text, usage: decodeUsage(doc["usage"])}, nil
}

func decodeAPIFailure(raw json.RawMessage) apiFailure {
	f := apiFailure{message: GenericAPIErrorMessage}

	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return f
	}

	if msg, ok := jsonString(body.Message); ok && msg != "" {
		f.message = msg
	}
	f.errType, _ = jsonString(body.Type)
	f.code, _ = jsonString(body.Code)

	return f
}

// firstContent extracts choices[0].message.content when it is a JSON string.
func firstContent(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}

	var choices []json.RawMessage
	if err := json.Unmarshal(raw, &choices); err != nil || len(choices) == 0 {
		return "", false
	}

	var choice map[string]json.RawMessage
	if err := json.Unmarshal(choices[0], &choice); err != nil {
		return "", false
	}

	var message map[string]json.RawMessage
	if err := json.Unmarshal(choice["message"], &message); err != nil {
		return "", false
	}

	return jsonString(message["content"])
}

func decodeUsage(raw json.RawMessage) *usage.TokenCount {
	if raw == nil {
		return nil
	}

	var u apiUsage
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}

	return &usage.TokenCount{InputTokens: u.PromptTokens, OutputTokens: u.CompletionTokens}
}

// jsonString decodes raw only if it is a JSON string literal; null and other
// types report false.
func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}

	return s, true
}

// truthy reports whether an "error" member signals a failure. null, false, 0
// and "" do not.
func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}
