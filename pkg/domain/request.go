package domain

import (
	"bytes"
	"encoding/json"
)

// InputKind はリクエストボディがどの形式で解決されたかを表します。
type InputKind int

const (
	InputText InputKind = iota
	InputPrompt
	InputCuration
)

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputPrompt:
		return "prompt"
	case InputCuration:
		return "curation"
	default:
		return "unknown"
	}
}

// ResolvedInput は単一のプロンプトと参照画像URL群に解決済みの入力です。
type ResolvedInput struct {
	Kind      InputKind
	Prompt    string
	ImageURLs []string
}

// RecommendedProduct はキュレーション結果に含まれる推薦商品です。
// image_url は null や文字列以外の値も来るため生のまま保持します。
type RecommendedProduct struct {
	ImageURL json.RawMessage `json:"image_url,omitempty"`
}

// CurationResult はキュレーション結果です。
type CurationResult struct {
	RecommendedProducts []RecommendedProduct `json:"recommended_products"`
}

// GenerationRequest はオブジェクト形式のリクエストボディです。
type GenerationRequest struct {
	Prompt                json.RawMessage `json:"prompt,omitempty"`
	NanobananaImagePrompt json.RawMessage `json:"nanobanana_image_prompt,omitempty"`
	CurationResult        json.RawMessage `json:"curation_result,omitempty"`
}

// ResolveInput はリクエストボディ（JSON文字列または JSON オブジェクト）を解決します。
// 優先順位は 文字列 → prompt → nanobanana_image_prompt/curation_result → prompt の順です。
func ResolveInput(body []byte) (ResolvedInput, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ResolvedInput{}, &ValidationError{Message: "Prompt is required"}
	}

	switch body[0] {
	case '"':
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return ResolvedInput{}, &ValidationError{Message: "Invalid request body", Err: err}
		}
		return validated(ResolvedInput{Kind: InputText, Prompt: s})
	case '{':
		var req GenerationRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return ResolvedInput{}, &ValidationError{Message: "Invalid request body", Err: err}
		}
		return req.Resolve()
	default:
		if !json.Valid(body) {
			return ResolvedInput{}, &ValidationError{Message: "Invalid request body"}
		}
		return ResolvedInput{}, &ValidationError{Message: "Prompt is required"}
	}
}

// Resolve はオブジェクト形式のリクエストをプロンプトと画像URLに解決します。
func (r GenerationRequest) Resolve() (ResolvedInput, error) {
	if truthy(r.Prompt) {
		return validated(ResolvedInput{Kind: InputPrompt, Prompt: stringValue(r.Prompt)})
	}
	if truthy(r.NanobananaImagePrompt) || truthy(r.CurationResult) {
		return validated(ResolvedInput{
			Kind:      InputCuration,
			Prompt:    stringValue(r.NanobananaImagePrompt),
			ImageURLs: extractImageURLs(r.CurationResult),
		})
	}
	return validated(ResolvedInput{Kind: InputPrompt, Prompt: stringValue(r.Prompt)})
}

func validated(in ResolvedInput) (ResolvedInput, error) {
	if in.Prompt == "" {
		return ResolvedInput{}, &ValidationError{Message: "Prompt is required"}
	}
	return in, nil
}

// extractImageURLs は null・空文字・文字列以外を除外し、元の順序を保ちます。
// recommended_products が配列でない場合は画像なしとして扱います。
func extractImageURLs(raw json.RawMessage) []string {
	if !truthy(raw) {
		return nil
	}
	var cr CurationResult
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil
	}
	var urls []string
	for _, p := range cr.RecommendedProducts {
		if u := stringValue(p.ImageURL); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// stringValue は JSON 文字列ならその値を、それ以外は空文字を返します。
func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// truthy は JSON 値が null/false/0/"" 以外かどうかを返します。
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	}
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f != 0
		}
	}
	return true
}
