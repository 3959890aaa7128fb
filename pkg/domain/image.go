package domain

import (
	"encoding/base64"
	"encoding/json"
)

// DownloadedImage はリクエスト処理中だけ保持される参照画像です。永続化はしません。
type DownloadedImage struct {
	URL      string
	MimeType string
	Data     []byte
}

// Base64Data は画像バイト列を標準 base64 でエンコードした文字列を返します。
func (d DownloadedImage) Base64Data() string {
	return base64.StdEncoding.EncodeToString(d.Data)
}

// InlineImage はモデルが返したインライン画像です。
type InlineImage struct {
	MimeType string
	Data     []byte
}

type inlineImageJSON struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// MarshalJSON は Data を base64 文字列として出力します。
func (i InlineImage) MarshalJSON() ([]byte, error) {
	return json.Marshal(inlineImageJSON{
		MimeType: i.MimeType,
		Data:     base64.StdEncoding.EncodeToString(i.Data),
	})
}

// UnmarshalJSON は MarshalJSON の逆変換です。
func (i *InlineImage) UnmarshalJSON(b []byte) error {
	var raw inlineImageJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(raw.Data)
	if err != nil {
		return err
	}
	i.MimeType = raw.MimeType
	i.Data = data
	return nil
}

// Chunk はモデル出力の1単位です。Text チャンクか Image チャンクのどちらか一方になります。
type Chunk struct {
	Text          string
	FullTextSoFar string
	Image         *InlineImage
}

// IsImage は画像チャンクかどうかを返します。
func (c Chunk) IsImage() bool {
	return c.Image != nil
}

// MarshalJSON は有効なバリアントのフィールドだけを出力します。
func (c Chunk) MarshalJSON() ([]byte, error) {
	if c.Image != nil {
		return json.Marshal(struct {
			Image *InlineImage `json:"image"`
		}{c.Image})
	}
	return json.Marshal(struct {
		Text          string `json:"text"`
		FullTextSoFar string `json:"fullTextSoFar"`
	}{c.Text, c.FullTextSoFar})
}

// GenerationResult はストリーム全体を集約した結果です。
type GenerationResult struct {
	Text   string        `json:"text"`
	Images []InlineImage `json:"images"`
	Chunks []Chunk       `json:"chunks"`
}
