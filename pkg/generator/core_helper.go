package generator

import (
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

// buildContents はプロンプトを先頭に、参照画像を入力順のインラインパーツとして並べた
// 単一ターンのユーザーメッセージを組み立てます。
func buildContents(prompt string, images []domain.DownloadedImage) []*genai.Content {
	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MimeType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// Chunks は上流のレスポンスストリームを Chunk のストリームに変換します。
// テキストは累積テキストと共に、インライン画像はそのまま、到着順に返します。
// 上流のエラーは *domain.GenerationError として1度だけ返し、そこで終了します。
func Chunks(stream iter.Seq2[*genai.GenerateContentResponse, error]) iter.Seq2[domain.Chunk, error] {
	return func(yield func(domain.Chunk, error) bool) {
		var full strings.Builder
		for resp, err := range stream {
			if err != nil {
				yield(domain.Chunk{}, &domain.GenerationError{Err: err})
				return
			}
			if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			// 最初の候補 (Candidate) のみを利用する
			for _, part := range resp.Candidates[0].Content.Parts {
				if part == nil {
					continue
				}
				if part.Text != "" {
					full.WriteString(part.Text)
					if !yield(domain.Chunk{Text: part.Text, FullTextSoFar: full.String()}, nil) {
						return
					}
				}
				if part.InlineData != nil {
					img := &domain.InlineImage{MimeType: part.InlineData.MIMEType, Data: part.InlineData.Data}
					if !yield(domain.Chunk{Image: img}, nil) {
						return
					}
				}
			}
		}
	}
}

// Collect はチャンクストリームを最後まで読み、GenerationResult に集約します。
func Collect(chunks iter.Seq2[domain.Chunk, error]) (*domain.GenerationResult, error) {
	result := &domain.GenerationResult{
		Images: []domain.InlineImage{},
		Chunks: []domain.Chunk{},
	}
	for c, err := range chunks {
		if err != nil {
			return nil, err
		}
		result.Chunks = append(result.Chunks, c)
		if c.IsImage() {
			result.Images = append(result.Images, *c.Image)
			continue
		}
		result.Text = c.FullTextSoFar
	}
	return result, nil
}
