package domain

import "fmt"

// ValidationError は利用者が修正できる入力エラーです (HTTP 400)。
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DownloadError は参照画像の取得に失敗したことを表します (HTTP 400)。
// URL には最初に失敗した参照画像が入ります。
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("Failed to download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// CredentialsError は認証情報が見つからない、または壊れていることを表します (HTTP 500)。
type CredentialsError struct {
	Message string
	Err     error
}

func (e *CredentialsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CredentialsError) Unwrap() error { return e.Err }

// GenerationError は上流モデル呼び出しの失敗です (HTTP 500)。
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
