package cli

import (
	"errors"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

// 終了コード
const (
	ExitSuccess     = 0
	ExitValidation  = 1
	ExitDownload    = 2
	ExitCredentials = 3
	ExitGeneration  = 4
	ExitConfig      = 5
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// ExitCode は main から os.Exit に渡すコードです。
func (e *exitError) ExitCode() int { return e.code }

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCodeFor はパイプラインのエラー分類を終了コードに対応付けます。
func exitCodeFor(err error) int {
	var (
		vErr *domain.ValidationError
		dErr *domain.DownloadError
		cErr *domain.CredentialsError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &vErr):
		return ExitValidation
	case errors.As(err, &dErr):
		return ExitDownload
	case errors.As(err, &cErr):
		return ExitCredentials
	default:
		return ExitGeneration
	}
}
