package gcpauth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestChain_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("環境変数が最優先される", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "global-hackathon-1.json"), []byte(`{"project_id":"from-file"}`), 0o600))

		chain := Chain{
			&EnvProvider{Var: DefaultEnvVar, LookupEnv: envFrom(map[string]string{DefaultEnvVar: `{"project_id":"from-env"}`})},
			&DirProvider{Dir: dir, Prefix: DefaultFilePrefix},
		}
		creds, err := chain.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "from-env", creds.ProjectID)
		assert.Equal(t, "env:"+DefaultEnvVar, creds.Source)
	})

	t.Run("環境変数がなければディレクトリから読む", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{"project_id":"ignored"}`), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "global-hackathon-479205-abc.json"), []byte(`{"project_id":"from-file"}`), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "global-hackathon.txt"), []byte(`nope`), 0o600))

		chain := Chain{
			&EnvProvider{Var: DefaultEnvVar, LookupEnv: envFrom(nil)},
			&DirProvider{Dir: dir, Prefix: DefaultFilePrefix},
		}
		creds, err := chain.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "from-file", creds.ProjectID)
		assert.Contains(t, creds.Source, "global-hackathon-479205-abc.json")
	})

	t.Run("どこにもなければ CredentialsError", func(t *testing.T) {
		chain := Chain{
			&EnvProvider{Var: DefaultEnvVar, LookupEnv: envFrom(nil)},
			&DirProvider{Dir: filepath.Join(t.TempDir(), "missing"), Prefix: DefaultFilePrefix},
		}
		_, err := chain.Resolve(ctx)
		var cErr *domain.CredentialsError
		require.True(t, errors.As(err, &cErr))
		assert.Equal(t, "Google Cloud credentials not found", cErr.Message)
	})

	t.Run("壊れた JSON は後続を試さず CredentialsError", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "global-hackathon.json"), []byte(`{"project_id":"x"}`), 0o600))

		chain := Chain{
			&EnvProvider{Var: DefaultEnvVar, LookupEnv: envFrom(map[string]string{DefaultEnvVar: `{broken`})},
			&DirProvider{Dir: dir, Prefix: DefaultFilePrefix},
		}
		_, err := chain.Resolve(ctx)
		var cErr *domain.CredentialsError
		require.True(t, errors.As(err, &cErr))
		assert.Contains(t, cErr.Message, "env:"+DefaultEnvVar)
	})

	t.Run("JSON オブジェクト以外は拒否する", func(t *testing.T) {
		for _, raw := range []string{`"string"`, `[1,2]`, `null`, `42`} {
			p := &EnvProvider{Var: "X", LookupEnv: envFrom(map[string]string{"X": raw})}
			_, err := p.Credentials(ctx)
			assert.Error(t, err, raw)
		}
	})
}
