package cli

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

var (
	inputFile string
	prompt    string
	outDir    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate images once and write them to a directory",
	Long: `Generate images once and write them to a directory.

The input file accepts the same JSON body as POST /generate-image.
Text is streamed to stdout as it arrives.

Examples:
  promo-kit generate --prompt "a red lipstick on marble"
  promo-kit generate --input curation.json --out ./banners
  cat curation.json | promo-kit generate --input -`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&inputFile, "input", "i", "", `request body file ("-" for stdin)`)
	generateCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "plain text prompt")
	generateCmd.Flags().StringVarP(&outDir, "out", "o", "out", "output directory for generated images")
	generateCmd.MarkFlagsMutuallyExclusive("input", "prompt")
	generateCmd.MarkFlagsOneRequired("input", "prompt")
}

// chunkStreamer はパイプラインのうち generate コマンドが使う部分です。
type chunkStreamer interface {
	Stream(ctx context.Context, in domain.ResolvedInput) (iter.Seq2[domain.Chunk, error], error)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	in, err := resolveCLIInput(cmd.InOrStdin())
	if err != nil {
		return exitWithCode(exitCodeFor(err), err)
	}

	pipeline, cleanup, err := buildPipeline(cmd.Context(), cfg)
	defer cleanup()
	if err != nil {
		return exitWithCode(ExitConfig, err)
	}

	paths, err := generate(cmd.Context(), pipeline, in, cmd.OutOrStdout(), outDir)
	if err != nil {
		return exitWithCode(exitCodeFor(err), err)
	}
	for _, p := range paths {
		log.WithField("path", p).Info("image saved")
	}
	return nil
}

func resolveCLIInput(stdin io.Reader) (domain.ResolvedInput, error) {
	if inputFile == "" {
		if prompt == "" {
			return domain.ResolvedInput{}, &domain.ValidationError{Message: "Prompt is required"}
		}
		return domain.ResolvedInput{Kind: domain.InputText, Prompt: prompt}, nil
	}

	var (
		body []byte
		err  error
	)
	if inputFile == "-" {
		body, err = io.ReadAll(stdin)
	} else {
		body, err = os.ReadFile(inputFile)
	}
	if err != nil {
		return domain.ResolvedInput{}, fmt.Errorf("failed to read input: %w", err)
	}
	return domain.ResolveInput(body)
}

// generate はテキストチャンクを w に逐次書き出し、画像を dir に保存してそのパスを返します。
func generate(ctx context.Context, s chunkStreamer, in domain.ResolvedInput, w io.Writer, dir string) ([]string, error) {
	chunks, err := s.Stream(ctx, in)
	if err != nil {
		return nil, err
	}

	var paths []string
	for c, err := range chunks {
		if err != nil {
			return paths, err
		}
		if !c.IsImage() {
			fmt.Fprint(w, c.Text)
			continue
		}
		p, err := saveImage(dir, len(paths)+1, *c.Image)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	fmt.Fprintln(w)
	return paths, nil
}

func saveImage(dir string, n int, img domain.InlineImage) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	p := filepath.Join(dir, fmt.Sprintf("image-%02d%s", n, imageExt(img.MimeType)))
	if err := os.WriteFile(p, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", p, err)
	}
	return p, nil
}

func imageExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
