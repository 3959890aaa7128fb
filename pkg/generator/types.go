package generator

import "google.golang.org/genai"

const (
	DefaultModel           = "gemini-2.5-flash-image"
	DefaultLocation        = "us-central1"
	DefaultProject         = "global-hackathon-479205"
	DefaultMaxOutputTokens = 8192
	DefaultTemperature     = 1.0
	DefaultTopP            = 0.95
)

// Settings はモデルへ渡す固定の生成パラメータです。
type Settings struct {
	MaxOutputTokens int32
	Temperature     float32
	TopP            float32
}

// DefaultSettings は既定の生成パラメータを返します。
func DefaultSettings() Settings {
	return Settings{
		MaxOutputTokens: DefaultMaxOutputTokens,
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
	}
}

// safetyCategories は BLOCK_NONE を設定する4カテゴリです。
var safetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHateSpeech,
	genai.HarmCategoryDangerousContent,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryHarassment,
}

// GenerateContentConfig は SDK 用の生成設定を組み立てます。
func (s Settings) GenerateContentConfig() *genai.GenerateContentConfig {
	safety := make([]*genai.SafetySetting, 0, len(safetyCategories))
	for _, c := range safetyCategories {
		safety = append(safety, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}
	return &genai.GenerateContentConfig{
		MaxOutputTokens: s.MaxOutputTokens,
		Temperature:     genai.Ptr(s.Temperature),
		TopP:            genai.Ptr(s.TopP),
		SafetySettings:  safety,
	}
}

// State はパイプラインの進行状態です。
type State int

const (
	StateIdle State = iota
	StateValidatingInput
	StateDownloadingImages
	StateResolvingCredentials
	StateStreamingGeneration
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidatingInput:
		return "validating_input"
	case StateDownloadingImages:
		return "downloading_images"
	case StateResolvingCredentials:
		return "resolving_credentials"
	case StateStreamingGeneration:
		return "streaming_generation"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
