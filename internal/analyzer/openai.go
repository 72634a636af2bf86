// Package analyzer asks an OpenAI-compatible chat completions endpoint
// whether identity document images carry readable data.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kycflow/internal/model"
	"kycflow/internal/schema"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultModel = "gpt-4o-2024-08-06"

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements the document analyzer over chat completions with a
// strict JSON schema response format.
type Client struct {
	openai   openai.Client
	model    string
	compiler *schema.Compiler
}

func New(config Config, compiler *schema.Compiler) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	// case:verify retries on the job queue
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithRequestTimeout(config.Timeout),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &Client{
		openai:   openai.NewClient(opts...),
		model:    config.Model,
		compiler: compiler,
	}
}

// Prompt is the system instruction for docType
func Prompt(docType model.DocumentType) string {
	label := docType.Label()
	return fmt.Sprintf(
		`Analyze the given %s images to check for real data in the following fields: "name", "dob", "address", "person_image", "issue_date" and "expiry_date", and determine if it is a %s. `+
			`For each field, return true if it contains actual data which is readable and not blurry or obscured. `+
			`Return true for "isTargetDocument" if it is a %s, otherwise return false.`,
		label, label, label,
	)
}

// Analyze sends every image in one request and returns the parsed verdict
func (c *Client) Analyze(ctx context.Context, docType model.DocumentType, imageURLs []string) (model.FieldReport, error) {
	if len(imageURLs) == 0 {
		return model.FieldReport{}, errors.New("no images to analyze")
	}

	raw, err := schema.Raw(schema.FieldReport)
	if err != nil {
		return model.FieldReport{}, err
	}
	var reportSchema map[string]interface{}
	if err := json.Unmarshal(raw, &reportSchema); err != nil {
		return model.FieldReport{}, fmt.Errorf("invalid field report schema: %w", err)
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(imageURLs))
	for _, u := range imageURLs {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: u}))
	}

	completion, err := c.openai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(Prompt(docType)),
			openai.UserMessage(parts),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "document_fields",
					Strict: openai.Bool(true),
					Schema: reportSchema,
				},
			},
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return model.FieldReport{}, fmt.Errorf("analyzer returned %d: %w", apiErr.StatusCode, err)
		}
		return model.FieldReport{}, fmt.Errorf("analyzer request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return model.FieldReport{}, errors.New("analyzer returned no choices")
	}

	choice := completion.Choices[0].Message
	if choice.Refusal != "" {
		return model.FieldReport{}, fmt.Errorf("analyzer refused: %s", choice.Refusal)
	}

	var report model.FieldReport
	if err := c.compiler.Decode(ctx, schema.FieldReport, []byte(choice.Content), &report); err != nil {
		return model.FieldReport{}, fmt.Errorf("analyzer verdict: %w", err)
	}
	return report, nil
}
