package ai

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/bedrock"

	"github.com/mnemolabs/mnemo/internal/core/documents"
	"github.com/mnemolabs/mnemo/internal/core/models"
)

// BedrockGateway implements Gateway using AWS Bedrock.
type BedrockGateway struct {
	llm          *bedrock.LLM
	modelID      string
	excerptLimit int
}

// BedrockConfig holds configuration for the Bedrock gateway.
type BedrockConfig struct {
	Region          string // AWS region, defaults to us-east-1
	ModelID         string // Model ID, defaults to anthropic.claude-3-haiku-20240307-v1:0
	Profile         string // AWS profile name (optional)
	AccessKeyID     string // AWS access key ID (optional, for explicit creds)
	SecretAccessKey string // AWS secret access key (optional, for explicit creds)
	ExcerptLimit    int    // per-document prompt budget
}

// NewBedrock creates a new Bedrock gateway.
func NewBedrock(ctx context.Context, cfg BedrockConfig) (*BedrockGateway, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}
	if cfg.ExcerptLimit <= 0 {
		cfg.ExcerptLimit = documents.DefaultExcerptLimit
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)

	llm, err := bedrock.New(
		bedrock.WithModel(cfg.ModelID),
		bedrock.WithClient(client),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bedrock LLM: %w", err)
	}

	return &BedrockGateway{
		llm:          llm,
		modelID:      cfg.ModelID,
		excerptLimit: cfg.ExcerptLimit,
	}, nil
}

// Analyze implements Gateway.
func (b *BedrockGateway) Analyze(ctx context.Context, docs []models.Document) (*models.AnalysisResult, error) {
	prompt, err := buildAnalysisPrompt(docs, b.excerptLimit)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}

	reply, err := llms.GenerateFromSinglePrompt(ctx, b.llm, prompt,
		llms.WithMaxTokens(2048),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		return nil, &AnalysisError{Err: fmt.Errorf("bedrock generation failed: %w", err)}
	}

	result, err := ParseAnalysis(reply)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}
	return result, nil
}

// Converse implements Gateway. Bedrock text models take a single
// prompt, so the transcript is flattened into it.
func (b *BedrockGateway) Converse(ctx context.Context, history []models.ChatTurn, message string) (string, error) {
	prompt := flattenConversation(history, message)

	reply, err := llms.GenerateFromSinglePrompt(ctx, b.llm, prompt,
		llms.WithMaxTokens(1024),
		llms.WithTemperature(0.7),
	)
	if err != nil {
		return "", &ConversationError{Err: fmt.Errorf("bedrock generation failed: %w", err)}
	}
	return reply, nil
}

// Name implements Gateway.
func (b *BedrockGateway) Name() string {
	return "bedrock"
}
