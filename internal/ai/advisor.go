package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"costing-engine/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// AdvisorService turns a computed pricing report into structured, human
// readable pricing suggestions.
type AdvisorService interface {
	AdvisePricing(ctx context.Context, report *core.PricingReport, question string) (*PricingAdvice, error)
}

// ProductSuggestion is one product-level recommendation from the advisor.
type ProductSuggestion struct {
	ProductName    string `json:"product_name" jsonschema_description:"Name of the product the suggestion refers to"`
	SuggestedPrice string `json:"suggested_price" jsonschema_description:"Suggested sale price as an exact decimal string, e.g. \"24.90\""`
	Rationale      string `json:"rationale" jsonschema_description:"Short justification in Portuguese"`
}

// PricingAdvice is the advisor's structured answer.
type PricingAdvice struct {
	Summary     string              `json:"summary" jsonschema_description:"Overall assessment of the company's pricing, in Portuguese"`
	Suggestions []ProductSuggestion `json:"suggestions" jsonschema_description:"Per-product price suggestions, worst offenders first"`
	Confidence  float64             `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
}

type Advisor struct {
	client *openai.Client
}

func NewAdvisor(apiKey string) *Advisor {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Advisor{client: &client}
}

func (a *Advisor) AdvisePricing(ctx context.Context, report *core.PricingReport, question string) (*PricingAdvice, error) {
	prompt := fmt.Sprintf(`You are an expert restaurant pricing consultant for small Brazilian food businesses.
Your goal is to review the computed pricing report below and suggest concrete price adjustments.
Rules:
1. Refer to products by their exact names from the report.
2. Prices must be exact decimal strings (e.g. "24.90").
3. Answer in Brazilian Portuguese.
4. Prioritize products with negative margin or CMV above target.
5. Provide a confidence score (0.0-1.0).

Pricing report:
%s

Question: %s`, formatReport(report), question)

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "pricing_advice",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Structured pricing advice for a restaurant menu"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var advice PricingAdvice
	if err := json.Unmarshal([]byte(content), &advice); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	return &advice, nil
}

// formatReport renders the report as compact prompt text: one line per
// product with the numbers the model needs, nothing else.
func formatReport(report *core.PricingReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Empresa: %s\n", report.Company.Name)
	fmt.Fprintf(&b, "Custos fixos mensais: %s\n", report.TotalFixedCosts.StringFixed(2))
	fmt.Fprintf(&b, "Meta de CMV: %s%%, lucro desejado: %s%%\n",
		report.Settings.TargetCMVPercent.StringFixed(0),
		report.Settings.DesiredProfitPercent.StringFixed(0))

	for _, pr := range report.Products {
		fmt.Fprintf(&b, "- %s: preço %s, CMV %s", pr.Product.Name,
			pr.Product.SalePrice.StringFixed(2), pr.CMV.Total.StringFixed(2))
		if pr.Metrics.CMVPercent != nil {
			fmt.Fprintf(&b, " (%s%%)", pr.Metrics.CMVPercent.StringFixed(1))
		}
		if pr.Metrics.IdealPriceDefined {
			fmt.Fprintf(&b, ", preço ideal %s", pr.Metrics.IdealPrice.StringFixed(2))
		}
		fmt.Fprintf(&b, ", lucro %s", pr.Metrics.ProfitValue.StringFixed(2))
		for _, in := range pr.Insights {
			fmt.Fprintf(&b, " [%s]", in.Key)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v PricingAdvice
	return reflector.Reflect(v)
}
