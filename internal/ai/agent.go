package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"retail-backoffice/internal/catalog"
	"retail-backoffice/internal/logger"
	"retail-backoffice/internal/reports"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Agent answers natural-language questions about the shop by calling the
// reporting engine and the catalog as tools. It never writes anything.
type Agent struct {
	reports *reports.Engine
	catalog *catalog.Service
	apiKey  string
	log     *logger.Logger
}

func NewAgent(rep *reports.Engine, cat *catalog.Service, apiKey string, baseLog *logger.Logger) *Agent {
	return &Agent{reports: rep, catalog: cat, apiKey: apiKey, log: baseLog.With("service", "ai")}
}

const maxToolRounds = 4

func (a *Agent) Ask(ctx context.Context, userMessage string) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().UTC().Format("2006-01-02")
	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s (UTC). You are the reporting assistant of a retail back office.

RULES:
1. For revenue or sale-count questions use 'get_sales_summary'.
2. For questions about the best customers use 'top_customers'.
3. For questions about best-selling products use 'top_products'.
4. For stock or price questions call 'check_inventory' and read the JSON yourself.
5. Dates are YYYY-MM-DD. Leave a date empty for an unbounded range.

USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "get_sales_summary",
				Description: "Total revenue and number of sales for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD), empty for unbounded"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD), empty for unbounded"},
					},
				},
			},
			{
				Name:        "top_customers",
				Description: "The highest-spending customers in a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"limit":      {Type: genai.TypeInteger, Description: "How many customers"},
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD), empty for unbounded"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD), empty for unbounded"},
					},
					Required: []string{"limit"},
				},
			},
			{
				Name:        "top_products",
				Description: "Best-selling products by units sold in a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"limit":      {Type: genai.TypeInteger, Description: "How many products"},
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD), empty for unbounded"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD), empty for unbounded"},
					},
					Required: []string{"limit"},
				},
			},
			{
				Name:        "check_inventory",
				Description: "The full product list with id, name, price and stock.",
			},
		},
	}}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	// Let the model chain a few tool calls before it has to answer.
	for round := 0; round < maxToolRounds; round++ {
		funcCall, ok := firstFunctionCall(resp)
		if !ok {
			break
		}
		a.log.Debug("assistant tool call", "tool", funcCall.Name)

		toolResp, err := a.execute(ctx, funcCall)
		if err != nil {
			return "", err
		}
		if resp, err = session.SendMessage(ctx, toolResp); err != nil {
			return "", err
		}
	}

	return textResponse(resp), nil
}

func (a *Agent) execute(ctx context.Context, call genai.FunctionCall) (genai.FunctionResponse, error) {
	args := call.Args

	switch call.Name {
	case "get_sales_summary":
		summary, err := a.reports.Summary(ctx, strArg(args, "start_date"), strArg(args, "end_date"))
		if err != nil {
			return errResponse(call.Name, err), nil
		}
		return genai.FunctionResponse{
			Name: call.Name,
			Response: map[string]interface{}{
				"revenue":     summary.TotalRevenue.String(),
				"sales_count": summary.SaleCount,
			},
		}, nil

	case "top_customers":
		rows, err := a.reports.TopCustomersBySales(ctx, intArg(args, "limit", 5), strArg(args, "start_date"), strArg(args, "end_date"))
		if err != nil {
			return errResponse(call.Name, err), nil
		}
		return jsonResponse(call.Name, "customers", rows), nil

	case "top_products":
		rows, err := a.reports.TopProductsByQuantity(ctx, intArg(args, "limit", 5), strArg(args, "start_date"), strArg(args, "end_date"))
		if err != nil {
			return errResponse(call.Name, err), nil
		}
		return jsonResponse(call.Name, "products", rows), nil

	case "check_inventory":
		products, err := a.catalog.ListProducts(ctx)
		if err != nil {
			return errResponse(call.Name, err), nil
		}
		type inventoryRow struct {
			ID    uint   `json:"id"`
			Name  string `json:"name"`
			Stock int    `json:"stock"`
			Price string `json:"price"`
		}
		list := make([]inventoryRow, 0, len(products))
		for _, p := range products {
			list = append(list, inventoryRow{ID: p.ID, Name: p.Name, Stock: p.Stock, Price: p.SellingPrice.String()})
		}
		return jsonResponse(call.Name, "inventory", list), nil
	}

	return genai.FunctionResponse{
		Name:     call.Name,
		Response: map[string]interface{}{"error": "unknown tool"},
	}, nil
}

func firstFunctionCall(resp *genai.GenerateContentResponse) (genai.FunctionCall, bool) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return genai.FunctionCall{}, false
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			return funcCall, true
		}
	}
	return genai.FunctionCall{}, false
}

func textResponse(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I completed the action."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}

func jsonResponse(name, key string, v interface{}) genai.FunctionResponse {
	jsonBytes, _ := json.Marshal(v)
	return genai.FunctionResponse{
		Name:     name,
		Response: map[string]interface{}{key: string(jsonBytes)},
	}
}

func errResponse(name string, err error) genai.FunctionResponse {
	return genai.FunctionResponse{
		Name:     name,
		Response: map[string]interface{}{"error": err.Error()},
	}
}

func strArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]interface{}, key string, fallback int) int {
	if v, ok := args[key].(float64); ok && v > 0 {
		return int(v)
	}
	return fallback
}
