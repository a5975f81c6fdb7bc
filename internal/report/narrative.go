package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// TextGenerator turns a prompt into prose
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NoopText is used when no text generation backend is configured
type NoopText struct{}

func (NoopText) Generate(context.Context, string) (string, error) {
	return "", nil
}

// BuildPrompt renders the executive summary request for a customer
func BuildPrompt(brand, customerName string, s Stats) string {
	months := strings.Join(lo.Map(s.Months, func(m MonthCount, _ int) string {
		return fmt.Sprintf("%s:%d", m.Month, m.Count)
	}), ", ")
	var b strings.Builder
	fmt.Fprintf(&b, "You are a business analyst specializing in retail toy sales for %s.\n", brand)
	fmt.Fprintf(&b, "Write a concise 4-5 sentence executive summary for customer %s:\n", customerName)
	fmt.Fprintf(&b, "- Total orders: %d\n", s.TotalOrders)
	fmt.Fprintf(&b, "- Total revenue: $%s\n", s.TotalRevenue)
	fmt.Fprintf(&b, "- Average order value: $%s, median: $%s\n", s.AverageOrder, s.MedianOrder)
	fmt.Fprintf(&b, "- Status breakdown: %s\n", formatRanked(s.TopStatuses))
	fmt.Fprintf(&b, "- Monthly order counts (last %d months): %s\n", HistogramMonths, months)
	fmt.Fprintf(&b, "- Top products: %s\n", formatRanked(s.TopProducts))
	fmt.Fprintf(&b, "- Top categories: %s\n", formatRanked(s.TopCategories))
	fmt.Fprintf(&b, "- Peak purchase month: %s\n", s.TopMonth)
	b.WriteString("Highlight any interesting patterns in their buying behavior.\n")
	return b.String()
}

// narrative never fails: backend errors are logged and yield an empty text
func narrative(ctx context.Context, gen TextGenerator, prompt string) string {
	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		zap.S().Warnf("report narrative unavailable: %v", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// OpenAIText calls an OpenAI compatible chat completions endpoint
type OpenAIText struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAIText) Generate(ctx context.Context, prompt string) (string, error) {
	var (
		resp chatResponse
		code int
	)
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	err := gout.POST(url).
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + c.APIKey}).
		SetJSON(chatRequest{
			Model:    c.Model,
			Messages: []chatMessage{{Role: "user", Content: prompt}},
		}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "chat completion request")
	}
	if code != 200 {
		msg := ""
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return "", errors.Errorf("chat completion status %d %s", code, msg)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
