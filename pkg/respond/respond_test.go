package respond

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salescope/salescope/pkg/llm"
	"github.com/salescope/salescope/pkg/prompts"
	"github.com/salescope/salescope/pkg/table"
)

// scriptedClient returns canned responses in order and records each call.
type scriptedClient struct {
	responses []string
	err       error

	systems  []string
	messages [][]llm.Message
}

func (c *scriptedClient) Complete(ctx context.Context, system string, msgs []llm.Message) (string, error) {
	c.systems = append(c.systems, system)
	c.messages = append(c.messages, msgs)
	if c.err != nil {
		return "", c.err
	}
	i := len(c.systems) - 1
	if i >= len(c.responses) {
		return "", errors.New("scripted client exhausted")
	}
	return c.responses[i], nil
}

func newTestResponder(t *testing.T, client llm.Client) *Responder {
	t.Helper()
	p, err := prompts.Load()
	require.NoError(t, err)
	r, err := New(Config{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		LLM:     client,
		Prompts: p,
	})
	require.NoError(t, err)
	return r
}

func TestGenerateQuery(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"```json\n{\"sql_query\": \"```sql\\nSELECT \\\"sales\\\" FROM df_data;\\n```\", \"chart_type\": \"bar\", \"x_axis\": \"month\", \"y_axis\": \"sales\", \"title\": \"Monthly sales\", \"explanation\": \"bar fits categories\"}\n```",
	}}
	r := newTestResponder(t, client)

	history := []llm.Message{llm.UserMessage("monthly sales by month")}
	resp, err := r.GenerateQuery(context.Background(), history, "")
	require.NoError(t, err)
	require.Equal(t, `SELECT "sales" FROM df_data`, resp.SQLQuery)
	require.Equal(t, "bar", resp.Type)
	require.Equal(t, []string{"sales"}, []string(resp.YAxis))
}

func TestGenerateQueryFrameworkTurn(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"sql_query": "SELECT 1", "chart_type": "table", "explanation": "x"}`,
	}}
	r := newTestResponder(t, client)

	history := []llm.Message{llm.UserMessage("q")}
	_, err := r.GenerateQuery(context.Background(), history, prompts.FrameworkSWOT)
	require.NoError(t, err)

	msgs := client.messages[0]
	require.Len(t, msgs, 2)
	require.Equal(t, "user", msgs[0].Role)
	require.Contains(t, msgs[0].Content, "SWOT")
	require.Equal(t, "q", msgs[1].Content)
}

func TestGenerateQueryTrailingGarbage(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"sql_query": "SELECT 1", "chart_type": "table", "explanation": "x"} I hope this helps!`,
	}}
	r := newTestResponder(t, client)

	resp, err := r.GenerateQuery(context.Background(), []llm.Message{llm.UserMessage("q")}, "")
	require.NoError(t, err)
	require.Equal(t, "SELECT 1", resp.SQLQuery)
}

func TestGenerateQueryVague(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"sql_query": null, "chart_type": "table", "explanation": "too vague",
		  "recommended_analyses": [{"title": "Trend", "description": "d", "example_query": "monthly sales"}]}`,
	}}
	r := newTestResponder(t, client)

	resp, err := r.GenerateQuery(context.Background(), []llm.Message{llm.UserMessage("help")}, "")
	require.NoError(t, err)
	require.Empty(t, resp.SQLQuery)
	require.Len(t, resp.RecommendedAnalyses, 1)
	require.Equal(t, "Trend", resp.RecommendedAnalyses[0].Title)
}

func TestGenerateQueryIncomplete(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"chart_type": "table", "explanation": "nothing to do"}`,
	}}
	r := newTestResponder(t, client)

	_, err := r.GenerateQuery(context.Background(), []llm.Message{llm.UserMessage("q")}, "")
	require.ErrorIs(t, err, ErrIncompleteResponse)
}

func TestGenerateQueryMalformed(t *testing.T) {
	client := &scriptedClient{responses: []string{"Sure! The answer is 42."}}
	r := newTestResponder(t, client)

	_, err := r.GenerateQuery(context.Background(), []llm.Message{llm.UserMessage("q")}, "")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerateQueryTransportError(t *testing.T) {
	client := &scriptedClient{err: llm.ErrTransport}
	r := newTestResponder(t, client)

	_, err := r.GenerateQuery(context.Background(), []llm.Message{llm.UserMessage("q")}, "")
	require.ErrorIs(t, err, llm.ErrTransport)
}

func TestAnalyzeResult(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"analysis_text": "Sales grew steadily.", "chart_type": "line",
		  "x_axis": "month", "y_axis": ["sales"], "title": "Growth", "explanation": "trend"}`,
	}}
	r := newTestResponder(t, client)

	tbl := table.New([]string{"month", "sales"}, []table.Row{
		{"month": "2024-01", "sales": 100.0},
	})
	resp, err := r.AnalyzeResult(context.Background(), tbl, "how are sales trending", "")
	require.NoError(t, err)
	require.Equal(t, "Sales grew steadily.", resp.AnalysisText)
	require.Equal(t, "line", resp.Type)

	// The composite prompt carries the question and the rendered data.
	require.Contains(t, client.messages[0][0].Content, "how are sales trending")
	require.Contains(t, client.messages[0][0].Content, "2024-01")
}

func TestAnalyzeResultFlattensWrapper(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"analysis_text": "t", "title": "Kept", "explanation": "top",
		  "chart_suggestion": {"chart_type": "pie", "category_column": "channel",
		                       "value_column": "sales", "title": "Clobbered"}}`,
	}}
	r := newTestResponder(t, client)

	tbl := table.New([]string{"channel", "sales"}, []table.Row{{"channel": "web", "sales": 1.0}})
	resp, err := r.AnalyzeResult(context.Background(), tbl, "q", "")
	require.NoError(t, err)
	require.Equal(t, "pie", resp.Type)
	require.Equal(t, "channel", resp.CategoryColumn)
	require.Equal(t, "Kept", resp.Title)
}

func TestAnalyzeResultMissingKey(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"chart_type": "table", "title": "t", "explanation": "e"}`,
	}}
	r := newTestResponder(t, client)

	tbl := table.New([]string{"a"}, []table.Row{{"a": 1.0}})
	_, err := r.AnalyzeResult(context.Background(), tbl, "q", "")
	require.ErrorIs(t, err, ErrIncompleteResponse)
	require.Contains(t, err.Error(), "analysis_text")
}

func TestPlanAnalysis(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"{\"plan\": [" +
			"{\"purpose\": \"overall trend\", \"sql\": \"```sql\\nSELECT 1\\n```\"}," +
			`{"purpose": "by channel", "sql": "SELECT 2"}]}`,
	}}
	r := newTestResponder(t, client)

	steps, err := r.PlanAnalysis(context.Background(), "why did sales drop", "| month | sales |")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.Equal(t, "SELECT 1", steps[0].SQL)
	require.Equal(t, "by channel", steps[1].Purpose)

	require.Contains(t, client.systems[0], "why did sales drop")
	require.Contains(t, client.systems[0], "| month | sales |")
}

func TestPlanAnalysisCapped(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"plan": [`)
	for i := 0; i < 7; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"purpose": "p", "sql": "SELECT 1"}`)
	}
	sb.WriteString(`]}`)
	client := &scriptedClient{responses: []string{sb.String()}}
	r := newTestResponder(t, client)

	steps, err := r.PlanAnalysis(context.Background(), "q", "s")
	require.NoError(t, err)
	require.Len(t, steps, maxPlanSteps)
}

func TestPlanAnalysisEmpty(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"plan": []}`}}
	r := newTestResponder(t, client)

	_, err := r.PlanAnalysis(context.Background(), "q", "s")
	require.ErrorIs(t, err, ErrIncompleteResponse)
}

func TestSynthesizeReport(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"report_title": "Q3 Sales Review", "executive_summary": "Summary.",
		  "chapters": [{"title": "Trend", "content": "c", "chart_type": "line",
		                "chart_params": {"data_key": "evidence_1", "x_axis": "month", "y_axis": "sales"}}],
		  "recommendations": ["do more"]}`,
	}}
	r := newTestResponder(t, client)

	evidence := []EvidenceInput{
		{Key: "evidence_1", Purpose: "overall trend", Markdown: "| month | sales |"},
	}
	report, err := r.SynthesizeReport(context.Background(), "review q3", evidence, []string{"month", "sales"})
	require.NoError(t, err)
	require.Equal(t, "Q3 Sales Review", report.Title)
	require.Len(t, report.Chapters, 1)
	require.Equal(t, "evidence_1", report.Chapters[0].ChartParams.DataKey)
	require.Equal(t, []string{"sales"}, []string(report.Chapters[0].ChartParams.YAxis))

	require.Contains(t, client.systems[0], "evidence_1")
	require.Contains(t, client.systems[0], "overall trend")
	require.Contains(t, client.systems[0], "month, sales")
}

func TestSynthesizeReportEmpty(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"chapters": []}`}}
	r := newTestResponder(t, client)

	_, err := r.SynthesizeReport(context.Background(), "q", nil, nil)
	require.ErrorIs(t, err, ErrIncompleteResponse)
}

func TestStripSQLFences(t *testing.T) {
	require.Equal(t, "SELECT 1", stripSQLFences("```sql\nSELECT 1;\n```"))
	require.Equal(t, "SELECT 1", stripSQLFences("SELECT 1"))
	require.Equal(t, "", stripSQLFences(""))
}
