package httpadapter

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

//go:embed web/index.html
var webFS embed.FS

var exampleQuestions = []string{
	"How is precision medicine applied to Lupus?",
	"Can you summarize systemic lupus erythematosus (SLE)?",
	"What are the common biomarkers for Lupus?",
	"What treatments are available for Lupus patients?",
}

const panePlaceholder = "*Submit a query to see results here*"

type pageView struct {
	Question          string
	TopK              int
	TopKOptions       []int
	Examples          []string
	VectorPane        string
	VectorCypherPane  string
	VectorStats       string
	VectorCypherStats string
}

func parsePageTemplate() (*template.Template, error) {
	return template.ParseFS(webFS, "web/index.html")
}

func (rt *Router) indexPage(w http.ResponseWriter, r *http.Request) {
	view := rt.newPageView("", rt.cfg.RAGTopK)
	view.VectorPane = placeholderPane(domain.StrategyVector)
	view.VectorCypherPane = placeholderPane(domain.StrategyVectorCypher)
	rt.renderPage(w, r, view)
}

func (rt *Router) submitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCompareBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse form", err))
		return
	}

	question := r.PostFormValue("question")
	topK := rt.formTopK(r.PostFormValue("top_k"))

	result := rt.comparator.Compare(r.Context(), question, topK)
	view := rt.newPageView(question, topK)
	view.VectorPane, view.VectorCypherPane = result.Pair()
	view.VectorStats = paneStats(result.Vector)
	view.VectorCypherStats = paneStats(result.VectorCypher)
	rt.renderPage(w, r, view)
}

// formTopK falls back to the configured default for missing or out of range
// values; the select only offers valid ones.
func (rt *Router) formTopK(raw string) int {
	k, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || k < 1 || k > rt.cfg.RAGTopKMax {
		return rt.cfg.RAGTopK
	}
	return k
}

func (rt *Router) newPageView(question string, topK int) pageView {
	options := make([]int, 0, rt.cfg.RAGTopKMax)
	for k := 1; k <= rt.cfg.RAGTopKMax; k++ {
		options = append(options, k)
	}
	return pageView{
		Question:    question,
		TopK:        topK,
		TopKOptions: options,
		Examples:    exampleQuestions,
	}
}

func (rt *Router) renderPage(w http.ResponseWriter, r *http.Request, view pageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rt.page.Execute(w, view); err != nil {
		slog.Error("render_page_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

// paneStats is empty for blank questions and failed sides.
func paneStats(a domain.StrategyAnswer) string {
	if a.Failed() || a.Answer == "" {
		return ""
	}
	return fmt.Sprintf("context items: %d, grounding: %.2f, took %s",
		a.ContextSize, a.Grounding, a.Duration.Round(time.Millisecond))
}

func placeholderPane(strategy domain.Strategy) string {
	return "**" + strategy.Label() + ":**\n\n" + panePlaceholder
}
