package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperifyio/termforge/internal/store"
)

// Source reads a keyword's stored content.
type Source interface {
	Keyword(ctx context.Context, id int64) (store.Keyword, error)
	ListArticles(ctx context.Context, keywordID int64) ([]store.Article, error)
	ListQuizzes(ctx context.Context, keywordID int64) ([]store.Quiz, error)
}

// Bundle is everything generated for one keyword.
type Bundle struct {
	Keyword  store.Keyword
	Articles []store.Article
	Quizzes  []store.Quiz
}

// Load collects a keyword with its articles and quizzes.
func Load(ctx context.Context, src Source, keywordID int64) (Bundle, error) {
	kw, err := src.Keyword(ctx, keywordID)
	if err != nil {
		return Bundle{}, err
	}
	articles, err := src.ListArticles(ctx, keywordID)
	if err != nil {
		return Bundle{}, fmt.Errorf("list articles: %w", err)
	}
	quizzes, err := src.ListQuizzes(ctx, keywordID)
	if err != nil {
		return Bundle{}, fmt.Errorf("list quizzes: %w", err)
	}
	return Bundle{Keyword: kw, Articles: articles, Quizzes: quizzes}, nil
}

// Markdown renders the bundle as one document: a title block, then each
// article with its summary, body and quiz.
func Markdown(b Bundle) string {
	byArticle := make(map[int64][]store.Quiz, len(b.Articles))
	for _, q := range b.Quizzes {
		byArticle[q.ArticleID] = append(byArticle[q.ArticleID], q)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", strings.TrimSpace(b.Keyword.Name))
	if d := strings.TrimSpace(b.Keyword.Description); d != "" {
		sb.WriteString(d)
		sb.WriteString("\n\n")
	}
	if b.Keyword.PublishedDate != nil {
		fmt.Fprintf(&sb, "Published: %s\n\n", b.Keyword.PublishedDate.Format(store.DateLayout))
	}

	for _, a := range b.Articles {
		fmt.Fprintf(&sb, "## %s\n\n", strings.TrimSpace(a.Title))
		if a.Facet != "" {
			fmt.Fprintf(&sb, "_%s_\n\n", a.Facet)
		}
		if s := strings.TrimSpace(a.Summary); s != "" {
			fmt.Fprintf(&sb, "> %s\n\n", s)
		}
		sb.WriteString(strings.TrimSpace(a.Content))
		sb.WriteString("\n\n")

		quizzes := byArticle[a.ID]
		if len(quizzes) == 0 {
			continue
		}
		sb.WriteString("### Quiz\n\n")
		for i, q := range quizzes {
			writeQuiz(&sb, i+1, q)
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeQuiz(sb *strings.Builder, n int, q store.Quiz) {
	fmt.Fprintf(sb, "%d. %s\n", n, strings.TrimSpace(q.Question))
	for i, opt := range q.Options {
		fmt.Fprintf(sb, "   - %c. %s\n", optionLabel(i), opt)
	}
	if q.Answer >= 0 && q.Answer < len(q.Options) {
		fmt.Fprintf(sb, "\n   Answer: %c. %s\n", optionLabel(q.Answer), q.Options[q.Answer])
	}
	if e := strings.TrimSpace(q.Explanation); e != "" {
		fmt.Fprintf(sb, "   %s\n", e)
	}
	sb.WriteString("\n")
}

func optionLabel(i int) rune { return rune('A' + i) }
