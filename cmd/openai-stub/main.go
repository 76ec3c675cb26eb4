// Command openai-stub serves canned OpenAI-compatible responses shaped like
// termforge's article, summary and quiz requests, for offline runs.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newHandler(model)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

func newHandler(model string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) < 2 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		content := reply(req)
		log.Debug().Str("model", req.Model).Int("bytes", len(content)).Msg("completion")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	return mux
}

// reply picks a canned answer by request shape. JSON requests carry their
// schema in the system message.
func reply(req chatRequest) string {
	system := req.Messages[0].Content
	user := req.Messages[len(req.Messages)-1].Content
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
		return "A short summary of the article for quick review."
	}
	if strings.Contains(system, `"quizzes"`) {
		b, _ := json.Marshal(map[string]any{
			"quizzes": []map[string]any{{
				"question":    "Which statement matches the article?",
				"options":     []string{"The first option", "The second option", "The third option", "The fourth option"},
				"answer":      0,
				"explanation": "The article states it directly.",
			}},
		})
		return string(b)
	}
	title := "Generated article"
	for _, line := range strings.Split(user, "\n") {
		if term, ok := strings.CutPrefix(strings.TrimSpace(line), "Term: "); ok && term != "" {
			title = "About " + term
			break
		}
	}
	b, _ := json.Marshal(map[string]string{
		"title":   title,
		"content": "This article was produced by the local stub. It has enough text to be stored and rendered.",
	})
	return string(b)
}
