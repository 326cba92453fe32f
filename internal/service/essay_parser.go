package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"survey-grader/internal/domain"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// parseEvaluation extracts an essay evaluation from an LLM response. Three
// attempts are made in order: the whole response as JSON, the contents of
// a ```json fenced block, and the widest { ... } span. Models wrap their
// output in prose or markdown often enough that all three tiers see use.
func parseEvaluation(response string) (*domain.EssayEvaluation, error) {
	trimmed := strings.TrimSpace(response)

	var eval domain.EssayEvaluation
	if err := json.Unmarshal([]byte(trimmed), &eval); err == nil {
		return &eval, nil
	}

	if m := fencedJSONPattern.FindStringSubmatch(trimmed); m != nil {
		var fenced domain.EssayEvaluation
		if err := json.Unmarshal([]byte(m[1]), &fenced); err == nil {
			return &fenced, nil
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start != -1 && end > start {
		var span domain.EssayEvaluation
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &span); err == nil {
			return &span, nil
		}
	}

	return nil, fmt.Errorf("response contains no parsable evaluation JSON")
}
