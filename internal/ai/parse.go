package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type rawAssessment struct {
	Fit     bool    `mapstructure:"fit"`
	Score   float64 `mapstructure:"score"`
	Reason  string  `mapstructure:"reason"`
	Message string  `mapstructure:"message"`
}

// parseResponse decodes the model answer. Types are coerced loosely:
// "0.8" and "yes" are accepted for score and fit.
func parseResponse(raw string) (*Assessment, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	var out rawAssessment
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       yesNoHook,
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}

	return &Assessment{
		Fit:     out.Fit,
		Score:   normalizeScore(out.Score),
		Reason:  strings.TrimSpace(out.Reason),
		Message: strings.TrimSpace(out.Message),
	}, nil
}

// extractJSON strips markdown fences and any prose around the outermost object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}

	return strings.TrimSpace(raw)
}

func yesNoHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}

	switch strings.ToLower(strings.TrimSpace(data.(string))) {
	case "yes", "y", "true", "1":
		return true, nil
	default:
		return false, nil
	}
}

// normalizeScore maps percentages onto [0, 1] and clamps the rest.
func normalizeScore(score float64) float64 {
	switch {
	case math.IsNaN(score) || score < 0:
		return 0
	case score > 1 && score <= 100:
		return score / 100
	case score > 100:
		return 1
	default:
		return score
	}
}
