package adapter

import (
	"encoding/json"
	"errors"
)

// Workflow services come in a few response dialects. These adapters reshape
// whichever one we're pointed at into a plain answer string - field
// remapping only, no logic.

type langflowResponse struct {
	Outputs []struct {
		Outputs []struct {
			Artifacts struct {
				Message string `json:"message"`
			} `json:"artifacts"`
		} `json:"outputs"`
	} `json:"outputs"`
}

type simpleResponse struct {
	Result string `json:"result"`
}

type openAIStyleResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseWorkflowAnswer tries the known response shapes in order of likelihood
// and returns the first non-empty answer.
func ParseWorkflowAnswer(raw []byte) (string, error) {
	var lf langflowResponse
	if err := json.Unmarshal(raw, &lf); err == nil {
		if len(lf.Outputs) > 0 && len(lf.Outputs[0].Outputs) > 0 {
			if msg := lf.Outputs[0].Outputs[0].Artifacts.Message; msg != "" {
				return msg, nil
			}
		}
	}

	var simple simpleResponse
	if err := json.Unmarshal(raw, &simple); err == nil && simple.Result != "" {
		return simple.Result, nil
	}

	var oa openAIStyleResponse
	if err := json.Unmarshal(raw, &oa); err == nil && len(oa.Choices) > 0 {
		if msg := oa.Choices[0].Message.Content; msg != "" {
			return msg, nil
		}
	}

	return "", errors.New("no answer found in workflow response")
}
