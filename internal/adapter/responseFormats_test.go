package adapter

import "testing"

func TestParseWorkflowAnswer_LangflowShape(t *testing.T) {
	raw := []byte(`{"outputs":[{"outputs":[{"artifacts":{"message":"Returns take 60 days."}}]}]}`)

	answer, err := ParseWorkflowAnswer(raw)
	if err != nil {
		t.Fatalf("ParseWorkflowAnswer failed: %v", err)
	}
	if answer != "Returns take 60 days." {
		t.Errorf("answer = %q", answer)
	}
}

func TestParseWorkflowAnswer_SimpleShape(t *testing.T) {
	raw := []byte(`{"result":"Grooming is on aisle 4."}`)

	answer, err := ParseWorkflowAnswer(raw)
	if err != nil {
		t.Fatalf("ParseWorkflowAnswer failed: %v", err)
	}
	if answer != "Grooming is on aisle 4." {
		t.Errorf("answer = %q", answer)
	}
}

func TestParseWorkflowAnswer_OpenAIShape(t *testing.T) {
	raw := []byte(`{"choices":[{"message":{"content":"Check the price match policy."}}]}`)

	answer, err := ParseWorkflowAnswer(raw)
	if err != nil {
		t.Fatalf("ParseWorkflowAnswer failed: %v", err)
	}
	if answer != "Check the price match policy." {
		t.Errorf("answer = %q", answer)
	}
}

func TestParseWorkflowAnswer_UnknownShape(t *testing.T) {
	if _, err := ParseWorkflowAnswer([]byte(`{"something":"else"}`)); err == nil {
		t.Fatal("expected error for unknown response shape")
	}
	if _, err := ParseWorkflowAnswer([]byte(`not json at all`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestParseWorkflowAnswer_EmptyLangflowFallsThrough(t *testing.T) {
	// empty langflow message with a usable simple result alongside
	raw := []byte(`{"outputs":[{"outputs":[{"artifacts":{"message":""}}]}],"result":"fallback"}`)

	answer, err := ParseWorkflowAnswer(raw)
	if err != nil {
		t.Fatalf("ParseWorkflowAnswer failed: %v", err)
	}
	if answer != "fallback" {
		t.Errorf("answer = %q", answer)
	}
}
