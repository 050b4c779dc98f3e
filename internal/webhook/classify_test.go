package webhook

import (
	"encoding/json"
	"testing"
)

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	body, err := decodePayload([]byte(raw))
	if err != nil {
		t.Fatalf("decodePayload(%q): %v", raw, err)
	}
	return body
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "instagram messaging",
			body: `{"object":"instagram","entry":[{"messaging":[{}]}]}`,
			want: "Instagram - Messages",
		},
		{
			name: "page comments change",
			body: `{"object":"page","entry":[{"changes":[{"field":"comments"}]}]}`,
			want: "Facebook Page - Comments",
		},
		{
			name: "instagram mentions change",
			body: `{"object":"instagram","entry":[{"id":"17841","time":1700000000,"changes":[{"field":"mentions","value":{}}]}]}`,
			want: "Instagram - Mentions",
		},
		{
			name: "title cases each word",
			body: `{"object":"instagram","entry":[{"changes":[{"field":"story_insights"}]}]}`,
			want: "Instagram - Story_Insights",
		},
		{
			name: "messaging wins over changes",
			body: `{"object":"instagram","entry":[{"messaging":[],"changes":[{"field":"comments"}]}]}`,
			want: "Instagram - Messages",
		},
		{
			name: "only first entry is inspected",
			body: `{"object":"page","entry":[{"id":"1"},{"messaging":[{}]}]}`,
			want: "Facebook Page",
		},
		{
			name: "empty changes",
			body: `{"object":"page","entry":[{"changes":[]}]}`,
			want: "Facebook Page",
		},
		{
			name: "change without field",
			body: `{"object":"page","entry":[{"changes":[{"value":1}]}]}`,
			want: "Facebook Page - ",
		},
		{
			name: "change that is not an object",
			body: `{"object":"page","entry":[{"changes":["comments"]}]}`,
			want: "Facebook Page",
		},
		{
			name: "field that is not a string",
			body: `{"object":"page","entry":[{"changes":[{"field":42}]}]}`,
			want: "Facebook Page - ",
		},
		{
			name: "empty entry list",
			body: `{"object":"instagram","entry":[]}`,
			want: "Instagram",
		},
		{
			name: "entry is not a list",
			body: `{"object":"instagram","entry":{"messaging":[]}}`,
			want: "Instagram",
		},
		{
			name: "unknown object",
			body: `{"object":"other"}`,
			want: "Unknown",
		},
		{
			name: "unknown object keeps suffix",
			body: `{"object":"whatsapp_business_account","entry":[{"changes":[{"field":"messages"}]}]}`,
			want: "Unknown - Messages",
		},
		{
			name: "object is not a string",
			body: `{"object":["instagram"]}`,
			want: "Unknown",
		},
		{
			name: "array body",
			body: `[{"object":"instagram"}]`,
			want: "Unknown",
		},
		{
			name: "string body",
			body: `"instagram"`,
			want: "Unknown",
		},
		{
			name: "null body",
			body: `null`,
			want: "Unknown",
		},
		{
			name: "empty object",
			body: `{}`,
			want: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(mustDecode(t, tt.body)); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify_PlainUnmarshal(t *testing.T) {
	// Bodies decoded without UseNumber classify the same way.
	var body any
	if err := json.Unmarshal([]byte(`{"object":"page","entry":[{"time":1.5,"changes":[{"field":"feed"}]}]}`), &body); err != nil {
		t.Fatal(err)
	}
	if got := Classify(body); got != "Facebook Page - Feed" {
		t.Errorf("Classify() = %q", got)
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"comments":       "Comments",
		"MENTIONS":       "Mentions",
		"story_insights": "Story_Insights",
		"live comments":  "Live Comments",
		"a1b":            "A1B",
	}
	for in, want := range tests {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
