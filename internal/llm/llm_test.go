package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		found bool
	}{
		{"bare", `[{"text":"a"}]`, `[{"text":"a"}]`, true},
		{"fenced", "```json\n[\"x\", \"y\"]\n```", `["x", "y"]`, true},
		{"prose_around", `Sure! Here you go: [1,2] hope it helps`, `[1,2]`, true},
		{"empty_array", `[]`, `[]`, true},
		{"none", `No reminders found.`, ``, false},
		{"multiline", "[\n {\"text\": \"Pay rent\"}\n]", "[\n {\"text\": \"Pay rent\"}\n]", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONArray(tt.in)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Work", FirstLine("\n  Work  \nbecause it mentions a meeting"))
	assert.Equal(t, "", FirstLine("  \n \t"))
}

func TestOllamaClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2:latest", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		assert.False(t, req.Stream)
		_ = json.NewEncoder(w).Encode(Response{Response: "  Work \n"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/generate", "llama3.2:latest", 5*time.Second)
	out, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Work", out)
	assert.Equal(t, "ollama", c.Name())
}

func TestOllamaClient_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		_, err := NewClient(srv.URL, "m", time.Second).Generate(context.Background(), "p")
		assert.ErrorContains(t, err, "ollama returned status")
	})

	t.Run("bad_json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "{nope")
		}))
		defer srv.Close()
		_, err := NewClient(srv.URL, "m", time.Second).Generate(context.Background(), "p")
		assert.ErrorContains(t, err, "decode ollama response")
	})

	t.Run("empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"response":"   "}`)
		}))
		defer srv.Close()
		_, err := NewClient(srv.URL, "m", time.Second).Generate(context.Background(), "p")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"response":"late"}`)
		}))
		defer srv.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient(srv.URL, "m", time.Second).Generate(ctx, "p")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOllamaClient_IsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.True(t, NewClient(srv.URL+"/api/generate", "m", time.Second).IsAvailable(context.Background()))
	assert.False(t, NewClient("http://127.0.0.1:1/api/generate", "m", time.Second).IsAvailable(context.Background()))
}

func newGeminiTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1beta/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req, "contents")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
}

func TestGeminiClient_Generate(t *testing.T) {
	srv := newGeminiTestServer(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Fin"},{"text":"ance\n"}]}}]}`)
	defer srv.Close()

	g, err := NewGemini(context.Background(), "test-key", "gemini-2.5-flash", srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "categorize this")
	require.NoError(t, err)
	assert.Equal(t, "Finance", out)
	assert.Equal(t, "gemini", g.Name())
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	srv := newGeminiTestServer(t, http.StatusOK, `{"candidates":[]}`)
	defer srv.Close()

	g, err := NewGemini(context.Background(), "test-key", "", srv.URL+"/", time.Second)
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiClient_BlockedPrompt(t *testing.T) {
	srv := newGeminiTestServer(t, http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	defer srv.Close()

	g, err := NewGemini(context.Background(), "test-key", "models/gemini-2.5-flash", srv.URL+"/", time.Second)
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "SAFETY")
}

func TestGeminiClient_HTTPError(t *testing.T) {
	srv := newGeminiTestServer(t, http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`)
	defer srv.Close()

	g, err := NewGemini(context.Background(), "test-key", "gemini-2.5-flash", srv.URL+"/", time.Second)
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "gemini generateContent")
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), " ", "m", "", time.Second)
	assert.Error(t, err)
}

type fakeInvoker struct {
	body  []byte
	err   error
	input *bedrockruntime.InvokeModelInput
}

func (f *fakeInvoker) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func TestBedrockClient_Generate(t *testing.T) {
	inv := &fakeInvoker{body: []byte(`{"content":[{"type":"text","text":" Urgent "}]}`)}
	b := &BedrockClient{Model: "anthropic.claude-3-haiku-20240307-v1", Timeout: time.Second, svc: inv}

	out, err := b.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Urgent", out)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", *inv.input.ModelId)
}

func TestBedrockClient_UnsupportedFamily(t *testing.T) {
	b := &BedrockClient{Model: "meta.llama3", svc: &fakeInvoker{}}
	_, err := b.Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "unsupported Bedrock model family")
}

func TestBedrockClient_APIErrorHint(t *testing.T) {
	inv := &fakeInvoker{err: &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no"}}
	b := &BedrockClient{Model: "anthropic.claude-v2:1", svc: inv}

	_, err := b.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hint: the AWS identity has no access")
	var apiErr smithy.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestNormalizeBedrockModelID(t *testing.T) {
	assert.Equal(t, "anthropic.claude:0", normalizeBedrockModelID("anthropic.claude"))
	assert.Equal(t, "anthropic.claude:1", normalizeBedrockModelID("anthropic.claude:1"))
	arn := "arn:aws:bedrock:us-east-1::inference-profile/us.anthropic.claude"
	assert.Equal(t, arn, normalizeBedrockModelID(arn))
}

func TestParseAnthropicBody(t *testing.T) {
	out, err := parseAnthropicBody([]byte(`{"content":"oops","outputText":" alt "}`))
	require.NoError(t, err)
	assert.Equal(t, "alt", out)

	_, err = parseAnthropicBody([]byte(`{"content":[]}`))
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = parseAnthropicBody([]byte(`not json`))
	assert.ErrorContains(t, err, "failed to decode")
}

func TestNewProviderFromConfig(t *testing.T) {
	ctx := context.Background()

	p, err := NewProviderFromConfig(ctx, Options{Provider: "gemini"})
	require.NoError(t, err)
	assert.Nil(t, p, "missing key means no provider")

	p, err = NewProviderFromConfig(ctx, Options{Provider: "ollama", Endpoint: "http://localhost:11434/api/generate", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	p, err = NewProviderFromConfig(ctx, Options{Provider: "gemini", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	_, err = NewProviderFromConfig(ctx, Options{Provider: "openai"})
	assert.ErrorContains(t, err, "unknown llm provider")
}
