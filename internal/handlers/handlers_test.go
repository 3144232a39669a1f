package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nahidhasan98/git-diff-server/internal/dispatch"
	"github.com/nahidhasan98/git-diff-server/internal/gitdiff"
	"github.com/nahidhasan98/git-diff-server/internal/logger"
	"github.com/nahidhasan98/git-diff-server/internal/runner"
)

const stagedDiff = "diff --git a/x b/x\n+hello\n"

type fixture struct {
	handler  *Handler
	runner   *runner.MockRunner
	tempRoot string
	uiPath   string
}

// newFixture wires a real dispatcher and git differ to a spy runner.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	m := runner.NewMockRunner()
	m.OnCommand("git", "--no-pager", "diff", "staging").Return(stagedDiff, nil)

	tempRoot := t.TempDir()
	d := dispatch.New(
		dispatch.NewCatalog("/scripts"),
		gitdiff.New(m),
		m,
		logger.Nop(),
		dispatch.WithTempRoot(tempRoot),
	)

	uiPath := filepath.Join(t.TempDir(), "git_diff_ui.html")
	return &fixture{
		handler:  New(d, logger.Nop(), uiPath),
		runner:   m,
		tempRoot: tempRoot,
		uiPath:   uiPath,
	}
}

func (f *fixture) post(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	f.handler.Generate(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
	return rec, decoded
}

func TestGenerate_DefaultModelScenario(t *testing.T) {
	f := newFixture(t)
	f.runner.OnCommand("/scripts/git_diff_to_gemini.sh").Return("thinking...\nfix: add hello line\n", nil)

	rec, body := f.post(t, `{}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%v)", rec.Code, body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	want := map[string]interface{}{
		"diff":    stagedDiff,
		"message": "fix: add hello line",
		"model":   "gemini",
	}
	if len(body) != len(want) {
		t.Errorf("body has keys %v, want exactly diff, message, model", body)
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %q, want %q", k, body[k], v)
		}
	}
}

func TestGenerate_EmptyBodyUsesDefault(t *testing.T) {
	f := newFixture(t)
	f.runner.OnCommand("/scripts/git_diff_to_gemini.sh").Return("msg\n", nil)

	rec, body := f.post(t, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%v)", rec.Code, body)
	}
	if body["model"] != "gemini" {
		t.Errorf("model = %v, want gemini", body["model"])
	}
}

func TestGenerate_EachModel(t *testing.T) {
	for model, script := range dispatch.DefaultScripts {
		t.Run(model, func(t *testing.T) {
			f := newFixture(t)
			f.runner.OnCommand(filepath.Join("/scripts", script)).Return("feat: "+model+"\n", nil)

			rec, body := f.post(t, `{"model":"`+model+`"}`)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d (%v)", rec.Code, body)
			}
			if body["message"] != "feat: "+model {
				t.Errorf("message = %v", body["message"])
			}
			if body["model"] != model {
				t.Errorf("model = %v", body["model"])
			}
			if n := f.runner.CallCount(); n != 2 {
				t.Errorf("CallCount = %d, want 2 (git + script)", n)
			}
		})
	}
}

func TestGenerate_InvalidModelSpawnsNothing(t *testing.T) {
	for _, body := range []string{`{"model":"bogus"}`, `{"model":""}`} {
		t.Run(body, func(t *testing.T) {
			f := newFixture(t)

			rec, resp := f.post(t, body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp["error"] != "Invalid model specified" {
				t.Errorf("error = %v", resp["error"])
			}
			if f.runner.CallCount() != 0 {
				t.Errorf("%d processes spawned, want 0", f.runner.CallCount())
			}
		})
	}
}

func TestGenerate_ScriptFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.OnCommand("/scripts/git_diff_to_gemini.sh").Respond(runner.MockResponse{
		Stderr: "API key missing",
		Err:    &runner.ExitError{Name: "git_diff_to_gemini.sh", ExitCode: 1, Stderr: "API key missing"},
	})

	rec, body := f.post(t, `{"model":"gemini"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body["error"] != "Error executing script: API key missing" {
		t.Errorf("error = %q", body["error"])
	}
	if body["code"] != "SCRIPT_FAILED" {
		t.Errorf("code = %v", body["code"])
	}
	assertEmpty(t, f.tempRoot)
}

func TestGenerate_GitFailure(t *testing.T) {
	f := newFixture(t)
	stderr := "fatal: ambiguous argument 'staging': unknown revision or path not in the working tree.\n"
	f.runner.OnCommand("git", "--no-pager", "diff", "staging").Respond(runner.MockResponse{
		Stderr: stderr,
		Err:    &runner.ExitError{Name: "git", ExitCode: 128, Stderr: stderr},
	})

	rec, body := f.post(t, `{"model":"groq"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body["error"] != "Error executing script: "+stderr {
		t.Errorf("error = %q", body["error"])
	}
	if f.runner.CallCount() != 1 {
		t.Errorf("CallCount = %d, want only the git call", f.runner.CallCount())
	}
}

func TestGenerate_InternalFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.OnCommand("/scripts/git_diff_to_deepseek.sh").Return("",
		errors.New("fork/exec /scripts/git_diff_to_deepseek.sh: no such file or directory"))

	rec, body := f.post(t, `{"model":"deepseek"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body["error"] != "fork/exec /scripts/git_diff_to_deepseek.sh: no such file or directory" {
		t.Errorf("error = %q", body["error"])
	}
	if body["code"] != "INTERNAL_ERROR" {
		t.Errorf("code = %v", body["code"])
	}
	assertEmpty(t, f.tempRoot)
}

func TestGenerate_EmptyOutputAndEmptyDiff(t *testing.T) {
	f := newFixture(t)
	f.runner.OnCommand("git", "--no-pager", "diff", "staging").Return("", nil)
	f.runner.OnCommand("/scripts/git_diff_to_gpt4.sh").Return("", nil)

	rec, body := f.post(t, `{"model":"gpt4"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	if body["diff"] != "" {
		t.Errorf("diff = %q, want empty", body["diff"])
	}
	if body["message"] != "" {
		t.Errorf("message = %q, want empty", body["message"])
	}
}

func TestGenerate_MalformedBody(t *testing.T) {
	f := newFixture(t)

	rec, body := f.post(t, `{"model":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["code"] != "INVALID_REQUEST" {
		t.Errorf("code = %v", body["code"])
	}
	if f.runner.CallCount() != 0 {
		t.Error("no process should run for a malformed body")
	}
}

func TestGenerate_NonStringModel(t *testing.T) {
	for _, body := range []string{`{"model":5}`, `{"model":true}`, `{"model":["gemini"]}`, `{"model":{}}`} {
		t.Run(body, func(t *testing.T) {
			f := newFixture(t)

			rec, resp := f.post(t, body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp["error"] != "Invalid model specified" {
				t.Errorf("error = %v, want %q", resp["error"], "Invalid model specified")
			}
			if f.runner.CallCount() != 0 {
				t.Errorf("CallCount = %d, want 0", f.runner.CallCount())
			}
		})
	}
}

func TestGenerate_RejectsFormBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("model=gpt4"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Generate(rec, httptest.NewRequest(http.MethodGet, "/api/generate", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("Allow = %q", allow)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown model", dispatch.ErrUnknownModel, http.StatusBadRequest, "INVALID_MODEL"},
		{"exit", &runner.ExitError{Stderr: "x"}, http.StatusInternalServerError, "SCRIPT_FAILED"},
		{"timeout", dispatch.ErrTimeout, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"canceled", context.Canceled, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := classifyError(tt.err)
			if appErr.StatusCode != tt.status || string(appErr.Code) != tt.code {
				t.Errorf("got %d %s, want %d %s", appErr.StatusCode, appErr.Code, tt.status, tt.code)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(f.uiPath, []byte("<html>commit ui</html>"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rec := httptest.NewRecorder()
	f.handler.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "commit ui") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestIndex_Missing(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestIndex_OtherPath(t *testing.T) {
	f := newFixture(t)
	os.WriteFile(f.uiPath, []byte("<html></html>"), 0o644)

	rec := httptest.NewRecorder()
	f.handler.Index(rec, httptest.NewRequest(http.MethodGet, "/secrets.txt", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("got %d %v", rec.Code, body)
	}
}

func TestListModels(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ListModels(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))

	var body struct {
		Models  []string `json:"models"`
		Default string   `json:"default"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if strings.Join(body.Models, ",") != "gpt4,groq,deepseek,gemini" {
		t.Errorf("models = %v", body.Models)
	}
	if body.Default != "gemini" {
		t.Errorf("default = %q", body.Default)
	}
}

func assertEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temporary files left behind in %s", dir)
	}
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()

	f.handler.writeJSON(rec, map[string]interface{}{"bad": make(chan int)}, http.StatusOK)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %q", body["error"])
	}
}
