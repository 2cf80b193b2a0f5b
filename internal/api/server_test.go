package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	charmlog "github.com/charmbracelet/log"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(charmlog.New(io.Discard))
	server := httptest.NewServer(s.Router())
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, url string, body any) (*http.Response, []byte) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, out
}

func TestHealthz(t *testing.T) {
	server := testServer(t)
	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestConvertLine(t *testing.T) {
	server := testServer(t)
	resp, body := post(t, server.URL+"/v1/convert/line", map[string]string{
		"line": "-e git+https://example.com/repo.git@v1#egg=mypkg",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var out struct {
		Name  string         `json:"name"`
		Value map[string]any `json:"value"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Name != "mypkg" {
		t.Errorf("name = %q", out.Name)
	}
	if out.Value["git"] != "https://example.com/repo.git" || out.Value["editable"] != true || out.Value["ref"] != "v1" {
		t.Errorf("value = %v", out.Value)
	}
}

func TestConvertLineMissingEgg(t *testing.T) {
	server := testServer(t)
	resp, body := post(t, server.URL+"/v1/convert/line", map[string]string{
		"line": "git+https://example.com/repo.git",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Code != "MISSING_EGG_FRAGMENT" {
		t.Errorf("code = %q", out.Code)
	}
}

func TestConvertRecord(t *testing.T) {
	server := testServer(t)
	resp, body := post(t, server.URL+"/v1/convert/record", map[string]any{
		"name": "requests",
		"value": map[string]any{
			"extras":  []string{"socks"},
			"version": ">=2.0",
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var out struct {
		Line string `json:"line"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Line != "requests[socks]>=2.0" {
		t.Errorf("line = %q", out.Line)
	}
}

func TestConvertRecordBareString(t *testing.T) {
	server := testServer(t)
	resp, body := post(t, server.URL+"/v1/convert/record", map[string]any{
		"name":  "requests",
		"value": "*",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Line string `json:"line"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Line != "requests" {
		t.Errorf("line = %q", out.Line)
	}
}

func TestConvertRecordRejectsMissingName(t *testing.T) {
	server := testServer(t)
	resp, _ := post(t, server.URL+"/v1/convert/record", map[string]any{"value": "*"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
