package pipfile

import (
	"os"
	"strings"
	"testing"
)

func TestFromLineBare(t *testing.T) {
	name, dep, err := FromLine("requests")
	if err != nil {
		t.Fatalf("FromLine failed: %v", err)
	}
	if name != "requests" || dep.Kind != KindBare {
		t.Errorf("got name=%q kind=%v", name, dep.Kind)
	}
	if dep.Value() != "*" {
		t.Errorf("Value() = %v, want *", dep.Value())
	}
}

func TestFromLineVersion(t *testing.T) {
	name, dep, err := FromLine("Django>1.10")
	if err != nil {
		t.Fatalf("FromLine failed: %v", err)
	}
	if name != "Django" || dep.Kind != KindVersion || dep.Version != ">1.10" {
		t.Errorf("got name=%q dep=%+v", name, dep)
	}
}

func TestFromLineExtras(t *testing.T) {
	name, dep, err := FromLine("requests[socks]>=2.0")
	if err != nil {
		t.Fatalf("FromLine failed: %v", err)
	}
	if name != "requests" || dep.Kind != KindExtras {
		t.Fatalf("got name=%q dep=%+v", name, dep)
	}
	if len(dep.Extras) != 1 || dep.Extras[0] != "socks" {
		t.Errorf("extras = %v", dep.Extras)
	}
	if dep.Version != ">=2.0" {
		t.Errorf("version = %q", dep.Version)
	}
}

func TestFromLineVCS(t *testing.T) {
	name, dep, err := FromLine("-e git+https://example.com/repo.git@v1#egg=mypkg")
	if err != nil {
		t.Fatalf("FromLine failed: %v", err)
	}
	if name != "mypkg" {
		t.Errorf("name = %q, want mypkg", name)
	}
	want := Dep{Kind: KindVCS, VCS: "git", URL: "https://example.com/repo.git", Ref: "v1", Editable: true}
	if dep.VCS != want.VCS || dep.URL != want.URL || dep.Ref != want.Ref || dep.Editable != want.Editable {
		t.Errorf("dep = %+v, want %+v", dep, want)
	}
}

func TestFromLineVCSMissingEggIsFatal(t *testing.T) {
	if _, _, err := FromLine("git+https://example.com/repo.git"); err == nil {
		t.Fatal("expected fatal error for missing egg fragment")
	}
}

func TestFromLineFileNameDeterministic(t *testing.T) {
	uri := "https://example.com/pkg-1.0.tar.gz"
	name1, dep, err := FromLine(uri)
	if err != nil {
		t.Fatalf("FromLine failed: %v", err)
	}
	name2, _, _ := FromLine(uri)
	if name1 != name2 {
		t.Errorf("pseudo-name not deterministic: %q vs %q", name1, name2)
	}
	if len(name1) != 7 {
		t.Errorf("pseudo-name length = %d, want 7", len(name1))
	}
	if dep.Kind != KindFile || dep.File != uri {
		t.Errorf("dep = %+v", dep)
	}

	other, _, _ := FromLine("https://example.com/other-2.0.tar.gz")
	if other == name1 {
		t.Error("different uris produced the same pseudo-name")
	}
}

func TestToLineRoundTrips(t *testing.T) {
	lines := []string{
		"requests",
		"Django>1.10",
		"requests[socks]>=2.0",
		"-e git+https://example.com/repo.git@v1#egg=mypkg",
		"git+https://example.com/repo.git#egg=other",
	}
	for _, line := range lines {
		name, dep, err := FromLine(line)
		if err != nil {
			t.Fatalf("FromLine(%q) failed: %v", line, err)
		}
		if got := ToLine(name, dep); got != line {
			t.Errorf("round trip %q -> %q", line, got)
		}
	}
}

func TestToLineFileSuppressesName(t *testing.T) {
	uri := "https://example.com/pkg-1.0.tar.gz"
	name, dep, err := FromLine(uri)
	if err != nil {
		t.Fatalf("FromLine failed: %v", err)
	}
	if got := ToLine(name, dep); got != uri {
		t.Errorf("ToLine = %q, want %q", got, uri)
	}
}

func TestToLineSingleHash(t *testing.T) {
	dep := Dep{Kind: KindVersion, Version: "==1.0", Hash: "sha256:aa"}
	got := ToLine("requests", dep)
	want := "requests==1.0 --hash=sha256:aa"
	if got != want {
		t.Errorf("ToLine = %q, want %q", got, want)
	}
}

func TestToLineMultiHashOrder(t *testing.T) {
	dep := Dep{Kind: KindVersion, Version: "==1.0", Hashes: []string{"sha256:aa", "sha256:bb"}}
	got := ToLine("requests", dep)
	first := strings.Index(got, "--hash=sha256:aa")
	second := strings.Index(got, "--hash=sha256:bb")
	if first < 0 || second < 0 {
		t.Fatalf("missing hash tokens in %q", got)
	}
	if first > second {
		t.Errorf("hash order not preserved in %q", got)
	}
}

func TestToLineExtrasFirstOnly(t *testing.T) {
	dep := Dep{Kind: KindExtras, Extras: []string{"socks", "security"}, Version: ">=2.0"}
	got := ToLine("requests", dep)
	if got != "requests[socks]>=2.0" {
		t.Errorf("ToLine = %q", got)
	}
}

func TestValueKeepsBareHashes(t *testing.T) {
	dep, err := ParseValue(map[string]any{"hash": "sha256:aa"})
	if err != nil {
		t.Fatalf("ParseValue failed: %v", err)
	}
	if dep.Kind != KindBare || dep.Hash != "sha256:aa" {
		t.Fatalf("dep = %+v", dep)
	}

	value, ok := dep.Value().(map[string]any)
	if !ok {
		t.Fatalf("Value() = %v, want a mapping", dep.Value())
	}
	if value["hash"] != "sha256:aa" {
		t.Errorf("hash lost on encode: %v", value)
	}

	back, err := ParseValue(value)
	if err != nil {
		t.Fatalf("ParseValue round trip failed: %v", err)
	}
	if back.Kind != KindBare || back.Hash != dep.Hash {
		t.Errorf("round trip = %+v, want %+v", back, dep)
	}
}

func TestValueKeepsBareHashList(t *testing.T) {
	dep := Dep{Kind: KindBare, Hashes: []string{"sha256:aa", "sha256:bb"}}

	value, ok := dep.Value().(map[string]any)
	if !ok {
		t.Fatalf("Value() = %v, want a mapping", dep.Value())
	}
	hashes, ok := value["hashes"].([]string)
	if !ok || len(hashes) != 2 || hashes[0] != "sha256:aa" || hashes[1] != "sha256:bb" {
		t.Errorf("hashes lost on encode: %v", value)
	}
}

func TestWriteRequirements(t *testing.T) {
	deps := map[string]Dep{
		"requests": {Kind: KindVersion, Version: ">=2.0"},
		"flask":    {Kind: KindBare},
	}
	path, err := WriteRequirements(deps)
	if err != nil {
		t.Fatalf("WriteRequirements failed: %v", err)
	}
	defer os.Remove(path)

	if !strings.HasSuffix(path, "-requirements.txt") {
		t.Errorf("unexpected file name: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if got := string(data); got != "flask\nrequests>=2.0" {
		t.Errorf("file contents = %q", got)
	}
}
