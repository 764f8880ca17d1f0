package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// let x; let x;
const duplicateLet = `{"type":"Program","sourceType":"script","start":0,"end":13,"body":[
{"type":"VariableDeclaration","kind":"let","start":0,"end":6,"declarations":[
  {"type":"VariableDeclarator","start":4,"end":5,"id":{"type":"Identifier","start":4,"end":5,"name":"x"},"init":null}]},
{"type":"VariableDeclaration","kind":"let","start":7,"end":13,"declarations":[
  {"type":"VariableDeclarator","start":11,"end":12,"id":{"type":"Identifier","start":11,"end":12,"name":"x"},"init":null}]}]}`

// import './a';
const importA = `{"type":"Program","sourceType":"module","start":0,"end":14,"body":[
{"type":"ImportDeclaration","start":0,"end":14,"specifiers":[],
 "source":{"type":"Literal","start":7,"end":12,"value":"./a","raw":"'./a'"}}]}`

const emptyModule = `{"type":"Program","sourceType":"module","start":0,"end":0,"body":[]}`

func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["fastscope.toml"] = "[output]\ncolor = \"off\"\n"
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestResolveReportsErrors(t *testing.T) {
	dir := workspace(t, map[string]string{
		"c.json": duplicateLet,
		"c.js":   "let x; let x;",
	})
	stdout, stderr, err := execute(t, "resolve", "--config", filepath.Join(dir, "fastscope.toml"), "--dump", dir)
	if err == nil || err.Error() != "1 error(s) in 1 file(s)" {
		t.Fatalf("got error %v", err)
	}
	if want := "c.json:1:12: error[S1001]: identifier 'x' is already declared"; !strings.Contains(stderr, want) {
		t.Errorf("stderr %q does not contain %q", stderr, want)
	}
	if !strings.Contains(stderr, "let x; let x;") {
		t.Errorf("stderr %q has no snippet", stderr)
	}
	if !strings.Contains(stdout, "== ") || !strings.Contains(stdout, "function #1") {
		t.Errorf("got dump %q", stdout)
	}
}

func TestGraphPrintsOrder(t *testing.T) {
	dir := workspace(t, map[string]string{
		"a.json": emptyModule,
		"b.json": importA,
	})
	stdout, _, err := execute(t, "graph", "--config", filepath.Join(dir, "fastscope.toml"), dir)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "/a.json") || !strings.HasSuffix(lines[1], "/b.json") {
		t.Errorf("got %q", stdout)
	}
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fastscope.toml")
	if err := os.WriteFile(path, []byte("jobs = -1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, err := execute(t, "version", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "jobs must not be negative") {
		t.Errorf("got %v", err)
	}
}
