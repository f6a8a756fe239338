package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/fundtrail/internal/datasource"
	"github.com/vanderheijden86/fundtrail/pkg/config"
	"github.com/vanderheijden86/fundtrail/pkg/holds"
	"github.com/vanderheijden86/fundtrail/pkg/version"
)

const cliGraphJSON = `{
  "name": "Flow",
  "children": [
    {"name": "V100", "bank": "SBI", "amt": "5000",
     "children": [
       {"name": "M200", "bank": "HDFC", "ifsc": "HDFC0001", "amt": 4000,
        "children": [
          {"name": "H300", "bank": "ICICI", "ifsc": "ICIC0002", "txid": "TX300", "amt": "3500",
           "hold_info": {"txn_id": "T9", "amount": "1200"}}
        ]}
     ]}
  ]
}`

const cliHoldsJSON = `[
  {"account_number": "H300", "bank_name": "ICICI", "branch_name": "Andheri", "ifsc_code": "ICIC0002", "amount": "1200", "layer": 2},
  {"account_number": "M200", "bank_name": "HDFC", "branch_name": "Fort", "ifsc_code": "HDFC0001", "amount": "500", "layer": 1},
  {"account_number": "Z900", "bank_name": "ICICI", "branch_name": "Powai", "ifsc_code": "ICIC0009", "amount": "9000", "layer": null}
]`

// writeCase writes the fixture graph and holds files and an empty config.
func writeCase(t *testing.T) (graph, holdsPath, cfg string) {
	t.Helper()
	dir := t.TempDir()
	graph = filepath.Join(dir, "graph.json")
	holdsPath = filepath.Join(dir, "holds.json")
	cfg = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(graph, []byte(cliGraphJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(holdsPath, []byte(cliHoldsJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return graph, holdsPath, cfg
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FUNDTRAIL_SERVER", "")
	t.Setenv("FUNDTRAIL_IFSC_URL", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "fundtrail "+version.Version) {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestHoldsCommandFiltersAndSorts(t *testing.T) {
	graph, holdsPath, cfg := writeCase(t)
	out, err := runCLI(t, "holds", "ACK1", "--config", cfg, "--no-ifsc",
		"--file", graph, "--holds", holdsPath,
		"--filter", "bank=ICICI", "--sort", "amount:desc")
	if err != nil {
		t.Fatalf("holds: %v\n%s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "Account Number") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Z900") || !strings.HasPrefix(lines[2], "H300") {
		t.Errorf("rows not sorted by amount desc:\n%s", out)
	}
	if !strings.Contains(lines[1], "N/A") {
		t.Errorf("missing layer should render N/A: %q", lines[1])
	}
}

func TestHoldsCommandNoHolds(t *testing.T) {
	graph, _, cfg := writeCase(t)
	out, err := runCLI(t, "holds", "ACK1", "--config", cfg, "--no-ifsc", "--file", graph)
	if err != nil {
		t.Fatalf("holds: %v", err)
	}
	if !strings.Contains(out, datasource.MsgNoHolds) {
		t.Errorf("expected the no-holds message, got %q", out)
	}
}

func TestApplyHoldFlags(t *testing.T) {
	tests := []struct {
		name    string
		filters []string
		sort    string
		wantErr bool
	}{
		{"alias and title", []string{"bank=HDFC", "Layer=1,N/A"}, "ifsc", false},
		{"descending", nil, "amount:desc", false},
		{"missing equals", []string{"bank"}, "", true},
		{"unknown column", []string{"colour=red"}, "", true},
		{"bad direction", nil, "amount:up", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyHoldFlags(holds.NewController(), tt.filters, tt.sort)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	ctrl := holds.NewController()
	if err := applyHoldFlags(ctrl, []string{"layer=1, N/A"}, ""); err != nil {
		t.Fatal(err)
	}
	set := ctrl.Filters()[holds.ColLayer]
	if !set.Has("1") || !set.Has("N/A") || len(set) != 2 {
		t.Errorf("values should be trimmed and split, got %v", set.Sorted())
	}
}

func TestPathCommand(t *testing.T) {
	graph, _, cfg := writeCase(t)
	out, err := runCLI(t, "path", "ACK1", " H300 ", "--config", cfg, "--no-ifsc", "--file", graph)
	if err != nil {
		t.Fatalf("path: %v\n%s", err, out)
	}
	for _, want := range []string{"Victim 1: V100", "M200", "H300", "₹3,500"} {
		if !strings.Contains(out, want) {
			t.Errorf("path output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Flow") {
		t.Error("the synthetic root should not be printed")
	}
}

func TestPathCommandNoMatch(t *testing.T) {
	graph, _, cfg := writeCase(t)
	_, err := runCLI(t, "path", "ACK1", "NOPE", "--config", cfg, "--no-ifsc", "--file", graph)
	if err == nil || !strings.Contains(err.Error(), "no path match for NOPE") {
		t.Errorf("expected a no-match error, got %v", err)
	}
}

func TestPathCommandResolvesBranches(t *testing.T) {
	ifsc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/HDFC0001":
			w.Write([]byte(`{"BRANCH":"Fort"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ifsc.Close()

	graph, _, cfg := writeCase(t)
	c := config.DefaultConfig()
	c.IFSC.URL = ifsc.URL
	c.IFSC.RatePerSec = 0
	if err := config.SaveTo(c, cfg); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "path", "ACK1", "H300", "--config", cfg, "--file", graph)
	if err != nil {
		t.Fatalf("path: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Fort") {
		t.Errorf("M200 branch should be looked up:\n%s", out)
	}
	if !strings.Contains(out, "Unknown") {
		t.Errorf("failed lookups should read Unknown:\n%s", out)
	}
}

func TestExportCommandWritesImageAndDetails(t *testing.T) {
	graph, _, cfg := writeCase(t)
	dir := t.TempDir()
	img := filepath.Join(dir, "chain.svg")
	md := filepath.Join(dir, "details.md")

	out, err := runCLI(t, "export", "ACK1", "H300", "--config", cfg, "--no-ifsc", "--file", graph,
		"-o", img, "--details", md)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	svg, err := os.ReadFile(img)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("output is not an SVG document")
	}
	report, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read details: %v", err)
	}
	if !strings.Contains(string(report), "Transaction Details Report") || !strings.Contains(string(report), "H300") {
		t.Errorf("unexpected details report:\n%s", report)
	}
}

func TestResolveUsesSavedCase(t *testing.T) {
	a := &app{cfg: config.DefaultConfig()}
	a.cfg.RememberCase(config.Case{Name: "bank-fraud", Ack: "ACK7", Source: "/cases/fraud.db"})

	ack, ds, err := a.resolve("Bank-Fraud")
	if err != nil {
		t.Fatal(err)
	}
	if ack != "ACK7" || ds.Type != datasource.SourceTypeSQLite {
		t.Errorf("resolve = %q %v", ack, ds)
	}

	a.src.server = "http://example.test"
	if _, ds, _ := a.resolve("ACK7"); ds.Type != datasource.SourceTypeHTTP {
		t.Errorf("--server should win over the saved source, got %v", ds)
	}

	a.src = sourceFlags{}
	a.cfg.Cases = nil
	if _, ds, _ := a.resolve("ACK9"); ds.Location != a.cfg.Server.URL {
		t.Errorf("default source should be the configured server, got %v", ds)
	}

	if _, _, err := a.resolve("  "); err == nil {
		t.Error("blank ack should be rejected")
	}
}

func TestSourceFlagsAreExclusive(t *testing.T) {
	_, _, cfg := writeCase(t)
	_, err := runCLI(t, "path", "ACK1", "X", "--config", cfg, "--db", "a.db", "--file", "b.json")
	if err == nil {
		t.Error("--db and --file together should fail")
	}
}

func TestShouldSuppressTTYQueries(t *testing.T) {
	tests := []struct {
		args    []string
		envTest bool
		want    bool
	}{
		{[]string{"holds", "ACK1"}, false, true},
		{[]string{"--db", "cases.db", "path", "ACK1", "X"}, false, true},
		{[]string{"ACK1"}, false, false},
		{[]string{"view", "ACK1"}, false, false},
		{[]string{"view", "--help"}, false, true},
		{[]string{"--help"}, false, true},
		{nil, true, true},
		{nil, false, false},
	}
	for _, tt := range tests {
		if got := shouldSuppressTTYQueries(tt.args, tt.envTest); got != tt.want {
			t.Errorf("shouldSuppressTTYQueries(%v, %v) = %v, want %v", tt.args, tt.envTest, got, tt.want)
		}
	}
}
