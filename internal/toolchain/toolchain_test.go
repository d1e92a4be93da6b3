package toolchain

import "testing"

func TestParseGCCVersion(t *testing.T) {
	line := "riscv64-unknown-linux-gnu-gcc (Xuantie-900 linux-5.10.4 glibc gcc Toolchain V2.8.1 B-20240115) 10.4.0"
	banner, version, ok := ParseGCCVersion(line)
	if !ok {
		t.Fatalf("expected a match")
	}
	if banner != "Xuantie-900 linux-5.10.4 glibc gcc Toolchain V2.8.1 B-20240115" {
		t.Fatalf("unexpected banner: %q", banner)
	}
	if version != "10.4.0" {
		t.Fatalf("unexpected version: %q", version)
	}
}

func TestParseGCCVersionUpstream(t *testing.T) {
	_, version, ok := ParseGCCVersion("gcc (GCC) 13.2.0")
	if !ok || version != "13.2.0" {
		t.Fatalf("expected upstream banner to parse, got %q (%v)", version, ok)
	}
}

func TestParseGCCVersionNoMatch(t *testing.T) {
	if _, _, ok := ParseGCCVersion("command not found"); ok {
		t.Fatalf("expected no match")
	}
}

func TestReportHealthy(t *testing.T) {
	r := &Report{}
	r.add("a", StatusOK, "fine")
	r.add("b", StatusWarn, "optional missing")
	if !r.Healthy() {
		t.Fatalf("warnings must not fail the report")
	}

	r.add("c", StatusFail, "broken")
	if r.Healthy() {
		t.Fatalf("a failed check must fail the report")
	}
	if len(r.Checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(r.Checks))
	}
}
