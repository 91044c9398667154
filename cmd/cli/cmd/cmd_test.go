package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"travel-mate/api/v1/types"
)

const tripsJSON = `{
  "segments": [
    {
      "trip_id": "berlin",
      "start": "2026-02-01T08:00:00+01:00",
      "end": "2026-02-03T18:00:00+01:00",
      "provided_meals": [{"day": "2026-02-02", "breakfast": true, "lunch": true}]
    }
  ]
}`

const overlappingJSON = `{
  "segments": [
    {"trip_id": "a", "start": "2026-02-01T08:00:00Z", "end": "2026-02-03T18:00:00Z"},
    {"trip_id": "b", "start": "2026-02-02T08:00:00Z", "end": "2026-02-04T18:00:00Z"}
  ]
}`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TRAVELMATE_STORE_PATH", filepath.Join(dir, "snapshots.db"))
	t.Setenv("TRAVELMATE_OUTPUT_COLOR", "false")
	t.Setenv("TRAVELMATE_OUTPUT_FORMAT", "text")
	t.Setenv("TRAVELMATE_RATES_FILE", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		printError(&stderr, err)
	}
	return stdout.String(), stderr.String(), err
}

func TestCalculateText(t *testing.T) {
	dir := setup(t)
	path := writeFile(t, dir, "trips.json", tripsJSON)

	out, _, err := run(t, "calculate", path)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	for _, want := range []string{
		"berlin │ DE      │ 56.00 │ 16.80 │ 39.20",
		"Applying rule version: DE_TRAVEL_RULES_2026_01",
		"Trip berlin subtotal = 56.00 - 16.80 = 39.20.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCalculateJSONWithTrace(t *testing.T) {
	dir := setup(t)
	path := writeFile(t, dir, "trips.json", tripsJSON)

	out, _, err := run(t, "calculate", "--format", "json", "--trace", path)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	var resp types.CalculateResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if resp.Totals.NetAllowance != "39.20" || len(resp.Trace) == 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCalculateRejectsOverlap(t *testing.T) {
	dir := setup(t)
	path := writeFile(t, dir, "trips.json", overlappingJSON)

	_, stderr, err := run(t, "calculate", path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(stderr, "Trips a and b overlap.") || !strings.Contains(stderr, "previous_trip_id=a trip_id=b") {
		t.Errorf("stderr = %q", stderr)
	}

	out, _, _ := run(t, "calculate", "--format", "json", path)
	var resp types.ErrorResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON error: %v\n%s", err, out)
	}
	if resp.Error.Type != "PRECONDITION_VIOLATION" || resp.Error.Context["trip_id"] != "b" {
		t.Errorf("error payload = %+v", resp.Error)
	}
}

func TestPersistHistoryShow(t *testing.T) {
	dir := setup(t)
	path := writeFile(t, dir, "trips.json", tripsJSON)

	out, stderr, err := run(t, "calculate", "--format", "json", "--persist", path)
	if err != nil {
		t.Fatalf("calculate --persist: %v", err)
	}
	id := regexp.MustCompile(`Saved snapshot ([0-9a-f-]{36})`).FindStringSubmatch(stderr)
	if id == nil {
		t.Fatalf("no snapshot id in %q", stderr)
	}

	history, _, err := run(t, "history", "--trip", "berlin")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(history, id[1]) || !strings.Contains(history, "39.20") {
		t.Errorf("history missing snapshot:\n%s", history)
	}

	empty, _, err := run(t, "history", "--trip", "munich")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(empty, "No snapshots stored.") {
		t.Errorf("history = %q", empty)
	}

	shown, _, err := run(t, "show", "--format", "json", id[1])
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var stored, calculated types.CalculateResponse
	if err := json.Unmarshal([]byte(shown), &stored); err != nil {
		t.Fatalf("stored payload is not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &calculated); err != nil {
		t.Fatal(err)
	}
	if stored.Totals != calculated.Totals || stored.RuleVersion != calculated.RuleVersion {
		t.Errorf("stored %+v, calculated %+v", stored.Totals, calculated.Totals)
	}

	text, _, err := run(t, "show", id[1])
	if err != nil {
		t.Fatalf("show text: %v", err)
	}
	if !strings.Contains(text, "Per Diem Summary") {
		t.Errorf("text view missing summary:\n%s", text)
	}
}

func TestShowUnknownSnapshot(t *testing.T) {
	setup(t)

	_, stderr, err := run(t, "show", "9b2f1c3e-0000-4000-8000-000000000001")
	if err == nil || !strings.Contains(stderr, "snapshot not found") {
		t.Errorf("err = %v, stderr = %q", err, stderr)
	}

	_, _, err = run(t, "show", "not-a-uuid")
	if err == nil {
		t.Error("expected an error for a malformed id")
	}
}

func TestRatesCommand(t *testing.T) {
	dir := setup(t)

	out, _, err := run(t, "rates")
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if !strings.Contains(out, "DE      │ domestic      │    28.00 │       14.00") {
		t.Errorf("rates table:\n%s", out)
	}

	custom := writeFile(t, dir, "rates.hcl", `
rule_version = "DE_TRAVEL_RULES_2026_01"

domestic {
  full_day    = "28.00"
  partial_day = "14.00"
}

country "BE" {
  full_day    = "59.00"
  partial_day = "40.00"
}
`)
	t.Setenv("TRAVELMATE_RATES_FILE", custom)

	out, _, err = run(t, "rates", "--json")
	if err != nil {
		t.Fatalf("rates --json: %v", err)
	}
	if !strings.Contains(out, `"country_code": "BE"`) || strings.Contains(out, `"country_code": "FR"`) {
		t.Errorf("custom table not used:\n%s", out)
	}
}

func TestRatesFileVersionMismatch(t *testing.T) {
	dir := setup(t)
	custom := writeFile(t, dir, "rates.hcl", `
rule_version = "DE_TRAVEL_RULES_2025_01"

domestic {
  full_day    = "28.00"
  partial_day = "14.00"
}
`)
	t.Setenv("TRAVELMATE_RATES_FILE", custom)

	_, stderr, err := run(t, "rates")
	if err == nil || !strings.Contains(stderr, "CONFIG_ERROR") {
		t.Errorf("err = %v, stderr = %q", err, stderr)
	}
}

func TestVersion(t *testing.T) {
	setup(t)
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "DE_TRAVEL_RULES_2026_01") {
		t.Errorf("version = %q", out)
	}
}
