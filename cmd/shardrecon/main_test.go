package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorvus/shardrecon"
)

// quadraticDocument shares the polynomial x^2 + 3: any three of the four
// shares reconstruct the secret 3.
const quadraticDocument = `{
  "keys": {"n": 4, "k": 3},
  "1": {"base": "10", "value": "4"},
  "2": {"base": "2", "value": "111"},
  "3": {"base": "10", "value": "12"},
  "6": {"base": "4", "value": "213"}
}`

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shares.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return path
}

func setupCommandState(t *testing.T) {
	t.Helper()
	cfg = shardrecon.DefaultConfig()
	logger = zap.NewNop()
}

func TestRunSolveQuadraticDocument(t *testing.T) {
	setupCommandState(t)
	path := writeDocument(t, quadraticDocument)

	output := captureOutput(t, func() {
		if err := runSolve(&cobra.Command{}, []string{path}); err != nil {
			t.Errorf("runSolve returned error: %v", err)
		}
	})

	if !strings.Contains(output, "Secret: 3") {
		t.Fatalf("expected reconstructed secret in output, got: %s", output)
	}
	if !strings.Contains(output, "support:        4 of 4 subsets") {
		t.Fatalf("expected full support in output, got: %s", output)
	}
}

func TestRunSolveJSONOutput(t *testing.T) {
	setupCommandState(t)
	path := writeDocument(t, quadraticDocument)

	solveJSON = true
	t.Cleanup(func() { solveJSON = false })

	output := captureOutput(t, func() {
		if err := runSolve(&cobra.Command{}, []string{path}); err != nil {
			t.Errorf("runSolve returned error: %v", err)
		}
	})

	var secret shardrecon.Secret
	if err := json.Unmarshal([]byte(output), &secret); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, output)
	}
	if secret.Kind != shardrecon.SecretKindInteger || secret.Value.Int64() != 3 {
		t.Fatalf("expected integer secret 3, got %+v", secret)
	}
}

func TestRunSolveRejectsInvalidDocument(t *testing.T) {
	setupCommandState(t)
	path := writeDocument(t, `{
  "keys": {"n": 2, "k": 5},
  "1": {"base": "10", "value": "4"},
  "2": {"base": "10", "value": "7"}
}`)

	var err error
	captureOutput(t, func() {
		err = runSolve(&cobra.Command{}, []string{path})
	})

	if err == nil {
		t.Fatal("expected validation error for threshold above share count")
	}
}

func TestRunSolveMissingFile(t *testing.T) {
	setupCommandState(t)

	err := runSolve(&cobra.Command{}, []string{filepath.Join(t.TempDir(), "absent.json")})
	if err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestRunInspectReportsAssessment(t *testing.T) {
	setupCommandState(t)
	path := writeDocument(t, quadraticDocument)

	output := captureOutput(t, func() {
		if err := runInspect(&cobra.Command{}, []string{path}); err != nil {
			t.Errorf("runInspect returned error: %v", err)
		}
	})

	for _, want := range []string{
		"shares:    4",
		"threshold: 3",
		"Validation: ok",
		"Consensus rating:",
		"enumeration cost:      4 subsets",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in inspect output, got: %s", want, output)
		}
	}
}

func TestRunGenerateRoundTrip(t *testing.T) {
	setupCommandState(t)
	out := filepath.Join(t.TempDir(), "generated.json")

	generateSecret = "987654321987654321"
	generateShares = 6
	generateThreshold = 3
	generateBase = 16
	generateOut = out
	generateVerify = true
	t.Cleanup(func() {
		generateSecret = ""
		generateShares = 5
		generateThreshold = 3
		generateBase = 10
		generateOut = ""
		generateVerify = false
	})

	captureOutput(t, func() {
		if err := runGenerate(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runGenerate returned error: %v", err)
		}
	})

	output := captureOutput(t, func() {
		if err := runSolve(&cobra.Command{}, []string{out}); err != nil {
			t.Errorf("runSolve returned error: %v", err)
		}
	})

	if !strings.Contains(output, "Secret: 987654321987654321") {
		t.Fatalf("expected generated secret to round trip, got: %s", output)
	}
}

func TestRunRotateRoundTrip(t *testing.T) {
	setupCommandState(t)
	source := writeDocument(t, quadraticDocument)
	out := filepath.Join(t.TempDir(), "rotated.json")

	rotateShares = 5
	rotateThreshold = 2
	rotateOut = out
	t.Cleanup(func() {
		rotateShares = 5
		rotateThreshold = 3
		rotateOut = ""
	})

	captureOutput(t, func() {
		if err := runRotate(&cobra.Command{}, []string{source}); err != nil {
			t.Fatalf("runRotate returned error: %v", err)
		}
	})

	output := captureOutput(t, func() {
		if err := runSolve(&cobra.Command{}, []string{out}); err != nil {
			t.Errorf("runSolve returned error: %v", err)
		}
	})

	// The rotated document holds the same secret under its new threshold.
	if !strings.Contains(output, "Secret: 3") {
		t.Fatalf("expected rotated document to solve to 3, got: %s", output)
	}
	if !strings.Contains(output, "support:        10 of 10 subsets") {
		t.Fatalf("expected unanimous support among the 5-choose-2 subsets, got: %s", output)
	}
}

func TestRunGenerateSeededIsReproducible(t *testing.T) {
	setupCommandState(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")

	generateSecret = "42"
	generateShares = 5
	generateThreshold = 2
	generateSeed = "rehearsal seed"
	generateVerify = true
	t.Cleanup(func() {
		generateSecret = ""
		generateShares = 5
		generateThreshold = 3
		generateSeed = ""
		generateOut = ""
		generateVerify = false
	})

	for _, out := range []string{first, second} {
		generateOut = out
		captureOutput(t, func() {
			if err := runGenerate(&cobra.Command{}, nil); err != nil {
				t.Fatalf("runGenerate returned error: %v", err)
			}
		})
	}

	firstDoc, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("failed to read generated document: %v", err)
	}
	secondDoc, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("failed to read generated document: %v", err)
	}
	if !bytes.Equal(firstDoc, secondDoc) {
		t.Fatalf("seeded generation is not reproducible:\n%s\nvs\n%s", firstDoc, secondDoc)
	}
}

func TestRunGenerateRejectsBadSecret(t *testing.T) {
	setupCommandState(t)

	generateSecret = "-17"
	t.Cleanup(func() { generateSecret = "" })

	if err := runGenerate(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected error for negative secret")
	}

	generateSecret = "twelve"
	if err := runGenerate(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected error for non-decimal secret")
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
