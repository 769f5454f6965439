package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docaudit/internal/aidetect"
)

const BaseDirName = ".docaudit"

// CorpusFile is the default sqlite corpus location inside a workspace.
const CorpusFile = "corpus.db"

func EnsureDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

// EnsureAt creates the workspace layout under base and returns base.
func EnsureAt(base string) (string, error) {
	for _, p := range []string{
		filepath.Join(base, "data"),
		filepath.Join(base, "reports"),
	} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", p, err)
		}
	}
	return base, nil
}

func CorpusPath(root string) string {
	return filepath.Join(root, "data", CorpusFile)
}

// SaveReport writes r to reports/<document hash>/<run id>.json and returns
// the path written.
func SaveReport(root string, r aidetect.Report) (string, error) {
	dir := filepath.Join(root, "reports", documentHash(r.DocumentID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	name := r.RunID
	if name == "" {
		name = "report"
	}
	path := filepath.Join(dir, sanitizeName(name)+".json")
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// LoadReports returns every saved report of a document.
func LoadReports(root, documentID string) ([]aidetect.Report, error) {
	matches, err := filepath.Glob(filepath.Join(root, "reports", documentHash(documentID), "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]aidetect.Report, 0, len(matches))
	for _, m := range matches {
		raw, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("read report: %w", err)
		}
		var r aidetect.Report
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", filepath.Base(m), err)
		}
		out = append(out, r)
	}
	return out, nil
}

func documentHash(id string) string {
	trimmed := strings.TrimSpace(strings.ToLower(id))
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:12]
}

func sanitizeName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "report"
	}
	return strings.ReplaceAll(base, "..", "")
}
