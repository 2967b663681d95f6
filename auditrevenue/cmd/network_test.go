package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testJournal = `JOURNAL_NR;BUCH_DATUM;KONTO_NR;KONTO_BEZ;GKTO_NR;GKTO_BEZ;BETRAG_SOLL;BETRAG_HABEN;BETRAG_SALDO
1;2024-01-15;1200;Bank;8400;Umsatzerloese;500,00;0,00;500,00
1;2024-01-15;8400;Umsatzerloese;1200;Bank;0,00;500,00;-500,00
2;2024-02-03;9000;Interimskonto;;;300,00;0,00;300,00
2;2024-02-03;1200;Bank;9000;Interimskonto;0,00;100,00;-100,00
2;2024-02-03;1000;Kasse;9000;Interimskonto;0,00;200,00;-200,00
`

func TestRunNetworkEndToEnd(t *testing.T) {
	dir := t.TempDir()
	journal := filepath.Join(dir, "journal.csv")
	if err := os.WriteFile(journal, []byte(testJournal), 0o644); err != nil {
		t.Fatal(err)
	}

	origJournal, origSkip, origOutput, origPairs := journalPath, skipClassify, outputFile, writePairsCSV
	t.Cleanup(func() {
		journalPath, skipClassify, outputFile, writePairsCSV = origJournal, origSkip, origOutput, origPairs
	})
	journalPath = journal
	skipClassify = true
	outputFile = "graph.html"
	writePairsCSV = true

	profile := &Profile{OutputDir: dir}
	if err := runNetwork(context.Background(), profile); err != nil {
		t.Fatalf("runNetwork: %v", err)
	}

	page, err := os.ReadFile(filepath.Join(dir, "graph.html"))
	if err != nil {
		t.Fatalf("read rendered graph: %v", err)
	}
	for _, want := range []string{"vis-network", `"id":"1200"`, `"id":"9000"`} {
		if !strings.Contains(string(page), want) {
			t.Errorf("rendered graph missing %q", want)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	foundPairs := false
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "account_pairs_") {
			foundPairs = true
		}
		if strings.HasPrefix(entry.Name(), "saldo_nicht_null_") {
			t.Errorf("balanced journal produced a violation export %s", entry.Name())
		}
	}
	if !foundPairs {
		t.Error("pair table export missing")
	}
}

func TestRunNetworkExportsUnbalancedEntries(t *testing.T) {
	dir := t.TempDir()
	broken := strings.Replace(testJournal, "-500,00", "-450,00", 1)
	journal := filepath.Join(dir, "journal.csv")
	if err := os.WriteFile(journal, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}

	origJournal, origSkip := journalPath, skipClassify
	t.Cleanup(func() { journalPath, skipClassify = origJournal, origSkip })
	journalPath = journal
	skipClassify = true

	profile := &Profile{OutputDir: dir}
	if err := runNetwork(context.Background(), profile); err == nil {
		t.Fatal("expected unbalanced journal to abort the run")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "saldo_nicht_null_") {
			found = true
		}
	}
	if !found {
		t.Error("violation export missing")
	}
}
