package fingerprint

import (
	"strings"
	"testing"
)

func TestContentHash(t *testing.T) {
	h := ContentHash("hello world")
	if len(h) != 64 {
		t.Fatalf("ContentHash length = %d, want 64", len(h))
	}
	if h != ContentHash("hello world") {
		t.Error("expected deterministic hash")
	}
	if h == ContentHash("hello world.") {
		t.Error("expected any byte change to alter the hash")
	}
}

func TestSimHashEmpty(t *testing.T) {
	if got := SimHash(""); got != 0 {
		t.Errorf("SimHash(\"\") = %d, want 0", got)
	}
	if got := SimHash("!!! ??? ..."); got != 0 {
		t.Errorf("SimHash(punctuation only) = %d, want 0", got)
	}
}

func TestSimHashDeterministic(t *testing.T) {
	content := "the quick brown fox jumps over the lazy dog"
	a := SimHash(content)
	b := SimHash(content)
	if a != b {
		t.Errorf("SimHash not deterministic: %x != %x", a, b)
	}
	if a == 0 {
		t.Error("SimHash of real content should not be 0")
	}
}

func TestSimHashCaseAndPunctuationInsensitive(t *testing.T) {
	a := SimHash("The Quick Brown Fox!")
	b := SimHash("the quick brown fox")
	if a != b {
		t.Errorf("SimHash should ignore case and punctuation: %x != %x", a, b)
	}
}

func TestSimHashDifferentContentDiffers(t *testing.T) {
	a := SimHash("distributed systems require careful consensus protocols and replication strategies")
	b := SimHash("gardening tips for growing tomatoes in containers during summer months")
	if a == b {
		t.Error("unrelated content should not collide")
	}
}

func TestContentFingerprintShortContentGated(t *testing.T) {
	if got := ContentFingerprint("too short"); got != "" {
		t.Errorf("ContentFingerprint(short) = %q, want empty", got)
	}
	// 49 runes is still under the gate.
	if got := ContentFingerprint(strings.Repeat("a", 49)); got != "" {
		t.Errorf("ContentFingerprint(49 runes) = %q, want empty", got)
	}
	if got := ContentFingerprint(strings.Repeat("a", 50)); got == "" {
		t.Error("ContentFingerprint(50 runes) should not be empty")
	}
}

func TestContentFingerprintFormat(t *testing.T) {
	fp := ContentFingerprint("machine learning models require substantial training data and careful evaluation against held out test sets")
	if len(fp) != 32 {
		t.Fatalf("fingerprint length = %d, want 32", len(fp))
	}
}

func TestContentFingerprintOrderInsensitive(t *testing.T) {
	a := ContentFingerprint("careful evaluation requires substantial training data, and machine learning models need held-out test sets")
	b := ContentFingerprint("machine learning models need held-out test sets; and careful evaluation requires substantial training data")
	if a != b {
		t.Errorf("reordered sentences should fingerprint identically: %q != %q", a, b)
	}
}

func TestContentFingerprintPunctuationInsensitive(t *testing.T) {
	a := ContentFingerprint("Machine learning models require substantial training data and careful evaluation methodology!!!")
	b := ContentFingerprint("machine learning models require substantial training data and careful evaluation methodology")
	if a != b {
		t.Errorf("punctuation should not change the fingerprint: %q != %q", a, b)
	}
}

func TestContentFingerprintDistinctContentDiffers(t *testing.T) {
	a := ContentFingerprint("machine learning models require substantial training data and careful evaluation against benchmarks")
	b := ContentFingerprint("quantum computing hardware demands extreme cooling and sophisticated error correction mechanisms today")
	if a == b {
		t.Error("distinct content should fingerprint differently")
	}
}

func TestTitleFingerprint(t *testing.T) {
	if got := TitleFingerprint("Hi"); got != "" {
		t.Errorf("TitleFingerprint(short) = %q, want empty", got)
	}

	fp := TitleFingerprint("Understanding Distributed Consensus")
	if len(fp) != 16 {
		t.Fatalf("title fingerprint length = %d, want 16", len(fp))
	}

	if fp != TitleFingerprint("understanding distributed consensus!") {
		t.Error("case and punctuation should not change the title fingerprint")
	}

	if fp == TitleFingerprint("Consensus Distributed Understanding") {
		t.Error("word order matters for title fingerprints")
	}
}
