package csvio

import (
	"bytes"
	"testing"

	"github.com/carlodf/csvmerge3/config"
)

func TestWriter_QuotingPolicies(t *testing.T) {
	cases := []struct {
		name   string
		policy config.QuotePolicy
		fields []string
		want   string
	}{
		{"minimal_plain", config.QuoteMinimal, []string{"a", "b"}, "a,b\n"},
		{"minimal_needs_quote", config.QuoteMinimal, []string{"a,b", "c"}, "\"a,b\",c\n"},
		{"all", config.QuoteAll, []string{"a", "1"}, "\"a\",\"1\"\n"},
		{"nonnumeric", config.QuoteNonNumeric, []string{"a", "1", "1.5"}, "\"a\",1,1.5\n"},
		{"none", config.QuoteNone, []string{"a,b"}, "a,b\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, tc.policy, config.LineUnix)
			if err := w.WriteFields(tc.fields); err != nil {
				t.Fatalf("WriteFields: %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if buf.String() != tc.want {
				t.Errorf("got %q, want %q", buf.String(), tc.want)
			}
		})
	}
}

func TestWriter_EmbeddedQuoteIsDoubled(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, config.QuoteMinimal, config.LineUnix)
	if err := w.WriteFields([]string{`say "hi"`}); err != nil {
		t.Fatalf("WriteFields: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := "\"say \"\"hi\"\"\"\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriter_DOSLineTerminator(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, config.QuoteMinimal, config.LineDOS)
	if err := w.WriteFields([]string{"a", "b"}); err != nil {
		t.Fatalf("WriteFields: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.String() != "a,b\r\n" {
		t.Errorf("got %q", buf.String())
	}
}
