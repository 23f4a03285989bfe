package policy

import (
	"errors"
	"strings"
	"testing"
)

func TestScreenMessage(t *testing.T) {
	if err := ScreenMessage("Where is the nearest outlet?"); err != nil {
		t.Fatalf("ScreenMessage(benign) error = %v", err)
	}
	for _, msg := range []string{
		"<script>alert(1)</script>",
		"hello <?php system('id'); ",
		"HELLO <SCRIPT>",
	} {
		if err := ScreenMessage(msg); !errors.Is(err, ErrSuspiciousMessage) {
			t.Fatalf("ScreenMessage(%q) error = %v, want ErrSuspiciousMessage", msg, err)
		}
	}
}

func TestScreenQuery(t *testing.T) {
	if err := ScreenQuery("outlets in klang with takeaway"); err != nil {
		t.Fatalf("ScreenQuery(benign) error = %v", err)
	}
	for _, q := range []string{
		"klang; DROP TABLE outlets",
		"x' OR 1=1 --",
		"DELETE from outlets",
		"update outlets set",
	} {
		if err := ScreenQuery(q); !errors.Is(err, ErrSuspiciousQuery) {
			t.Fatalf("ScreenQuery(%q) error = %v, want ErrSuspiciousQuery", q, err)
		}
	}
}

func TestRedactPII(t *testing.T) {
	in := "reach me at jane@example.com or +60 12-345 6789, card 4111 1111 1111 1111"
	out := RedactPII(in)

	if strings.Contains(out, "jane@example.com") {
		t.Fatalf("email survived redaction: %q", out)
	}
	if strings.Contains(out, "4111") {
		t.Fatalf("card survived redaction: %q", out)
	}
	if !strings.Contains(out, "[email]") || !strings.Contains(out, "[card]") || !strings.Contains(out, "[phone]") {
		t.Fatalf("missing redaction markers: %q", out)
	}
}

func TestRedactPIILeavesPlainTextAlone(t *testing.T) {
	in := "what time does the SS 2 outlet open"
	if out := RedactPII(in); out != in {
		t.Fatalf("RedactPII(%q) = %q, want unchanged", in, out)
	}
}
