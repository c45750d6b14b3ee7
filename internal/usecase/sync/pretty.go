package syncuc

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

type Summary struct {
	Fetched  int // raw records in the batch
	Admitted int // persisted and part of the fresh set
	Filtered int // rejected by the currency filter
	Failed   int // dropped by per-record errors
	Merged   int // size of the reconciled set
}

func ansi(code string, s string) string { return "\x1b[" + code + "m" + s + "\x1b[0m" }

// helpers
func green(s string) string  { return ansi("32", s) }
func yellow(s string) string { return ansi("33", s) }
func red(s string) string    { return ansi("31", s) }

// FormatSummary renders one cycle as a small table:
// FETCHED | ADMITTED | FILTERED | FAILED | MERGED
func FormatSummary(s Summary) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "FETCHED\tADMITTED\tFILTERED\tFAILED\tMERGED")
	a := fmt.Sprint(s.Admitted)
	f := fmt.Sprint(s.Filtered)
	x := fmt.Sprint(s.Failed)
	if s.Admitted > 0 { a = green(a) }
	if s.Filtered > 0 { f = yellow(f) }
	if s.Failed > 0 { x = red(x) }
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", s.Fetched, a, f, x, s.Merged)
	_ = w.Flush()
	return b.String()
}
