package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ReadEvents parses all events from an event log file. Malformed lines are
// skipped.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}
	return events, nil
}

// RenderTimeline writes a human-readable run timeline to w. With
// disagreementsOnly, applicants on which both variants agreed are left out.
//
//nolint:errcheck // display-only writes; errors are not actionable
func RenderTimeline(w io.Writer, events []Event, disagreementsOnly bool) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w, " RUN TIMELINE")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	start := events[0].Timestamp
	for _, ev := range events {
		ts := formatDuration(ev.Timestamp.Sub(start))

		switch ev.Type {
		case EventRunStart:
			fmt.Fprintf(w, "[%s] Run started  command=%s  engine=%s  model=%s  applicants=%d\n",
				ts, str(ev.Data["command"]), str(ev.Data["engine"]), str(ev.Data["model"]), jsonNumber(ev.Data["applicants"]))

		case EventBatchStart:
			label := str(ev.Data["variant_a"])
			if b := str(ev.Data["variant_b"]); b != "" {
				label += " vs " + b
			}
			fmt.Fprintf(w, "[%s] ▶  %s (%d applicants)\n", ts, label, jsonNumber(ev.Data["total"]))

		case EventApplicantComplete:
			line, show := applicantLine(ev.Data, disagreementsOnly)
			if show {
				fmt.Fprintf(w, "[%s]    %s\n", ts, line)
			}

		case EventBatchComplete:
			fmt.Fprintf(w, "[%s] ✓  Batch complete (%dms)\n", ts, jsonNumber(ev.Data["duration_ms"]))

		case EventBatchStopped:
			fmt.Fprintf(w, "[%s] ✗  Stopped after %d/%d: %s\n",
				ts, jsonNumber(ev.Data["num"]), jsonNumber(ev.Data["total"]), str(ev.Data["reason"]))

		case EventError:
			fmt.Fprintf(w, "[%s] ❌ Error: %s\n", ts, str(ev.Data["message"]))

		case EventRunComplete:
			fmt.Fprintf(w, "[%s] 🏁 Run complete  %d evaluations  %d failed  (%dms)\n",
				ts, jsonNumber(ev.Data["evaluations"]), jsonNumber(ev.Data["failed"]), jsonNumber(ev.Data["duration_ms"]))

		default:
			fmt.Fprintf(w, "[%s] %s %v\n", ts, ev.Type, ev.Data)
		}
	}
	fmt.Fprintln(w)
}

func applicantLine(data map[string]any, disagreementsOnly bool) (string, bool) {
	id := str(data["applicant_id"])
	decisionA := str(data["decision_a"])
	failed, _ := data["failed"].(bool) //nolint:errcheck
	suffix := ""
	if failed {
		suffix = "  [error]"
	}

	decisionB, paired := data["decision_b"]
	if !paired {
		return fmt.Sprintf("%s  %s%s", id, decisionA, suffix), !disagreementsOnly || failed
	}
	agree, _ := data["agree"].(bool) //nolint:errcheck
	mark := "="
	if !agree {
		mark = "≠"
	}
	line := fmt.Sprintf("%s  %s %s %s%s", id, decisionA, mark, str(decisionB), suffix)
	return line, !disagreementsOnly || !agree || failed
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%6dms", d.Milliseconds())
	}
	return fmt.Sprintf("%6.1fs", d.Seconds())
}

func str(v any) string {
	s, _ := v.(string) //nolint:errcheck
	return s
}

// jsonNumber extracts a number from a JSON-decoded value (float64 or json.Number).
func jsonNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		i, _ := n.Int64() //nolint:errcheck
		return int(i)
	}
	return 0
}
