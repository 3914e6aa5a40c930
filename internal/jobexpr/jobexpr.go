// Package jobexpr filters jobs with JavaScript boolean expressions (goja).
//
// An expression sees a single variable, job:
//
//	job.id          number
//	job.name        string
//	job.priority    number
//	job.band        "high" | "medium" | "low"
//	job.createdAt   RFC 3339 string
//	job.processedAt RFC 3339 string, or null while pending
//
// Example: job.priority <= 3 && job.name.startsWith("deploy")
package jobexpr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/me/jobq/pkg/model"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 100 * time.Millisecond

// Filter is a compiled expression. The zero-source filter matches every job.
// A Filter may be shared; each Match call uses its own runtime.
type Filter struct {
	src     string
	prog    *goja.Program
	timeout time.Duration
}

// Compile parses src as a single JavaScript expression. timeout <= 0 uses
// DefaultTimeout.
func Compile(src string, timeout time.Duration) (*Filter, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Filter{src: strings.TrimSpace(src), timeout: timeout}
	if f.src == "" {
		return f, nil
	}

	// Parenthesized so statements and multiple expressions fail to compile.
	prog, err := goja.Compile("where", "("+f.src+"\n)", true)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", f.src, err)
	}
	f.prog = prog
	return f, nil
}

// Source returns the trimmed expression text.
func (f *Filter) Source() string { return f.src }

// MatchesAll reports whether the filter has no expression.
func (f *Filter) MatchesAll() bool { return f.prog == nil }

// Match evaluates the expression against job. The result is coerced with
// JavaScript truthiness.
func (f *Filter) Match(job model.Job) (bool, error) {
	if f.prog == nil {
		return true, nil
	}

	vm := goja.New()
	if err := vm.Set("job", jobObject(job)); err != nil {
		return false, fmt.Errorf("set job: %w", err)
	}

	timer := time.AfterFunc(f.timeout, func() {
		vm.Interrupt("timeout")
	})
	defer timer.Stop()

	val, err := vm.RunProgram(f.prog)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return false, fmt.Errorf("expression %q timed out after %s", f.src, f.timeout)
		}
		return false, fmt.Errorf("expression %q: %w", f.src, err)
	}
	return val.ToBoolean(), nil
}

// Apply returns the jobs that match, in their original order.
func (f *Filter) Apply(jobs []model.Job) ([]model.Job, error) {
	if f.prog == nil {
		return jobs, nil
	}
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		ok, err := f.Match(j)
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", j.ID, err)
		}
		if ok {
			out = append(out, j)
		}
	}
	return out, nil
}

func jobObject(job model.Job) map[string]any {
	var processedAt any
	if job.ProcessedAt != nil {
		processedAt = job.ProcessedAt.UTC().Format(time.RFC3339Nano)
	}
	return map[string]any{
		"id":          job.ID,
		"name":        job.Name,
		"priority":    job.Priority,
		"band":        job.Band().String(),
		"createdAt":   job.CreatedAt.UTC().Format(time.RFC3339Nano),
		"processedAt": processedAt,
	}
}
