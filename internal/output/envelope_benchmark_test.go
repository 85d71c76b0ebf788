package output

import (
	"bytes"
	"testing"
)

type benchTodo struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

func benchTodos(n int) []benchTodo {
	out := make([]benchTodo, n)
	for i := range out {
		out[i] = benchTodo{ID: int64(i + 1), Title: "Todo"}
	}
	return out
}

func BenchmarkNormalizeData(b *testing.B) {
	b.Run("page_of_todos", func(b *testing.B) {
		data := benchTodos(5)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			NormalizeData(data)
		}
	})

	b.Run("already_normalized", func(b *testing.B) {
		data := []map[string]any{{"id": 1}, {"id": 2}}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			NormalizeData(data)
		}
	})

	b.Run("nil", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			NormalizeData(nil)
		}
	})
}

func BenchmarkWrite(b *testing.B) {
	data := benchTodos(50)
	page := map[string]any{"number": 1, "size": 50, "total_pages": 1, "total_items": 50}

	for _, tc := range []struct {
		name string
		opts Options
	}{
		{"json", Options{Format: FormatJSON}},
		{"ids", Options{Format: FormatIDs}},
		{"count", Options{Format: FormatCount}},
		{"markdown", Options{Format: FormatMarkdown}},
		{"jq", Options{Format: FormatJSON, JQ: ".[].title"}},
	} {
		b.Run(tc.name, func(b *testing.B) {
			buf := &bytes.Buffer{}
			tc.opts.Writer = buf
			w := New(tc.opts)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				buf.Reset()
				_ = w.OK(data, WithSummary("50 todos"), WithMeta("page", page))
			}
		})
	}
}

func BenchmarkErrorOutput(b *testing.B) {
	buf := &bytes.Buffer{}
	w := New(Options{Writer: buf, Format: FormatJSON})
	err := ErrNotFound("Todo", "42")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = w.Err(err)
	}
}
