package names

import (
	"fmt"
	"testing"

	"github.com/todolite/todolite/internal/models"
)

func generateTasks(n int) []models.Task {
	tasks := make([]models.Task, n)
	for i := 0; i < n; i++ {
		tasks[i] = models.Task{ID: int64(i + 1), Title: fmt.Sprintf("Todo %d", i+1)}
	}
	return tasks
}

func BenchmarkResolve(b *testing.B) {
	tasks := generateTasks(100)
	extract := func(t models.Task) (int64, string) { return t.ID, t.Title }

	b.Run("exact_match", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			resolve("Todo 50", tasks, extract)
		}
	})

	b.Run("case_insensitive", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			resolve("todo 50", tasks, extract)
		}
	})

	b.Run("partial_match", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			resolve("do 5", tasks, extract)
		}
	})

	b.Run("no_match", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			resolve("nonexistent", tasks, extract)
		}
	})
}

func BenchmarkResolveRef(b *testing.B) {
	tasks := generateTasks(1000)

	b.Run("id", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Resolve(Ref{ID: 500}, tasks)
		}
	})

	b.Run("title", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Resolve(Ref{Title: "Todo 999"}, tasks)
		}
	})
}

func BenchmarkSuggest(b *testing.B) {
	tasks := generateTasks(100)
	getName := func(t models.Task) string { return t.Title }

	for i := 0; i < b.N; i++ {
		suggest("Todx", tasks, getName)
	}
}

func BenchmarkParse(b *testing.B) {
	inputs := []string{"42", "#42", "buy milk"}
	for i := 0; i < b.N; i++ {
		_, _ = Parse(inputs[i%len(inputs)])
	}
}
