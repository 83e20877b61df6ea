package cli

import (
	"bytes"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/eleven-am/todolist/internal/migrator"
	"github.com/stretchr/testify/assert"
)

func TestPrintPlan(t *testing.T) {
	t.Run("up to date", func(t *testing.T) {
		var buf bytes.Buffer
		printPlan(&buf, &migrator.Plan{}, true)
		assert.Equal(t, "Schema is up to date.\n", buf.String())
	})

	t.Run("dry run shows reverse", func(t *testing.T) {
		var buf bytes.Buffer
		printPlan(&buf, &migrator.Plan{
			Statements: []string{`CREATE TABLE "todolist" ()`},
			Reverse:    []string{`DROP TABLE "todolist"`},
			Changes:    []schema.Change{&schema.AddTable{T: &schema.Table{Name: "todolist"}}},
		}, false)

		out := buf.String()
		assert.Contains(t, out, "-- up\nCREATE TABLE \"todolist\" ();\n")
		assert.Contains(t, out, "-- down\nDROP TABLE \"todolist\";\n")
		assert.Contains(t, out, "Nothing applied.")
		assert.NotContains(t, out, "WARNING")
	})

	t.Run("applied destructive plan", func(t *testing.T) {
		var buf bytes.Buffer
		printPlan(&buf, &migrator.Plan{
			Statements: []string{`DROP TABLE "legacy"`},
			Changes:    []schema.Change{&schema.DropTable{T: &schema.Table{Name: "legacy"}}},
		}, true)

		out := buf.String()
		assert.Contains(t, out, "WARNING: 1 destructive change(s):\n  - Drop table legacy\n")
		assert.Contains(t, out, "Applied 1 statement(s).")
		assert.NotContains(t, out, "-- down")
	})
}
